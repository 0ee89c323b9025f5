package view

import (
	"strconv"
	"sync"

	"github.com/i474232898/weather-map/internal/weather"
)

// Options controls the fixed presentation of the map.
type Options struct {
	MapStyle       string
	Zoom           float64
	Height         int
	MarkerSize     int
	ColorScale     string
	ColorBarTitle  string
	EmptySelection weather.EmptySelection
	// Animate adds a time slider with one frame per distinct timestamp.
	Animate bool
}

// DefaultOptions returns the presentation used by the weather map page.
func DefaultOptions() Options {
	return Options{
		MapStyle:       "carto-positron",
		Zoom:           2,
		Height:         600,
		MarkerSize:     10,
		ColorScale:     "Viridis",
		ColorBarTitle:  "Temperature (°C)",
		EmptySelection: weather.ShowAll,
	}
}

// Source is the read-only record collection a Renderer draws from.
type Source interface {
	Records() []weather.Record
}

// Renderer owns the single mutable figure of the process. Every refresh
// reassigns the figure's backing arrays instead of building a new figure.
type Renderer struct {
	mu     sync.Mutex
	source Source
	opts   Options
	fig    Figure
}

// NewRenderer creates a Renderer whose arrays are sized for the whole collection.
func NewRenderer(source Source, opts Options) *Renderer {
	r := &Renderer{source: source, opts: opts}
	r.fig = newFigure(opts, len(source.Records()))
	return r
}

// Render recomputes the figure for filter and passes it to fn while the
// renderer is locked. fn must not retain the figure after it returns.
func (r *Renderer) Render(filter weather.Filter, fn func(*Figure) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	Fill(&r.fig, r.source.Records(), filter.WithPolicy(r.opts.EmptySelection), r.opts)
	return fn(&r.fig)
}

func newFigure(opts Options, capacity int) Figure {
	return Figure{
		Data: []Trace{{
			Type:          "scattermapbox",
			Mode:          "markers",
			Lat:           make([]float64, 0, capacity),
			Lon:           make([]float64, 0, capacity),
			Text:          make([]string, 0, capacity),
			CustomData:    make([]int64, 0, capacity),
			HoverTemplate: "<b>%{text}</b><br>%{marker.color:.1f} °C<extra></extra>",
			Marker: Marker{
				Size:       opts.MarkerSize,
				Color:      make([]float64, 0, capacity),
				ColorScale: opts.ColorScale,
				ShowScale:  true,
				ColorBar:   ColorBar{Title: Title{Text: opts.ColorBarTitle}},
			},
		}},
		Layout: Layout{
			Height: opts.Height,
			Mapbox: Mapbox{Style: opts.MapStyle, Zoom: opts.Zoom},
			Margin: Margin{L: 0, R: 0, T: 30, B: 0},
			UIRev:  "weather-map",
		},
	}
}

// Fill writes the scene for the records matching filter into fig. Arrays are
// truncated and refilled in place. The color scale bounds are the min and max
// temperature of the rendered subset; an empty subset yields zero markers
// with bounds 0/0.
func Fill(fig *Figure, records []weather.Record, filter weather.Filter, opts Options) {
	if len(fig.Data) == 0 {
		*fig = newFigure(opts, len(records))
	}
	t := &fig.Data[0]

	t.Lat = t.Lat[:0]
	t.Lon = t.Lon[:0]
	t.Text = t.Text[:0]
	t.CustomData = t.CustomData[:0]
	t.Marker.Color = t.Marker.Color[:0]

	var (
		cmin, cmax     float64
		sumLat, sumLon float64
	)
	if !filter.MatchesNothing() {
		for _, rec := range records {
			if !filter.Matches(rec) {
				continue
			}
			if len(t.Lat) == 0 || rec.TemperatureMax < cmin {
				cmin = rec.TemperatureMax
			}
			if len(t.Lat) == 0 || rec.TemperatureMax > cmax {
				cmax = rec.TemperatureMax
			}
			t.Lat = append(t.Lat, rec.Latitude)
			t.Lon = append(t.Lon, rec.Longitude)
			t.Text = append(t.Text, rec.City)
			t.CustomData = append(t.CustomData, rec.Timestamp)
			t.Marker.Color = append(t.Marker.Color, rec.TemperatureMax)
			sumLat += rec.Latitude
			sumLon += rec.Longitude
		}
	}

	n := len(t.Lat)
	t.Marker.CMin = cmin
	t.Marker.CMax = cmax
	t.Meta.Count = n

	fig.Layout.Mapbox.Center = LatLon{}
	if n > 0 {
		fig.Layout.Mapbox.Center = LatLon{Lat: sumLat / float64(n), Lon: sumLon / float64(n)}
	}
	fig.Layout.Title.Text = title(n)

	if opts.Animate {
		fillFrames(fig)
	}
}

func title(n int) string {
	switch n {
	case 0:
		return "No matching records"
	case 1:
		return "1 record"
	default:
		return strconv.Itoa(n) + " records"
	}
}
