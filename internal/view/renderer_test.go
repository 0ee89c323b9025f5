package view

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/i474232898/weather-map/internal/weather"
)

type sliceSource []weather.Record

func (s sliceSource) Records() []weather.Record { return s }

func sampleRecords() sliceSource {
	return sliceSource{
		{Latitude: 48.85, Longitude: 2.35, City: "Paris", Timestamp: 100, TemperatureMax: 21.5, CountryCode: "FR"},
		{Latitude: 43.30, Longitude: 5.37, City: "Marseille", Timestamp: 200, TemperatureMax: 27.0, CountryCode: "FR"},
		{Latitude: 52.52, Longitude: 13.40, City: "Berlin", Timestamp: 100, TemperatureMax: 18.0, CountryCode: "DE"},
		{Latitude: 64.15, Longitude: -21.94, City: "Reykjavik", Timestamp: 200, TemperatureMax: -3.5, CountryCode: "IS"},
		{Latitude: 30.04, Longitude: 31.24, City: "Cairo", Timestamp: 300, TemperatureMax: 38.2, CountryCode: "EG"},
	}
}

func render(t *testing.T, r *Renderer, f weather.Filter) Trace {
	t.Helper()
	var out Trace
	err := r.Render(f, func(fig *Figure) error {
		out = fig.Data[0]
		out.Lat = append([]float64(nil), fig.Data[0].Lat...)
		out.Text = append([]string(nil), fig.Data[0].Text...)
		out.Marker.Color = append([]float64(nil), fig.Data[0].Marker.Color...)
		return nil
	})
	if err != nil {
		t.Fatalf("Render: unexpected error: %v", err)
	}
	return out
}

func TestRenderMarkerCountMatchesFilter(t *testing.T) {
	recs := sampleRecords()
	r := NewRenderer(recs, DefaultOptions())

	filters := []weather.Filter{
		weather.NewFilter(nil, nil),
		weather.NewFilter([]string{"FR"}, nil),
		weather.NewFilter([]string{"FR", "DE"}, []int64{100}),
		weather.NewFilter(nil, []int64{200, 300}),
		weather.NewFilter([]string{"XX"}, nil),
	}

	for _, f := range filters {
		want := 0
		for _, rec := range recs {
			if f.Matches(rec) {
				want++
			}
		}
		tr := render(t, r, f)
		if len(tr.Lat) != want || len(tr.Text) != want || len(tr.Marker.Color) != want || tr.Meta.Count != want {
			t.Fatalf("expected %d markers, got lat=%d text=%d color=%d count=%d",
				want, len(tr.Lat), len(tr.Text), len(tr.Marker.Color), tr.Meta.Count)
		}
	}
}

func TestRenderColorBoundsUseFilteredSubset(t *testing.T) {
	r := NewRenderer(sampleRecords(), DefaultOptions())

	tr := render(t, r, weather.NewFilter([]string{"FR"}, nil))
	if tr.Marker.CMin != 21.5 || tr.Marker.CMax != 27.0 {
		t.Fatalf("expected bounds 21.5/27, got %v/%v", tr.Marker.CMin, tr.Marker.CMax)
	}

	tr = render(t, r, weather.NewFilter(nil, nil))
	if tr.Marker.CMin != -3.5 || tr.Marker.CMax != 38.2 {
		t.Fatalf("expected bounds -3.5/38.2, got %v/%v", tr.Marker.CMin, tr.Marker.CMax)
	}

	tr = render(t, r, weather.NewFilter([]string{"DE"}, nil))
	if tr.Marker.CMin != 18 || tr.Marker.CMax != 18 {
		t.Fatalf("expected single-record bounds 18/18, got %v/%v", tr.Marker.CMin, tr.Marker.CMax)
	}
}

func TestRenderEmptySubset(t *testing.T) {
	r := NewRenderer(sampleRecords(), DefaultOptions())

	// Fill the arrays first so the empty render has something to clear.
	render(t, r, weather.NewFilter(nil, nil))

	tr := render(t, r, weather.NewFilter([]string{"FR"}, []int64{300}))
	if len(tr.Lat) != 0 || tr.Meta.Count != 0 {
		t.Fatalf("expected empty scene, got %d markers", len(tr.Lat))
	}
	if tr.Marker.CMin != 0 || tr.Marker.CMax != 0 {
		t.Fatalf("expected zero bounds for empty scene, got %v/%v", tr.Marker.CMin, tr.Marker.CMax)
	}
}

func TestRenderEmptySelectionPolicy(t *testing.T) {
	opts := DefaultOptions()
	opts.EmptySelection = weather.ShowNone
	r := NewRenderer(sampleRecords(), opts)

	if tr := render(t, r, weather.NewFilter(nil, nil)); len(tr.Lat) != 0 {
		t.Fatalf("expected no markers without a selection, got %d", len(tr.Lat))
	}
	if tr := render(t, r, weather.NewFilter([]string{"EG"}, nil)); len(tr.Lat) != 1 || tr.Text[0] != "Cairo" {
		t.Fatalf("expected Cairo only, got %v", tr.Text)
	}
}

func TestRenderReusesBackingArrays(t *testing.T) {
	recs := sampleRecords()
	r := NewRenderer(recs, DefaultOptions())

	var first *float64
	for i := 0; i < 50; i++ {
		var f weather.Filter
		if i%2 == 0 {
			f = weather.NewFilter([]string{"FR"}, nil)
		}
		err := r.Render(f, func(fig *Figure) error {
			tr := fig.Data[0]
			if cap(tr.Lat) != len(recs) || cap(tr.Marker.Color) != len(recs) {
				t.Fatalf("backing arrays resized: cap lat=%d color=%d", cap(tr.Lat), cap(tr.Marker.Color))
			}
			p := &tr.Lat[:1][0]
			if first == nil {
				first = p
			} else if first != p {
				t.Fatalf("latitude array reallocated on refresh %d", i)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("Render: unexpected error: %v", err)
		}
	}
}

func TestFillRecentersMap(t *testing.T) {
	var fig Figure
	recs := []weather.Record{
		{Latitude: 10, Longitude: 20, TemperatureMax: 1},
		{Latitude: 30, Longitude: 40, TemperatureMax: 2},
	}
	Fill(&fig, recs, weather.NewFilter(nil, nil), DefaultOptions())

	c := fig.Layout.Mapbox.Center
	if math.Abs(c.Lat-20) > 1e-9 || math.Abs(c.Lon-30) > 1e-9 {
		t.Fatalf("expected center 20,30, got %v,%v", c.Lat, c.Lon)
	}
	if fig.Layout.Title.Text != "2 records" {
		t.Fatalf("unexpected title %q", fig.Layout.Title.Text)
	}
}

func TestFigureJSONShape(t *testing.T) {
	r := NewRenderer(sampleRecords(), DefaultOptions())

	var raw []byte
	err := r.Render(weather.NewFilter([]string{"IS"}, nil), func(fig *Figure) error {
		var err error
		raw, err = json.Marshal(fig)
		return err
	})
	if err != nil {
		t.Fatalf("Render: unexpected error: %v", err)
	}

	var decoded struct {
		Data []struct {
			Type   string    `json:"type"`
			Lat    []float64 `json:"lat"`
			Text   []string  `json:"text"`
			Marker struct {
				ColorScale string  `json:"colorscale"`
				CMin       float64 `json:"cmin"`
			} `json:"marker"`
		} `json:"data"`
		Layout struct {
			Mapbox struct {
				Style string `json:"style"`
			} `json:"mapbox"`
		} `json:"layout"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded.Data) != 1 || decoded.Data[0].Type != "scattermapbox" {
		t.Fatalf("unexpected traces: %s", raw)
	}
	if decoded.Data[0].Text[0] != "Reykjavik" || decoded.Data[0].Marker.ColorScale != "Viridis" {
		t.Fatalf("unexpected trace content: %s", raw)
	}
	if decoded.Layout.Mapbox.Style != "carto-positron" {
		t.Fatalf("unexpected map style %q", decoded.Layout.Mapbox.Style)
	}
}
