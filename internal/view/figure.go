package view

// Figure is a Plotly figure description with a single scattermapbox trace.
// The page hands it to Plotly.react unchanged. Frames is only populated in
// animated mode.
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
	Frames []Frame `json:"frames,omitempty"`

	times []int64
}

// Trace holds one marker per rendered record.
type Trace struct {
	Type          string    `json:"type"`
	Mode          string    `json:"mode"`
	Lat           []float64 `json:"lat"`
	Lon           []float64 `json:"lon"`
	Text          []string  `json:"text"`
	CustomData    []int64   `json:"customdata"`
	HoverTemplate string    `json:"hovertemplate"`
	Marker        Marker    `json:"marker"`
	Meta          Meta      `json:"meta"`
}

// Marker colors every point by temperature along a fixed scale.
type Marker struct {
	Size       int       `json:"size"`
	Color      []float64 `json:"color"`
	CMin       float64   `json:"cmin"`
	CMax       float64   `json:"cmax"`
	ColorScale string    `json:"colorscale"`
	ShowScale  bool      `json:"showscale"`
	ColorBar   ColorBar  `json:"colorbar"`
}

type ColorBar struct {
	Title Title `json:"title"`
}

type Title struct {
	Text string `json:"text"`
}

// Meta carries render bookkeeping for the page.
type Meta struct {
	Count int `json:"count"`
}

type Layout struct {
	Height  int      `json:"height"`
	Mapbox  Mapbox   `json:"mapbox"`
	Margin  Margin   `json:"margin"`
	UIRev   string   `json:"uirevision"`
	Title   Title    `json:"title"`
	Sliders []Slider `json:"sliders,omitempty"`
}

type Mapbox struct {
	Style  string  `json:"style"`
	Zoom   float64 `json:"zoom"`
	Center LatLon  `json:"center"`
}

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	T int `json:"t"`
	B int `json:"b"`
}

// Frame replaces the trace data while the time slider is moved.
type Frame struct {
	Name string       `json:"name"`
	Data []FrameTrace `json:"data"`
}

type FrameTrace struct {
	Lat        []float64   `json:"lat"`
	Lon        []float64   `json:"lon"`
	Text       []string    `json:"text"`
	CustomData []int64     `json:"customdata"`
	Marker     FrameMarker `json:"marker"`
}

// FrameMarker repeats the trace bounds so every frame shares one color scale.
type FrameMarker struct {
	Color []float64 `json:"color"`
	CMin  float64   `json:"cmin"`
	CMax  float64   `json:"cmax"`
}

type Slider struct {
	Active       int          `json:"active"`
	CurrentValue CurrentValue `json:"currentvalue"`
	Pad          Pad          `json:"pad"`
	Steps        []SliderStep `json:"steps"`
}

type CurrentValue struct {
	Prefix string `json:"prefix"`
}

type Pad struct {
	T int `json:"t"`
}

// SliderStep animates to the frame named in Args.
type SliderStep struct {
	Label  string `json:"label"`
	Method string `json:"method"`
	Args   []any  `json:"args"`
}
