package view

import (
	"slices"
	"strconv"
	"time"
)

const allFramesName = "all"

// animateArgs jumps straight to a frame without tweening.
var animateArgs = map[string]any{
	"mode":       "immediate",
	"frame":      map[string]any{"duration": 0, "redraw": true},
	"transition": map[string]any{"duration": 0},
}

// fillFrames derives one frame per distinct timestamp of the rendered trace,
// in ascending order, preceded by a frame holding the whole subset. Frame
// arrays are truncated and refilled like the trace itself. An empty trace
// clears the frames and the slider.
func fillFrames(fig *Figure) {
	t := &fig.Data[0]

	fig.times = append(fig.times[:0], t.CustomData...)
	slices.Sort(fig.times)
	fig.times = slices.Compact(fig.times)

	fig.Frames = fig.Frames[:0]
	if len(fig.times) == 0 {
		fig.Layout.Sliders = fig.Layout.Sliders[:0]
		return
	}

	all := nextFrame(fig, allFramesName)
	ft := &all.Data[0]
	ft.Lat = append(ft.Lat, t.Lat...)
	ft.Lon = append(ft.Lon, t.Lon...)
	ft.Text = append(ft.Text, t.Text...)
	ft.CustomData = append(ft.CustomData, t.CustomData...)
	ft.Marker.Color = append(ft.Marker.Color, t.Marker.Color...)

	for _, ts := range fig.times {
		fr := nextFrame(fig, strconv.FormatInt(ts, 10))
		ft := &fr.Data[0]
		for i, rts := range t.CustomData {
			if rts != ts {
				continue
			}
			ft.Lat = append(ft.Lat, t.Lat[i])
			ft.Lon = append(ft.Lon, t.Lon[i])
			ft.Text = append(ft.Text, t.Text[i])
			ft.CustomData = append(ft.CustomData, rts)
			ft.Marker.Color = append(ft.Marker.Color, t.Marker.Color[i])
		}
	}

	for i := range fig.Frames {
		fig.Frames[i].Data[0].Marker.CMin = t.Marker.CMin
		fig.Frames[i].Data[0].Marker.CMax = t.Marker.CMax
	}

	if len(fig.Layout.Sliders) == 0 {
		fig.Layout.Sliders = append(fig.Layout.Sliders, Slider{
			CurrentValue: CurrentValue{Prefix: "Time: "},
			Pad:          Pad{T: 30},
		})
	}
	s := &fig.Layout.Sliders[0]
	s.Active = 0
	s.Steps = s.Steps[:0]
	for _, fr := range fig.Frames {
		s.Steps = append(s.Steps, SliderStep{
			Label:  frameLabel(fr.Name),
			Method: "animate",
			Args:   []any{[]string{fr.Name}, animateArgs},
		})
	}
}

// nextFrame extends fig.Frames by one, reusing the arrays of a frame from an
// earlier render when there is one.
func nextFrame(fig *Figure, name string) *Frame {
	n := len(fig.Frames)
	if n < cap(fig.Frames) {
		fig.Frames = fig.Frames[:n+1]
	} else {
		fig.Frames = append(fig.Frames, Frame{Data: make([]FrameTrace, 1)})
	}

	fr := &fig.Frames[n]
	fr.Name = name
	ft := &fr.Data[0]
	ft.Lat = ft.Lat[:0]
	ft.Lon = ft.Lon[:0]
	ft.Text = ft.Text[:0]
	ft.CustomData = ft.CustomData[:0]
	ft.Marker.Color = ft.Marker.Color[:0]
	return fr
}

func frameLabel(name string) string {
	ts, err := strconv.ParseInt(name, 10, 64)
	if err != nil {
		return name
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04")
}
