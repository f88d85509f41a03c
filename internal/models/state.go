// Package models defines the JSON shapes exchanged over the HTTP API and
// persisted by the settings store.
package models

// State is a point-in-time view of the sensor published to API clients.
type State struct {
	Info     Info      `json:"info"`
	Stream   string    `json:"stream"` // see Stream* constants
	Format   Format    `json:"format"`
	Crop     Rect      `json:"crop"`
	Controls []Control `json:"controls"`
}

// Info describes the attached sensor. It does not change after startup.
type Info struct {
	Version       string `json:"version"`
	Variant       string `json:"variant"` // "color" | "mono"
	Lanes         int    `json:"lanes"`
	ClockHz       int64  `json:"clock_hz"`
	LinkFrequency int64  `json:"link_frequency"`
	Bus           string `json:"bus"`
	MockBus       bool   `json:"mock_bus"`
}

// Format is a negotiated output format.
type Format struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Code       uint32 `json:"code"`
	CodeName   string `json:"code_name,omitempty"`
	Field      string `json:"field"`
	Colorspace string `json:"colorspace"`
}

// Rect is a rectangle on the pixel array.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Control is one sensor control with its current range.
type Control struct {
	Name     string  `json:"name"`
	Min      int64   `json:"min"`
	Max      int64   `json:"max"`
	Step     int64   `json:"step"`
	Default  int64   `json:"default"`
	Value    int64   `json:"value"`
	ReadOnly bool    `json:"read_only,omitempty"`
	Pending  bool    `json:"pending,omitempty"` // written at next stream start
	Menu     []int64 `json:"menu,omitempty"`
}

// FrameSize is one frame size enumeration entry.
type FrameSize struct {
	MinWidth  int `json:"min_width"`
	MaxWidth  int `json:"max_width"`
	MinHeight int `json:"min_height"`
	MaxHeight int `json:"max_height"`
}

// DeepCopy returns a copy sharing no slices with s.
func (s State) DeepCopy() State {
	cp := s
	if s.Controls != nil {
		cp.Controls = make([]Control, len(s.Controls))
		for i, c := range s.Controls {
			if c.Menu != nil {
				c.Menu = append([]int64(nil), c.Menu...)
			}
			cp.Controls[i] = c
		}
	}
	return cp
}

// Control returns the named control.
func (s *State) Control(name string) (Control, bool) {
	for _, c := range s.Controls {
		if c.Name == name {
			return c, true
		}
	}
	return Control{}, false
}
