package sensor

import "fmt"

// Which selects the scope of a format operation.
type Which int

const (
	// Try negotiates against caller-owned scratch state only.
	Try Which = iota
	// Active changes the device configuration.
	Active
)

func (w Which) String() string {
	if w == Active {
		return "active"
	}
	return "try"
}

// ParseWhich resolves "try" or "active".
func ParseWhich(s string) (Which, error) {
	switch s {
	case "try":
		return Try, nil
	case "active", "":
		return Active, nil
	}
	return 0, fmt.Errorf("unknown format scope %q", s)
}

// Field and colorspace are fixed for raw sensor output.
const (
	FieldNone     = "none"
	ColorspaceRaw = "raw"
)

// Format is a negotiated output format.
type Format struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Code       uint32 `json:"code"`
	Field      string `json:"field"`
	Colorspace string `json:"colorspace"`
}

// TryState is caller-owned scratch space for Try negotiation.
type TryState struct {
	Format Format
	Crop   Rect
}

// FrameSize is one entry of the frame size enumeration.
type FrameSize struct {
	MinWidth  int `json:"min_width"`
	MaxWidth  int `json:"max_width"`
	MinHeight int `json:"min_height"`
	MaxHeight int `json:"max_height"`
}

// SelectionTarget names a rectangle on the pixel array.
type SelectionTarget int

const (
	SelectionCrop SelectionTarget = iota
	SelectionNativeSize
	SelectionCropDefault
	SelectionCropBounds
)

var selectionNames = map[string]SelectionTarget{
	"crop":         SelectionCrop,
	"native_size":  SelectionNativeSize,
	"crop_default": SelectionCropDefault,
	"crop_bounds":  SelectionCropBounds,
}

// ParseSelectionTarget resolves a selection target name.
func ParseSelectionTarget(s string) (SelectionTarget, error) {
	t, ok := selectionNames[s]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTarget, s)
	}
	return t, nil
}

// initFormatWidth and initFormatHeight are the size requested when a
// format is initialised; the nearest mode wins.
const (
	initFormatWidth  = 1936
	initFormatHeight = 1100
)

// resolve picks the mode and format for a requested format. The result is
// the exact mode dimensions with the requested code if supported, else the
// first code in the catalog.
func (d *Device) resolve(req Format) (int, int, Format) {
	mi := nearestMode(modes, req.Width, req.Height)
	fi := findFormat(d.formats, req.Code)
	m := &modes[mi]
	return mi, fi, Format{
		Width:      m.Width,
		Height:     m.Height,
		Code:       d.formats[fi].Code,
		Field:      FieldNone,
		Colorspace: ColorspaceRaw,
	}
}

// NewTryState returns scratch state initialised with the default format.
func (d *Device) NewTryState() *TryState {
	mi, _, f := d.resolve(Format{Width: initFormatWidth, Height: initFormatHeight})
	return &TryState{Format: f, Crop: modes[mi].Crop}
}

// SetFormat negotiates req. With Try only ts is written; with Active the
// device mode, format and mode-derived control ranges change and ts may be
// nil. Active negotiation is refused while streaming.
func (d *Device) SetFormat(which Which, ts *TryState, req Format) (Format, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return Format{}, ErrClosed
	}

	mi, fi, f := d.resolve(req)
	if which == Try {
		if ts == nil {
			return Format{}, ErrNoTryState
		}
		ts.Format = f
		ts.Crop = modes[mi].Crop
		return f, nil
	}

	if d.state != StateIdle {
		return Format{}, ErrBusy
	}
	d.setActiveLocked(mi, fi, f)
	d.log.Info("sensor: format set", "width", f.Width, "height", f.Height, "code", fmt.Sprintf("0x%04x", f.Code))
	return f, nil
}

// setActiveLocked installs a resolved mode and format. Blanking goes back to
// its defaults and exposure is re-ranged; nothing is written to the bus
// since the sensor is not streaming.
func (d *Device) setActiveLocked(mi, fi int, f Format) {
	d.modeIdx = mi
	d.formatIdx = fi
	d.format = f
	d.ctrls.applyModeRanges(&modes[mi])
}

// GetFormat returns the format for the given scope. Try reads ts only.
func (d *Device) GetFormat(which Which, ts *TryState) (Format, error) {
	if which == Try {
		if ts == nil {
			return Format{}, ErrNoTryState
		}
		return ts.Format, nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.format, nil
}

// EnumCodes lists the supported media bus codes.
func (d *Device) EnumCodes() []uint32 {
	out := make([]uint32, len(d.formats))
	for i, f := range d.formats {
		out[i] = f.Code
	}
	return out
}

// EnumFrameSize returns the index-th frame size for code. Min and max are
// equal since each mode has a single size.
func (d *Device) EnumFrameSize(code uint32, index int) (FrameSize, error) {
	if !d.supports(code) {
		return FrameSize{}, fmt.Errorf("%w: 0x%04x", ErrUnknownFormat, code)
	}
	if index < 0 || index >= len(modes) {
		return FrameSize{}, ErrInvalidIndex
	}
	m := &modes[index]
	return FrameSize{MinWidth: m.Width, MaxWidth: m.Width, MinHeight: m.Height, MaxHeight: m.Height}, nil
}

// FrameSizes lists every frame size for code.
func (d *Device) FrameSizes(code uint32) ([]FrameSize, error) {
	if !d.supports(code) {
		return nil, fmt.Errorf("%w: 0x%04x", ErrUnknownFormat, code)
	}
	out := make([]FrameSize, 0, len(modes))
	for i := range modes {
		fs, _ := d.EnumFrameSize(code, i)
		out = append(out, fs)
	}
	return out, nil
}

func (d *Device) supports(code uint32) bool {
	for _, f := range d.formats {
		if f.Code == code {
			return true
		}
	}
	return false
}

// Selection returns the rectangle for target. Crop follows the scope; the
// other targets are fixed properties of the pixel array.
func (d *Device) Selection(target SelectionTarget, which Which, ts *TryState) (Rect, error) {
	switch target {
	case SelectionCrop:
		if which == Try {
			if ts == nil {
				return Rect{}, ErrNoTryState
			}
			return ts.Crop, nil
		}
		d.mu.Lock()
		defer d.mu.Unlock()
		return d.mode().Crop, nil
	case SelectionNativeSize:
		return Rect{Width: NativeWidth, Height: NativeHeight}, nil
	case SelectionCropDefault, SelectionCropBounds:
		return Rect{
			Left:   PixelArrayLeft,
			Top:    PixelArrayTop,
			Width:  PixelArrayWidth,
			Height: PixelArrayHeight,
		}, nil
	}
	return Rect{}, fmt.Errorf("%w: %d", ErrInvalidTarget, target)
}
