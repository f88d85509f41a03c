package sensor

// Rect is a rectangle on the pixel array.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Mode is a supported readout resolution with its timing template.
type Mode struct {
	Width  int
	Height int
	// HMax is the minimum line length in half pixel clocks.
	HMax int
	// VMax is the default frame length in lines.
	VMax    int
	Crop    Rect
	Program Program
}

// HBlankMin is the smallest horizontal blanking the mode allows.
func (m *Mode) HBlankMin() int { return m.HMax - m.Width }

// VBlankMin is the smallest vertical blanking the mode allows. It is also the
// default vertical blanking.
func (m *Mode) VBlankMin() int { return m.VMax - m.Height }

// modes is the mode catalog. Entries are never modified after init.
var modes = []Mode{
	{
		// Full readout including the color processing margins and the
		// ignored pixel area.
		Width:  3856,
		Height: 2180,
		HMax:   3944 * 2,
		VMax:   0x08ca,
		Crop: Rect{
			Left:   PixelArrayLeft,
			Top:    PixelArrayTop,
			Width:  NativeWidth,
			Height: NativeHeight,
		},
		Program: Program{
			{RegFDGSel1, 0x00},
			{RegFDGSel2, 0x00},
		},
	},
}

// Modes returns the mode catalog. Callers must not modify the entries.
func Modes() []Mode { return modes }

// nearestMode returns the index of the catalog entry whose size is closest to
// width×height by |Δw|+|Δh|. Ties go to the earlier entry.
func nearestMode(catalog []Mode, width, height int) int {
	best, bestErr := 0, -1
	for i := range catalog {
		e := abs(catalog[i].Width-width) + abs(catalog[i].Height-height)
		if bestErr < 0 || e < bestErr {
			best, bestErr = i, e
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
