package sensor

import "fmt"

// Media bus codes used by the sensor.
const (
	CodeSRGGB10 uint32 = 0x300f
	CodeSRGGB12 uint32 = 0x3012
	CodeY10     uint32 = 0x200a
	CodeY12     uint32 = 0x2013
)

// PixelFormat is a supported output encoding.
type PixelFormat struct {
	Code uint32
	BPP  int
}

// Variant selects the color filter flavour of the sensor.
type Variant string

const (
	VariantColor Variant = "color"
	VariantMono  Variant = "mono"
)

var (
	colorFormats = []PixelFormat{
		{Code: CodeSRGGB10, BPP: 10},
		{Code: CodeSRGGB12, BPP: 12},
	}
	monoFormats = []PixelFormat{
		{Code: CodeY10, BPP: 10},
		{Code: CodeY12, BPP: 12},
	}
)

// Formats returns the format catalog for a variant.
func Formats(v Variant) ([]PixelFormat, error) {
	switch v {
	case VariantColor:
		return colorFormats, nil
	case VariantMono:
		return monoFormats, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, v)
	}
}

// findFormat returns the index of code in catalog, falling back to 0.
func findFormat(catalog []PixelFormat, code uint32) int {
	for i, f := range catalog {
		if f.Code == code {
			return i
		}
	}
	return 0
}

// bitDepthCode maps a sample width to the ADBIT/MDBIT code.
func bitDepthCode(bpp int) (byte, error) {
	switch bpp {
	case 10:
		return BitDepth10, nil
	case 12:
		return BitDepth12, nil
	default:
		return 0, fmt.Errorf("%w: %d bits per sample", ErrUnknownFormat, bpp)
	}
}
