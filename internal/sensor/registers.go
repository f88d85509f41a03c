package sensor

import "github.com/micro-nova/imx585-go/internal/hardware"

// Register addresses from the IMX585 register map.
const (
	RegStandby    hardware.Register = 0x3000 // 1 = standby, 0 = operating
	RegHold       hardware.Register = 0x3001 // register hold latch for multi-byte values
	RegMasterStop hardware.Register = 0x3002 // XMSTA: 0 = master start, 1 = master stop
	RegInckSel    hardware.Register = 0x3014 // input clock select
	RegLaneRate   hardware.Register = 0x3015 // CSI-2 data rate select
	RegFlipH      hardware.Register = 0x3020 // WINMODEH horizontal reverse
	RegFlipV      hardware.Register = 0x3021 // WINMODEV vertical reverse
	RegADBit      hardware.Register = 0x3022 // AD conversion bit depth
	RegMDBit      hardware.Register = 0x3023 // output bit depth
	RegVMax       hardware.Register = 0x3028 // 3 bytes, frame length in lines
	RegHMax       hardware.Register = 0x302C // 2 bytes, line length
	RegFDGSel0    hardware.Register = 0x3030 // conversion gain select
	RegFDGSel1    hardware.Register = 0x3031
	RegFDGSel2    hardware.Register = 0x3032
	RegLaneMode   hardware.Register = 0x3040 // CSI-2 lane count
	RegExposure   hardware.Register = 0x3050 // 3 bytes, SHR0
	RegGain       hardware.Register = 0x306C // 2 bytes, GAIN0
)

// Input clock select codes.
const (
	InckSel74_25  byte = 0x00
	InckSel37_125 byte = 0x01
	InckSel72     byte = 0x02
	InckSel27     byte = 0x03
	InckSel24     byte = 0x04
)

// Lane rate codes (Mbps per lane).
const (
	LaneRate2376 byte = 0x00
	LaneRate2079 byte = 0x01
	LaneRate1782 byte = 0x02
	LaneRate1440 byte = 0x03
	LaneRate1188 byte = 0x04
	LaneRate891  byte = 0x05
	LaneRate720  byte = 0x06
	LaneRate594  byte = 0x07
)

// Lane mode codes.
const (
	LaneMode2 byte = 0x01
	LaneMode4 byte = 0x03
)

// Conversion gain codes written to FDG_SEL0.
const (
	FDGSelLCG byte = 0x00
	FDGSelHCG byte = 0x01
)

// Bit depth codes shared by ADBIT and MDBIT.
const (
	BitDepth10 byte = 0x00
	BitDepth12 byte = 0x01
)

const (
	VMaxMax = 0x0fffff
	HMaxMax = 0xffff

	ExposureMin  = 8
	ExposureStep = 2
	// Exposure must stay this many lines below VMAX.
	ExposureOffset = 4

	GainMin  = 0
	GainMax  = 100
	GainStep = 1

	// DefaultGainThreshold is the analog gain at which the sensor switches
	// from high to low conversion gain.
	DefaultGainThreshold = 0x22
)

// Pixel array geometry.
const (
	NativeWidth      = 3876
	NativeHeight     = 2204
	PixelArrayLeft   = 0
	PixelArrayTop    = 20
	PixelArrayWidth  = 3856
	PixelArrayHeight = 2180
	DefaultPixelRate = 148500000
	LinkFreq2Lane    = 594000000
	LinkFreq4Lane    = 297000000
)
