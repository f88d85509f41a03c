package models

// Stream states as reported in State.Stream.
const (
	StreamIdle        = "idle"
	StreamConfiguring = "configuring"
	StreamStreaming   = "streaming"
	StreamStopping    = "stopping"
)

var codeNames = map[uint32]string{
	0x300f: "SRGGB10_1X10",
	0x3012: "SRGGB12_1X12",
	0x200a: "Y10_1X10",
	0x2013: "Y12_1X12",
}

// CodeName returns the media bus name of a format code, or "" if unknown.
func CodeName(code uint32) string {
	return codeNames[code]
}
