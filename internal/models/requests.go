package models

// ControlUpdate is the PATCH body for a control.
type ControlUpdate struct {
	Value *int64 `json:"value"`
}

// FormatRequest is the PUT body for format negotiation. Zero fields ask for
// the sensor's nearest match.
type FormatRequest struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Code   uint32 `json:"code"`
}

// RegisterValue is the response of a register read.
type RegisterValue struct {
	Addr  string `json:"addr"`
	Value uint8  `json:"value"`
}
