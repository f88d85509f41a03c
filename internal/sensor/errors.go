package sensor

import "errors"

// Attach-time configuration errors. Any of these leaves the device unusable.
var (
	ErrUnsupportedClock     = errors.New("unsupported external clock frequency")
	ErrInvalidLanes         = errors.New("invalid CSI-2 lane count")
	ErrMissingLinkFrequency = errors.New("required link frequency not declared")
	ErrUnknownVariant       = errors.New("unknown sensor variant")
	ErrUnknownFormat        = errors.New("unknown pixel format")
)

// Runtime errors.
var (
	ErrOutOfRange     = errors.New("control value out of range")
	ErrReadOnly       = errors.New("control is read-only")
	ErrUnknownControl = errors.New("unknown control")
	ErrBusy           = errors.New("device is streaming")
	ErrClosed         = errors.New("device is closed")
	ErrInvalidTarget  = errors.New("invalid selection target")
	ErrInvalidIndex   = errors.New("enumeration index out of range")
	ErrNoTryState     = errors.New("try negotiation needs scratch state")
)
