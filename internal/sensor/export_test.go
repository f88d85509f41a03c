package sensor

// Unexported helpers exercised by the external tests.
var (
	WriteHeld   = writeHeld
	Replay      = replay
	NearestMode = nearestMode
)

const (
	ProgramSettle = programSettle
	StandbySettle = standbySettle
)

// RoundToRange exposes the control clamp for a standalone range.
func RoundToRange(min, max, step, v int64) int64 {
	c := Control{Min: min, Max: max, Step: step}
	return c.roundToRange(v)
}
