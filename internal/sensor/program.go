package sensor

import (
	"context"
	"fmt"
	"time"

	"github.com/micro-nova/imx585-go/internal/hardware"
)

// programSettle is how long register effects take to propagate inside the
// sensor after a program has been written.
const programSettle = 10 * time.Millisecond

// RegVal is one register program entry.
type RegVal struct {
	Addr hardware.Register
	Val  byte
}

// Program is an ordered register table. Entries are written strictly in
// order; nothing is merged or reordered.
type Program []RegVal

// ReplayError reports the entry at which a program replay stopped.
// Entries before Index have already been applied.
type ReplayError struct {
	Index int
	Addr  hardware.Register
	Err   error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("program entry %d (0x%04x): %v", e.Index, e.Addr, e.Err)
}

func (e *ReplayError) Unwrap() error { return e.Err }

// replay writes prog to bus and then blocks for the settle interval.
// The first failing write aborts the replay without rollback and without
// the settle wait.
func replay(ctx context.Context, bus hardware.Bus, prog Program, sleep func(time.Duration)) error {
	for i, rv := range prog {
		if err := bus.Write(ctx, rv.Addr, rv.Val); err != nil {
			return &ReplayError{Index: i, Addr: rv.Addr, Err: err}
		}
	}
	sleep(programSettle)
	return nil
}

// GlobalSettings returns a copy of the baseline register table.
func GlobalSettings() Program {
	out := make(Program, len(globalSettings))
	copy(out, globalSettings)
	return out
}
