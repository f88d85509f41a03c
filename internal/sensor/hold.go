package sensor

import (
	"context"
	"fmt"

	"github.com/micro-nova/imx585-go/internal/hardware"
)

// writeHeld writes an n-byte little-endian value starting at base while the
// sensor's register hold latch is set, so the frame timing logic never
// samples a half-updated value. Once the latch is acquired it is released
// on every path; the first error wins.
func writeHeld(ctx context.Context, bus hardware.Bus, base hardware.Register, n int, value uint32) (err error) {
	if err := bus.Write(ctx, RegHold, 0x01); err != nil {
		return fmt.Errorf("set hold: %w", err)
	}
	defer func() {
		if relErr := bus.Write(ctx, RegHold, 0x00); relErr != nil && err == nil {
			err = fmt.Errorf("release hold: %w", relErr)
		}
	}()

	for i := 0; i < n; i++ {
		if err := bus.Write(ctx, base+hardware.Register(i), byte(value>>(8*i))); err != nil {
			return fmt.Errorf("held write: %w", err)
		}
	}
	return nil
}
