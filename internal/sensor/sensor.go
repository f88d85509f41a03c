// Package sensor drives a Sony IMX585 image sensor over a register bus.
//
// A Device owns the sensor's control values, its negotiated mode and format,
// and the streaming state machine. Control and format changes made while
// idle are only stored; Start powers the sensor and programs everything
// from scratch.
package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/micro-nova/imx585-go/internal/hardware"
)

// Config describes how the sensor is wired up.
type Config struct {
	Variant        Variant
	ClockFrequency physic.Frequency
	Lanes          int
	// LinkFrequencies are the CSI-2 link frequencies the receiver accepts,
	// in Hz. The frequency implied by Lanes must be among them.
	LinkFrequencies []int64
	// Gain overrides the conversion gain switch. Nil selects
	// DefaultGainMapping.
	Gain *GainMapping
}

var inckCodes = []struct {
	freq physic.Frequency
	code byte
}{
	{74250 * physic.KiloHertz, InckSel74_25},
	{37125 * physic.KiloHertz, InckSel37_125},
	{72 * physic.MegaHertz, InckSel72},
	{27 * physic.MegaHertz, InckSel27},
	{24 * physic.MegaHertz, InckSel24},
}

// InckCode returns the INCK_SEL code for an external clock frequency.
func InckCode(f physic.Frequency) (byte, error) {
	for _, c := range inckCodes {
		if c.freq == f {
			return c.code, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupportedClock, f)
}

// LinkFrequency returns the CSI-2 link frequency used with lanes.
func LinkFrequency(lanes int) (int64, error) {
	switch lanes {
	case 2:
		return LinkFreq2Lane, nil
	case 4:
		return LinkFreq4Lane, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrInvalidLanes, lanes)
}

// Device is an attached sensor. All methods are safe for concurrent use.
type Device struct {
	mu    sync.Mutex
	bus   hardware.Bus
	power hardware.Power
	sleep func(time.Duration)
	log   *slog.Logger

	formats []PixelFormat
	inckSel byte
	lanes   int
	gain    GainMapping

	modeIdx   int
	formatIdx int
	format    Format
	ctrls     controlSet

	state   State
	powered bool
	closed  bool
}

// Option configures a Device.
type Option func(*Device)

// WithSleep replaces the function used for settle waits.
func WithSleep(sleep func(time.Duration)) Option {
	return func(d *Device) { d.sleep = sleep }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Device) { d.log = l }
}

// Attach validates cfg and builds an idle device. The sensor is not powered
// and nothing is written to the bus.
func Attach(bus hardware.Bus, power hardware.Power, cfg Config, opts ...Option) (*Device, error) {
	inck, err := InckCode(cfg.ClockFrequency)
	if err != nil {
		return nil, err
	}
	freq, err := LinkFrequency(cfg.Lanes)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(cfg.LinkFrequencies, freq) {
		return nil, fmt.Errorf("%w: %d Hz for %d lanes", ErrMissingLinkFrequency, freq, cfg.Lanes)
	}
	formats, err := Formats(cfg.Variant)
	if err != nil {
		return nil, err
	}

	gain := DefaultGainMapping()
	if cfg.Gain != nil {
		gain = *cfg.Gain
	}

	d := &Device{
		bus:     bus,
		power:   power,
		sleep:   time.Sleep,
		log:     slog.Default(),
		formats: formats,
		inckSel: inck,
		lanes:   cfg.Lanes,
		gain:    gain,
	}
	for _, opt := range opts {
		opt(d)
	}

	mi, fi, f := d.resolve(Format{Width: initFormatWidth, Height: initFormatHeight})
	d.modeIdx, d.formatIdx, d.format = mi, fi, f
	d.ctrls = newControlSet(d.mode(), d.lanes)

	d.log.Info("sensor: attached",
		"variant", cfg.Variant,
		"clock", cfg.ClockFrequency.String(),
		"lanes", cfg.Lanes,
		"width", f.Width, "height", f.Height)
	return d, nil
}

func (d *Device) mode() *Mode { return &modes[d.modeIdx] }

// Mode returns the active mode.
func (d *Device) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return *d.mode()
}

// Lanes returns the configured CSI-2 lane count.
func (d *Device) Lanes() int { return d.lanes }

// Status is a point-in-time copy of the device state.
type Status struct {
	State    State
	Format   Format
	Crop     Rect
	Lanes    int
	Controls []Control
}

// Status returns a snapshot of the device.
func (d *Device) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Status{
		State:    d.state,
		Format:   d.format,
		Crop:     d.mode().Crop,
		Lanes:    d.lanes,
		Controls: d.ctrls.list(),
	}
}

// ReadRegister reads one register. An idle sensor is powered for the
// duration of the read.
func (d *Device) ReadRegister(ctx context.Context, addr hardware.Register) (byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, ErrClosed
	}
	if !d.powered {
		if err := d.power.PowerOn(ctx); err != nil {
			return 0, fmt.Errorf("power on: %w", err)
		}
		defer d.power.PowerOff()
	}
	return d.bus.Read(ctx, addr)
}

// Close stops streaming if needed, releases the bus and marks the device
// unusable. Close is idempotent.
func (d *Device) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	if d.state == StateStreaming {
		d.stopLocked(ctx)
	} else if d.powered {
		d.powerOffLocked()
	}
	d.closed = true
	d.log.Info("sensor: closed")
	return d.bus.Close()
}
