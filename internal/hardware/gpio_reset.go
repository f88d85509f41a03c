package hardware

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

const (
	// Reset is released this long after the rails come up (datasheet: ≥1 µs).
	resetDelay = 2 * time.Microsecond

	// The sensor needs this long after reset release before it accepts
	// register traffic.
	startupDelay = 30 * time.Millisecond
)

// GPIOPins names the host pins that sequence the sensor. Any entry may be
// empty when the carrier board hard-wires that signal.
type GPIOPins struct {
	Clock string   // oscillator enable, active high
	Rails []string // supply enables in power-up order (VDDA, VDDD, VDDIO)
	Reset string   // XCLR, active low
}

// GPIOPower implements Power with periph.io GPIO pins.
type GPIOPower struct {
	clock gpio.PinOut
	rails []gpio.PinOut
	reset gpio.PinOut
	sleep func(time.Duration)
}

// NewGPIOPower initializes the periph.io host drivers and resolves the pins.
// The reset line is driven low immediately so the sensor stays in reset
// until PowerOn.
func NewGPIOPower(pins GPIOPins) (*GPIOPower, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio: host init failed: %w", err)
	}

	lookup := func(name, role string) (gpio.PinIO, error) {
		if name == "" {
			return nil, nil
		}
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("gpio: failed to open %s (%s)", name, role)
		}
		return p, nil
	}

	p := &GPIOPower{sleep: time.Sleep}
	clk, err := lookup(pins.Clock, "clock")
	if err != nil {
		return nil, err
	}
	if clk != nil {
		p.clock = clk
	}
	for i, name := range pins.Rails {
		rail, err := lookup(name, fmt.Sprintf("rail %d", i))
		if err != nil {
			return nil, err
		}
		if rail != nil {
			p.rails = append(p.rails, rail)
		}
	}
	rst, err := lookup(pins.Reset, "reset")
	if err != nil {
		return nil, err
	}
	if rst != nil {
		p.reset = rst
		if err := rst.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("gpio: failed to assert reset: %w", err)
		}
	}
	return p, nil
}

func newGPIOPowerFromPins(clock gpio.PinOut, rails []gpio.PinOut, reset gpio.PinOut, sleep func(time.Duration)) *GPIOPower {
	return &GPIOPower{clock: clock, rails: rails, reset: reset, sleep: sleep}
}

// PowerOn enables the clock and rails in order, releases reset and waits for
// the sensor to finish its internal startup.
func (p *GPIOPower) PowerOn(ctx context.Context) error {
	if p.clock != nil {
		if err := p.clock.Out(gpio.High); err != nil {
			return fmt.Errorf("gpio: failed to enable clock: %w", err)
		}
	}
	for i, rail := range p.rails {
		if err := rail.Out(gpio.High); err != nil {
			// Unwind what was already enabled.
			for j := i - 1; j >= 0; j-- {
				_ = p.rails[j].Out(gpio.Low)
			}
			if p.clock != nil {
				_ = p.clock.Out(gpio.Low)
			}
			return fmt.Errorf("gpio: failed to enable rail %d: %w", i, err)
		}
	}

	p.sleep(resetDelay)
	if p.reset != nil {
		if err := p.reset.Out(gpio.High); err != nil {
			p.PowerOff()
			return fmt.Errorf("gpio: failed to release reset: %w", err)
		}
	}
	p.sleep(startupDelay)

	slog.Debug("gpio: sensor powered on", "rails", len(p.rails))
	return nil
}

// PowerOff stops the clock, asserts reset and drops the rails in reverse order.
func (p *GPIOPower) PowerOff() {
	if p.clock != nil {
		if err := p.clock.Out(gpio.Low); err != nil {
			slog.Warn("gpio: failed to disable clock", "err", err)
		}
	}
	if p.reset != nil {
		if err := p.reset.Out(gpio.Low); err != nil {
			slog.Warn("gpio: failed to assert reset", "err", err)
		}
	}
	for i := len(p.rails) - 1; i >= 0; i-- {
		if err := p.rails[i].Out(gpio.Low); err != nil {
			slog.Warn("gpio: failed to disable rail", "rail", i, "err", err)
		}
	}
	slog.Debug("gpio: sensor powered off")
}
