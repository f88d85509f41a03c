package hardware

import (
	"context"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// PeriphBus talks to the sensor through a periph.io I²C bus. It works on any
// host periph.io supports, including USB bridges registered in i2creg.
type PeriphBus struct {
	mu  sync.Mutex
	bus i2c.BusCloser
	dev *i2c.Dev
}

// OpenPeriph initializes the periph.io host drivers and opens the named bus.
// An empty name selects the first registered bus.
func OpenPeriph(name string, addr uint16) (*PeriphBus, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph: host init failed: %w", err)
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("periph: open bus %q: %w", name, err)
	}
	return NewPeriphBus(b, addr), nil
}

// NewPeriphBus wraps an already-open periph.io bus.
func NewPeriphBus(b i2c.BusCloser, addr uint16) *PeriphBus {
	return &PeriphBus{
		bus: b,
		dev: &i2c.Dev{Bus: b, Addr: addr},
	}
}

func (p *PeriphBus) Read(ctx context.Context, reg Register) (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	a := regAddr(reg)
	r := [1]byte{}
	if err := p.dev.Tx(a[:], r[:]); err != nil {
		return 0, &BusError{Op: "read", Addr: reg, Err: err}
	}
	return r[0], nil
}

func (p *PeriphBus) Write(ctx context.Context, reg Register, val byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	a := regAddr(reg)
	if err := p.dev.Tx([]byte{a[0], a[1], val}, nil); err != nil {
		return &BusError{Op: "write", Addr: reg, Err: err}
	}
	return nil
}

func (p *PeriphBus) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bus.Close()
}

func (p *PeriphBus) IsReal() bool { return true }

func (p *PeriphBus) String() string {
	return fmt.Sprintf("imx585@%s", p.dev.String())
}
