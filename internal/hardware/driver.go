// Package hardware provides the transport layer for the IMX585 sensor.
// It defines the Bus and Power interfaces consumed by the sensor core and
// the concrete implementations: Linux i2c-dev, periph.io, a UART register
// bridge, and in-memory mocks for tests.
package hardware

import (
	"context"
	"fmt"
)

// Register is a 16-bit sensor register address.
type Register = uint16

// Bus is a synchronous register bus with 16-bit addresses and 8-bit values.
// Every call blocks until the bus transaction has completed or failed.
type Bus interface {
	// Read reads a single byte from a register.
	Read(ctx context.Context, addr Register) (byte, error)

	// Write writes a single byte to a register.
	Write(ctx context.Context, addr Register, val byte) error

	// Close releases the underlying transport.
	Close() error

	// IsReal returns true for a bus backed by hardware, false for a mock.
	IsReal() bool
}

// Power sequences the sensor's clock, supply rails and reset line.
type Power interface {
	// PowerOn enables the rails and releases reset. When it returns nil the
	// sensor accepts register traffic.
	PowerOn(ctx context.Context) error

	// PowerOff asserts reset and disables the rails. It cannot fail.
	PowerOff()
}

// BusError reports a register transaction that did not complete.
type BusError struct {
	Op   string // "read" or "write"
	Addr Register
	Err  error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("%s 0x%04x: %v", e.Op, e.Addr, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }

// regAddr encodes a register address as the big-endian prefix sent on the wire.
func regAddr(addr Register) [2]byte {
	return [2]byte{byte(addr >> 8), byte(addr)}
}

// NopPower is used when the sensor is powered and released from reset by
// the carrier board.
type NopPower struct{}

func (NopPower) PowerOn(context.Context) error { return nil }
func (NopPower) PowerOff()                     {}
