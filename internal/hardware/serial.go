package hardware

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.bug.st/serial"
	"golang.org/x/time/rate"
)

// SerialBus drives the sensor through a UART-to-I²C register bridge.
//
// Line protocol (ASCII, newline terminated):
//
//	W<addr:4 hex><val:2 hex>  → "K"          write one register
//	R<addr:4 hex>             → "<val:2 hex>" read one register
//	any command               → "E<reason>"  bridge-side failure
type SerialBus struct {
	mu      sync.Mutex
	port    io.ReadWriteCloser
	r       *bufio.Reader
	limiter *rate.Limiter
}

// OpenSerial opens the bridge on the given serial device.
func OpenSerial(device string, baud int) (*SerialBus, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", device, err)
	}
	return NewSerialBus(port, 0), nil
}

// NewSerialBus wraps an open port. opsPerSec <= 0 selects the default rate.
func NewSerialBus(port io.ReadWriteCloser, opsPerSec int) *SerialBus {
	if opsPerSec <= 0 {
		opsPerSec = defaultOpsPerSec
	}
	return &SerialBus{
		port:    port,
		r:       bufio.NewReader(port),
		limiter: rate.NewLimiter(rate.Limit(opsPerSec), 16),
	}
}

func (s *SerialBus) Write(ctx context.Context, reg Register, val byte) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return &BusError{Op: "write", Addr: reg, Err: err}
	}
	resp, err := s.command(fmt.Sprintf("W%04X%02X", reg, val))
	if err != nil {
		return &BusError{Op: "write", Addr: reg, Err: err}
	}
	if resp != "K" {
		return &BusError{Op: "write", Addr: reg, Err: fmt.Errorf("serial: unexpected response %q", resp)}
	}
	return nil
}

func (s *SerialBus) Read(ctx context.Context, reg Register) (byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, &BusError{Op: "read", Addr: reg, Err: err}
	}
	resp, err := s.command(fmt.Sprintf("R%04X", reg))
	if err != nil {
		return 0, &BusError{Op: "read", Addr: reg, Err: err}
	}
	b, err := hex.DecodeString(resp)
	if err != nil || len(b) != 1 {
		return 0, &BusError{Op: "read", Addr: reg, Err: fmt.Errorf("serial: bad read response %q", resp)}
	}
	return b[0], nil
}

// command sends one line and waits for its reply line.
func (s *SerialBus) command(cmd string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.port.Write([]byte(cmd + "\n")); err != nil {
		return "", fmt.Errorf("serial: write: %w", err)
	}
	line, err := s.r.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("serial: read: %w", err)
	}
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "E") {
		return "", fmt.Errorf("serial: bridge error: %s", strings.TrimPrefix(line, "E"))
	}
	return line, nil
}

func (s *SerialBus) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port.Close()
}

func (s *SerialBus) IsReal() bool { return true }
