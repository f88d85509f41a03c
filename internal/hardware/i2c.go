//go:build linux

package hardware

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"
)

const (
	// DefaultI2CAddr is the IMX585's 7-bit address with XCLR strapping low.
	DefaultI2CAddr uint16 = 0x1a

	i2cRdwrIOCTL = 0x0707 // I2C_RDWR ioctl: combined write+read with repeated start
	i2cMsgRD     = 0x0001 // i2c_msg flag: read direction

	defaultOpsPerSec = 2000
)

// i2cMsg mirrors struct i2c_msg from linux/i2c.h
type i2cMsg struct {
	addr   uint16
	flags  uint16
	length uint16
	_pad   uint16 // struct alignment
	buf    uintptr
}

// i2cRdwr mirrors struct i2c_rdwr_ioctl_data from linux/i2c-dev.h
type i2cRdwr struct {
	msgs  uintptr
	nmsgs uint32
}

// I2CBus talks to the sensor through a Linux i2c-dev node using I2C_RDWR
// for every transaction. Register addresses go out big-endian ahead of the
// data byte.
type I2CBus struct {
	mu      sync.Mutex
	path    string
	addr    uint16
	fd      int
	limiter *rate.Limiter
}

// OpenI2C opens the i2c-dev node at path for the device at addr.
// opsPerSec <= 0 selects the default rate limit.
func OpenI2C(path string, addr uint16, opsPerSec int) (*I2CBus, error) {
	if opsPerSec <= 0 {
		opsPerSec = defaultOpsPerSec
	}
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("i2c: open %s: %w", path, err)
	}
	slog.Debug("i2c: opened bus", "path", path, "addr", fmt.Sprintf("0x%02x", addr))
	return &I2CBus{
		path:    path,
		addr:    addr,
		fd:      fd,
		limiter: rate.NewLimiter(rate.Limit(opsPerSec), 16),
	}, nil
}

func (b *I2CBus) Write(ctx context.Context, reg Register, val byte) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return &BusError{Op: "write", Addr: reg, Err: err}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fd < 0 {
		return &BusError{Op: "write", Addr: reg, Err: fmt.Errorf("i2c: bus closed")}
	}
	a := regAddr(reg)
	wbuf := [3]byte{a[0], a[1], val}
	msgs := [1]i2cMsg{
		{addr: b.addr, flags: 0, length: 3, buf: uintptr(unsafe.Pointer(&wbuf[0]))},
	}
	if err := b.rdwr(msgs[:]); err != nil {
		return &BusError{Op: "write", Addr: reg, Err: err}
	}
	return nil
}

// Read performs a combined address write + one byte read with REPEATED START.
func (b *I2CBus) Read(ctx context.Context, reg Register) (byte, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return 0, &BusError{Op: "read", Addr: reg, Err: err}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fd < 0 {
		return 0, &BusError{Op: "read", Addr: reg, Err: fmt.Errorf("i2c: bus closed")}
	}
	wbuf := regAddr(reg)
	rbuf := [1]byte{}
	msgs := [2]i2cMsg{
		{addr: b.addr, flags: 0, length: 2, buf: uintptr(unsafe.Pointer(&wbuf[0]))},
		{addr: b.addr, flags: i2cMsgRD, length: 1, buf: uintptr(unsafe.Pointer(&rbuf[0]))},
	}
	if err := b.rdwr(msgs[:]); err != nil {
		return 0, &BusError{Op: "read", Addr: reg, Err: err}
	}
	return rbuf[0], nil
}

func (b *I2CBus) rdwr(msgs []i2cMsg) error {
	rdwr := i2cRdwr{msgs: uintptr(unsafe.Pointer(&msgs[0])), nmsgs: uint32(len(msgs))}
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(b.fd), i2cRdwrIOCTL, uintptr(unsafe.Pointer(&rdwr))); errno != 0 {
		return fmt.Errorf("i2c: I2C_RDWR on %s addr 0x%02x: %w", b.path, b.addr, errno)
	}
	return nil
}

// Close releases the i2c-dev file descriptor.
func (b *I2CBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fd < 0 {
		return nil
	}
	err := unix.Close(b.fd)
	b.fd = -1
	return err
}

func (b *I2CBus) IsReal() bool { return true }
