package hardware

import (
	"context"
	"sync"
)

// Access is one register transaction observed by the mock bus.
type Access struct {
	Op   string // "read" or "write"
	Addr Register
	Val  byte
}

// Mock is a thread-safe in-memory register bus for testing and development.
// It records every transaction in order.
type Mock struct {
	mu        sync.Mutex
	regs      map[Register]byte
	log       []Access
	failWrite bool
	failRead  bool
	failAddr  map[Register]bool
	failNth   int // fail the Nth successful-so-far write (1-based), 0 = off
	writes    int
	closed    bool
}

// NewMock creates a new mock bus with all registers reading as zero.
func NewMock() *Mock {
	return &Mock{
		regs:     make(map[Register]byte),
		failAddr: make(map[Register]bool),
	}
}

// SetFailWrite configures the mock to fail all write operations.
func (m *Mock) SetFailWrite(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrite = fail
}

// SetFailRead configures the mock to fail all read operations.
func (m *Mock) SetFailRead(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failRead = fail
}

// FailAt makes every write to addr fail until ClearFailures is called.
func (m *Mock) FailAt(addr Register) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAddr[addr] = true
}

// FailNthWrite makes the nth write from now fail (1-based).
func (m *Mock) FailNthWrite(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNth = m.writes + n
}

// ClearFailures removes every configured failure.
func (m *Mock) ClearFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrite = false
	m.failRead = false
	m.failAddr = make(map[Register]bool)
	m.failNth = 0
}

func (m *Mock) Read(ctx context.Context, addr Register) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, &BusError{Op: "read", Addr: addr, Err: ErrHardware("mock: bus closed")}
	}
	if m.failRead {
		return 0, &BusError{Op: "read", Addr: addr, Err: ErrHardware("mock: read failure configured")}
	}
	val := m.regs[addr]
	m.log = append(m.log, Access{Op: "read", Addr: addr, Val: val})
	return val, nil
}

func (m *Mock) Write(ctx context.Context, addr Register, val byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return &BusError{Op: "write", Addr: addr, Err: ErrHardware("mock: bus closed")}
	}
	m.writes++
	if m.failWrite || m.failAddr[addr] || (m.failNth > 0 && m.writes == m.failNth) {
		return &BusError{Op: "write", Addr: addr, Err: ErrHardware("mock: write failure configured")}
	}
	m.regs[addr] = val
	m.log = append(m.log, Access{Op: "write", Addr: addr, Val: val})
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Mock) IsReal() bool {
	return false
}

// GetReg returns a register value for testing purposes.
func (m *Mock) GetReg(addr Register) byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regs[addr]
}

// SetReg presets a register value without logging a transaction.
func (m *Mock) SetReg(addr Register, val byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.regs[addr] = val
}

// Writes returns the successful writes in the order they were issued.
func (m *Mock) Writes() []Access {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Access
	for _, a := range m.log {
		if a.Op == "write" {
			out = append(out, a)
		}
	}
	return out
}

// Reset forgets the transaction log. Register contents are kept.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log = nil
}

// MockPower is a Power implementation that counts calls.
type MockPower struct {
	mu     sync.Mutex
	on     bool
	ons    int
	offs   int
	failOn bool
}

// NewMockPower returns a powered-down mock power hook.
func NewMockPower() *MockPower {
	return &MockPower{}
}

// SetFailOn makes the next PowerOn calls fail.
func (p *MockPower) SetFailOn(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failOn = fail
}

func (p *MockPower) PowerOn(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failOn {
		return ErrHardware("mock: power-on failure configured")
	}
	p.on = true
	p.ons++
	return nil
}

func (p *MockPower) PowerOff() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.on = false
	p.offs++
}

// IsOn reports the current power state.
func (p *MockPower) IsOn() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.on
}

// Counts returns how many times PowerOn succeeded and PowerOff was called.
func (p *MockPower) Counts() (ons, offs int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ons, p.offs
}

// HardwareError is returned when a hardware operation fails.
type HardwareError struct {
	msg string
}

func (e HardwareError) Error() string { return e.msg }

// ErrHardware creates a new hardware error.
func ErrHardware(msg string) error { return HardwareError{msg: msg} }
