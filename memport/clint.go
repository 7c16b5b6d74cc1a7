package memport

import "github.com/rv32x/rv32core/cpu"

// CLINT is a minimal core-local interruptor: a free-running timer
// compared against a per-hart mtimecmp, plus a software-interrupt latch.
// It drives the hart's hardware mip bits through cpu.InterruptSource;
// the core itself never reads mtime/mtimecmp directly (those would live
// on the memory-mapped bus in a full platform, explicitly out of scope
// here per spec.md's external-collaborator boundary).
type CLINT struct {
	mtime    uint64
	mtimecmp uint64
	msip     bool

	sink cpu.InterruptSource
}

// NewCLINT returns a CLINT wired to drive sink's MTIP/MSIP lines.
func NewCLINT(sink cpu.InterruptSource) *CLINT {
	return &CLINT{sink: sink}
}

// Tick advances mtime by one and re-evaluates MTIP.
func (c *CLINT) Tick() {
	c.mtime++
	c.sink.SetMTIP(c.mtime >= c.mtimecmp)
}

// SetMTimeCmp installs a new compare value and re-evaluates MTIP immediately.
func (c *CLINT) SetMTimeCmp(v uint64) {
	c.mtimecmp = v
	c.sink.SetMTIP(c.mtime >= c.mtimecmp)
}

// SetMSIP latches or clears the software interrupt line.
func (c *CLINT) SetMSIP(v bool) {
	c.msip = v
	c.sink.SetMSIP(v)
}

// MTime returns the current free-running timer value.
func (c *CLINT) MTime() uint64 { return c.mtime }
