package cpu

import "github.com/rv32x/rv32core/isa"

// Option configures a CpuState at construction, following the
// functional-options pattern the wider pack reaches for whenever a
// constructor has more optional knobs than arguments should sanely carry.
type Option func(*CpuState)

// WithResetPC overrides the program counter the hart boots at. Default 0.
func WithResetPC(pc uint32) Option {
	return func(s *CpuState) { s.PC = pc }
}

// WithHartID sets the value mhartid reads back. Default 0.
func WithHartID(id uint32) Option {
	return func(s *CpuState) { s.CSR.HartID = id }
}

// WithMem installs the MemPort the hart fetches and accesses data
// through. Required in practice; a nil port panics on first access.
func WithMem(mem MemPort) Option {
	return func(s *CpuState) { s.Mem = mem }
}

// CpuState is the hart's architectural state: spec.md's CpuState. It is
// owned by exactly one ISS instance and mutated only by Execute/Trap on
// that instance's behalf.
type CpuState struct {
	Regs [32]int32
	PC   uint32

	// NextPC is scratch Execute uses to publish the post-instruction PC;
	// the ISS loop commits it to PC once the step completes.
	NextPC uint32

	Priv uint32 // isa.PrivU / isa.PrivS / isa.PrivM

	CSR         CSRFile
	Reservation Reservation
	Mem         MemPort

	// WFICount observes how many times WFI has retired. WFI itself stays
	// an architectural nop (per spec.md); this is purely a CLI-facing
	// counter, not part of the execution semantics.
	WFICount uint64
}

// NewCpuState constructs a hart in its post-reset state (priv = M, all
// registers zero, misa fixed) and applies opts.
func NewCpuState(opts ...Option) *CpuState {
	s := &CpuState{Priv: isa.PrivM}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HartID returns the value this hart reports via mhartid.
func (s *CpuState) HartID() uint32 { return s.CSR.HartID }

// Reg reads register i; x0 always reads zero.
func (s *CpuState) Reg(i uint32) int32 {
	if i == 0 {
		return 0
	}
	return s.Regs[i]
}

// SetReg writes register i; writes to x0 are a no-op, keeping the
// regs[0] == 0 invariant true after every operation without special-casing
// every call site.
func (s *CpuState) SetReg(i uint32, v int32) {
	if i == 0 {
		return
	}
	s.Regs[i] = v
}
