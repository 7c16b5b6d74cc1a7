package cpu

import (
	"github.com/rv32x/rv32core/decode"
	"github.com/rv32x/rv32core/isa"
)

// StepResult reports what happened during one ISS.Step call, for callers
// (the CLI runner, tests, a debugger) that want to observe retirement
// without re-deriving it from CpuState.
type StepResult struct {
	Trapped   bool
	Cause     uint32
	Tval      uint32
	Breakpoint bool // true when execution stopped on EBREAK (StopOnEBreak)
}

// ISS drives one hart's CpuState through the fetch/decode/execute/trap
// loop. It holds no architectural state of its own — everything lives in
// CpuState — only the run-level policy knobs.
type ISS struct {
	State *CpuState

	// StopOnEBreak, when true, makes Step return with Breakpoint set
	// instead of handing CAUSE_BREAKPOINT to TakeTrap — the debugger's
	// hook point.
	StopOnEBreak bool

	InstrCount uint64
}

// NewISS constructs an ISS loop around state.
func NewISS(state *CpuState) *ISS {
	return &ISS{State: state}
}

// Step executes exactly one iteration of the loop: interrupt check, fetch,
// decode, execute, account, trap.
func (iss *ISS) Step() StepResult {
	s := iss.State

	if irq := CheckPending(s); irq != 0 {
		TakeTrap(s, irq, 0)
		s.PC = s.NextPC
		return StepResult{Trapped: true, Cause: irq}
	}

	if s.PC&1 != 0 {
		faultPC := s.PC
		TakeTrap(s, isa.CauseMisalignedFetch, faultPC)
		s.PC = s.NextPC
		return StepResult{Trapped: true, Cause: isa.CauseMisalignedFetch, Tval: faultPC}
	}

	raw := s.Mem.Read(s.PC, 4)
	d := decode.Decode(raw)
	s.NextPC = s.PC + d.Len()

	r := Execute(s, d)

	iss.InstrCount++
	s.CSR.IncMCycle()
	s.CSR.IncMInstret()

	if r.Exception {
		if iss.StopOnEBreak && r.Cause == isa.CauseBreakpoint {
			return StepResult{Breakpoint: true}
		}
		TakeTrap(s, r.Cause, r.Tval)
	}

	s.PC = s.NextPC
	return StepResult{Trapped: r.Exception, Cause: r.Cause, Tval: r.Tval}
}

// Run steps the ISS until a breakpoint stop or maxSteps iterations have
// run (0 means unbounded). It returns the StepResult that ended the run.
func (iss *ISS) Run(maxSteps uint64) StepResult {
	var last StepResult
	for n := uint64(0); maxSteps == 0 || n < maxSteps; n++ {
		last = iss.Step()
		if last.Breakpoint {
			return last
		}
	}
	return last
}
