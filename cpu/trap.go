package cpu

import "github.com/rv32x/rv32core/isa"

// CheckPending returns the cause (with the interrupt bit set) of the
// highest-priority pending, enabled, deliverable interrupt, or 0 if none
// is deliverable right now.
func CheckPending(state *CpuState) uint32 {
	pending := state.CSR.MIP() & state.CSR.MIE()
	mPending := pending &^ state.CSR.MIDeleg()
	sPending := pending & state.CSR.MIDeleg()

	mEnabled := state.Priv < isa.PrivM || (state.Priv == isa.PrivM && state.CSR.MStatus()&isa.MSTATUS_MIE != 0)
	sEnabled := state.Priv < isa.PrivS || (state.Priv == isa.PrivS && state.CSR.MStatus()&isa.MSTATUS_SIE != 0)
	if state.Priv == isa.PrivM {
		sEnabled = false
	}

	active := uint32(0)
	if mEnabled {
		active |= mPending
	}
	if sEnabled {
		active |= sPending
	}

	// Priority order, highest first: MEI, MSI, MTI, SEI, SSI, STI.
	order := []uint32{isa.IRQ_MEI, isa.IRQ_MSI, isa.IRQ_MTI, isa.IRQ_SEI, isa.IRQ_SSI, isa.IRQ_STI}
	for _, bit := range order {
		if active&(uint32(1)<<bit) != 0 {
			return isa.IntBit | bit
		}
	}
	return 0
}

// TakeTrap enters a trap for cause (an exception code, or an interrupt
// code with isa.IntBit set) with the given faulting value, delegating to
// S-mode per medeleg/mideleg when legal and computing the post-trap PC
// from the selected tvec. Trap entry is infallible: it only ever touches
// CSRs and the PC.
func TakeTrap(state *CpuState, cause, tval uint32) {
	isInterrupt := cause&isa.IntBit != 0
	code := cause &^ isa.IntBit

	delegMask := state.CSR.MEDeleg()
	if isInterrupt {
		delegMask = state.CSR.MIDeleg()
	}
	delegate := state.Priv <= isa.PrivS && (delegMask>>code)&1 != 0

	if delegate {
		state.CSR.SetSEPC(state.PC &^ 1)
		state.CSR.SetSCause(cause)
		state.CSR.SetSTval(tval)

		st := state.CSR.MStatus()
		if st&isa.MSTATUS_SIE != 0 {
			st |= isa.MSTATUS_SPIE
		} else {
			st &^= isa.MSTATUS_SPIE
		}
		st &^= isa.MSTATUS_SIE
		if state.Priv == isa.PrivS {
			st |= isa.MSTATUS_SPP
		} else {
			st &^= isa.MSTATUS_SPP
		}
		state.CSR.SetMStatus(st)
		state.Priv = isa.PrivS
		state.NextPC = vectorTarget(state.CSR.STvec(), isInterrupt, code)
		return
	}

	state.CSR.SetMEPC(state.PC &^ 1)
	state.CSR.SetMCause(cause)
	state.CSR.SetMTval(tval)

	st := state.CSR.MStatus()
	if st&isa.MSTATUS_MIE != 0 {
		st |= isa.MSTATUS_MPIE
	} else {
		st &^= isa.MSTATUS_MPIE
	}
	st &^= isa.MSTATUS_MIE
	st &^= isa.MSTATUS_MPP
	st |= state.Priv << 11
	state.CSR.SetMStatus(st)
	state.Priv = isa.PrivM
	state.NextPC = vectorTarget(state.CSR.MTvec(), isInterrupt, code)
}

// vectorTarget computes next_pc from a tvec value: mode 0 (direct)
// always targets base; mode 1 (vectored) targets base + 4*code for
// interrupts only, base for exceptions.
func vectorTarget(tvec uint32, isInterrupt bool, code uint32) uint32 {
	base := tvec &^ 0x3
	mode := tvec & 0x3
	if mode == 1 && isInterrupt {
		return base + 4*code
	}
	return base
}
