package cpu

import (
	"github.com/rv32x/rv32core/decode"
	"github.com/rv32x/rv32core/isa"
)

// ExecResult is the outcome of one Execute call: spec.md's ExecResult.
// Execute never panics on architectural conditions — every exceptional
// case is reported here and handed to the trap machinery by the ISS loop.
type ExecResult struct {
	Exception bool
	Cause     uint32
	Tval      uint32
}

func ok() ExecResult { return ExecResult{} }

func exc(cause, tval uint32) ExecResult {
	return ExecResult{Exception: true, Cause: cause, Tval: tval}
}

func illegalInstr(raw uint32) ExecResult {
	return exc(isa.CauseIllegalInstr, raw)
}

// Execute dispatches one decoded instruction against state, mutating
// registers, memory, CSRs, and/or NextPC as appropriate. state.NextPC is
// set to the default fall-through address before dispatch; control-flow
// instructions overwrite it.
func Execute(state *CpuState, d decode.Instr) ExecResult {
	state.NextPC = state.PC + d.Len()

	switch d.Kind {
	case decode.LUI:
		state.SetReg(d.Rd, d.Imm)
		return ok()
	case decode.AUIPC:
		state.SetReg(d.Rd, int32(state.PC)+d.Imm)
		return ok()
	case decode.JAL:
		state.SetReg(d.Rd, int32(state.PC+d.Len()))
		state.NextPC = uint32(int32(state.PC) + d.Imm)
		return ok()
	case decode.JALR:
		link := int32(state.PC + d.Len())
		target := (uint32(state.Reg(d.Rs1)+d.Imm)) &^ 1
		state.SetReg(d.Rd, link)
		state.NextPC = target
		return ok()

	case decode.BEQ, decode.BNE, decode.BLT, decode.BGE, decode.BLTU, decode.BGEU:
		return execBranch(state, d)

	case decode.LB, decode.LH, decode.LW, decode.LBU, decode.LHU:
		return execLoad(state, d)
	case decode.SB, decode.SH, decode.SW:
		return execStore(state, d)

	case decode.ADDI:
		state.SetReg(d.Rd, state.Reg(d.Rs1)+d.Imm)
		return ok()
	case decode.SLTI:
		state.SetReg(d.Rd, boolToInt32(state.Reg(d.Rs1) < d.Imm))
		return ok()
	case decode.SLTIU:
		state.SetReg(d.Rd, boolToInt32(uint32(state.Reg(d.Rs1)) < uint32(d.Imm)))
		return ok()
	case decode.XORI:
		state.SetReg(d.Rd, state.Reg(d.Rs1)^d.Imm)
		return ok()
	case decode.ORI:
		state.SetReg(d.Rd, state.Reg(d.Rs1)|d.Imm)
		return ok()
	case decode.ANDI:
		state.SetReg(d.Rd, state.Reg(d.Rs1)&d.Imm)
		return ok()
	case decode.SLLI:
		state.SetReg(d.Rd, state.Reg(d.Rs1)<<(uint32(d.Imm)&0x1F))
		return ok()
	case decode.SRLI:
		state.SetReg(d.Rd, int32(uint32(state.Reg(d.Rs1))>>(uint32(d.Imm)&0x1F)))
		return ok()
	case decode.SRAI:
		state.SetReg(d.Rd, state.Reg(d.Rs1)>>(uint32(d.Imm)&0x1F))
		return ok()

	case decode.ADD:
		state.SetReg(d.Rd, state.Reg(d.Rs1)+state.Reg(d.Rs2))
		return ok()
	case decode.SUB:
		state.SetReg(d.Rd, state.Reg(d.Rs1)-state.Reg(d.Rs2))
		return ok()
	case decode.SLL:
		state.SetReg(d.Rd, state.Reg(d.Rs1)<<(uint32(state.Reg(d.Rs2))&0x1F))
		return ok()
	case decode.SLT:
		state.SetReg(d.Rd, boolToInt32(state.Reg(d.Rs1) < state.Reg(d.Rs2)))
		return ok()
	case decode.SLTU:
		state.SetReg(d.Rd, boolToInt32(uint32(state.Reg(d.Rs1)) < uint32(state.Reg(d.Rs2))))
		return ok()
	case decode.XOR:
		state.SetReg(d.Rd, state.Reg(d.Rs1)^state.Reg(d.Rs2))
		return ok()
	case decode.SRL:
		state.SetReg(d.Rd, int32(uint32(state.Reg(d.Rs1))>>(uint32(state.Reg(d.Rs2))&0x1F)))
		return ok()
	case decode.SRA:
		state.SetReg(d.Rd, state.Reg(d.Rs1)>>(uint32(state.Reg(d.Rs2))&0x1F))
		return ok()
	case decode.OR:
		state.SetReg(d.Rd, state.Reg(d.Rs1)|state.Reg(d.Rs2))
		return ok()
	case decode.AND:
		state.SetReg(d.Rd, state.Reg(d.Rs1)&state.Reg(d.Rs2))
		return ok()

	case decode.MUL, decode.MULH, decode.MULHSU, decode.MULHU,
		decode.DIV, decode.DIVU, decode.REM, decode.REMU:
		return execMulDiv(state, d)

	case decode.LR_W, decode.SC_W, decode.AMOSWAP_W, decode.AMOADD_W,
		decode.AMOXOR_W, decode.AMOAND_W, decode.AMOOR_W,
		decode.AMOMIN_W, decode.AMOMAX_W, decode.AMOMINU_W, decode.AMOMAXU_W:
		return execAtomic(state, d)

	case decode.FENCE, decode.FENCEI:
		return ok()

	case decode.ECALL:
		switch state.Priv {
		case isa.PrivU:
			return exc(isa.CauseECallU, 0)
		case isa.PrivS:
			return exc(isa.CauseECallS, 0)
		default:
			return exc(isa.CauseECallM, 0)
		}
	case decode.EBREAK:
		return exc(isa.CauseBreakpoint, state.PC)

	case decode.MRET:
		if state.Priv != isa.PrivM {
			return illegalInstr(d.Raw)
		}
		doMret(state)
		return ok()
	case decode.SRET:
		if state.Priv < isa.PrivS {
			return illegalInstr(d.Raw)
		}
		if state.Priv == isa.PrivS && state.CSR.TSR() {
			return illegalInstr(d.Raw)
		}
		doSret(state)
		return ok()
	case decode.WFI:
		state.WFICount++
		return ok()
	case decode.SFENCE_VMA:
		if state.Priv < isa.PrivS {
			return illegalInstr(d.Raw)
		}
		if state.Priv == isa.PrivS && state.CSR.TVM() {
			return illegalInstr(d.Raw)
		}
		return ok()

	case decode.CSRRW, decode.CSRRS, decode.CSRRC,
		decode.CSRRWI, decode.CSRRSI, decode.CSRRCI:
		return execCSR(state, d)

	default: // ILLEGAL and any encoding decode couldn't map
		return illegalInstr(d.Raw)
	}
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func execBranch(state *CpuState, d decode.Instr) ExecResult {
	a, b := state.Reg(d.Rs1), state.Reg(d.Rs2)
	var taken bool
	switch d.Kind {
	case decode.BEQ:
		taken = a == b
	case decode.BNE:
		taken = a != b
	case decode.BLT:
		taken = a < b
	case decode.BGE:
		taken = a >= b
	case decode.BLTU:
		taken = uint32(a) < uint32(b)
	case decode.BGEU:
		taken = uint32(a) >= uint32(b)
	}
	if taken {
		state.NextPC = uint32(int32(state.PC) + d.Imm)
	}
	return ok()
}

func execLoad(state *CpuState, d decode.Instr) ExecResult {
	addr := uint32(state.Reg(d.Rs1) + d.Imm)
	switch d.Kind {
	case decode.LB:
		v := state.Mem.Read(addr, 1)
		state.SetReg(d.Rd, int32(int8(v)))
	case decode.LBU:
		v := state.Mem.Read(addr, 1)
		state.SetReg(d.Rd, int32(v&0xFF))
	case decode.LH:
		if addr&1 != 0 {
			return exc(isa.CauseMisalignedLoad, addr)
		}
		v := state.Mem.Read(addr, 2)
		state.SetReg(d.Rd, int32(int16(v)))
	case decode.LHU:
		if addr&1 != 0 {
			return exc(isa.CauseMisalignedLoad, addr)
		}
		v := state.Mem.Read(addr, 2)
		state.SetReg(d.Rd, int32(v&0xFFFF))
	case decode.LW:
		if addr&3 != 0 {
			return exc(isa.CauseMisalignedLoad, addr)
		}
		v := state.Mem.Read(addr, 4)
		state.SetReg(d.Rd, int32(v))
	}
	return ok()
}

func execStore(state *CpuState, d decode.Instr) ExecResult {
	addr := uint32(state.Reg(d.Rs1) + d.Imm)
	val := uint32(state.Reg(d.Rs2))
	switch d.Kind {
	case decode.SB:
		state.Mem.Write(addr, 1, val)
	case decode.SH:
		if addr&1 != 0 {
			return exc(isa.CauseMisalignedStore, addr)
		}
		state.Mem.Write(addr, 2, val)
	case decode.SW:
		if addr&3 != 0 {
			return exc(isa.CauseMisalignedStore, addr)
		}
		state.Mem.Write(addr, 4, val)
	}
	state.Reservation.Clear()
	return ok()
}

func execMulDiv(state *CpuState, d decode.Instr) ExecResult {
	a, b := state.Reg(d.Rs1), state.Reg(d.Rs2)
	switch d.Kind {
	case decode.MUL:
		state.SetReg(d.Rd, a*b)
	case decode.MULH:
		state.SetReg(d.Rd, int32((int64(a)*int64(b))>>32))
	case decode.MULHU:
		state.SetReg(d.Rd, int32((uint64(uint32(a))*uint64(uint32(b)))>>32))
	case decode.MULHSU:
		state.SetReg(d.Rd, int32((int64(a)*int64(uint32(b)))>>32))
	case decode.DIV:
		switch {
		case b == 0:
			state.SetReg(d.Rd, -1)
		case a == -0x80000000 && b == -1:
			state.SetReg(d.Rd, -0x80000000)
		default:
			state.SetReg(d.Rd, a/b)
		}
	case decode.DIVU:
		au, bu := uint32(a), uint32(b)
		if bu == 0 {
			state.SetReg(d.Rd, -1) // 0xFFFFFFFF
		} else {
			state.SetReg(d.Rd, int32(au/bu))
		}
	case decode.REM:
		switch {
		case b == 0:
			state.SetReg(d.Rd, a)
		case a == -0x80000000 && b == -1:
			state.SetReg(d.Rd, 0)
		default:
			state.SetReg(d.Rd, a%b)
		}
	case decode.REMU:
		au, bu := uint32(a), uint32(b)
		if bu == 0 {
			state.SetReg(d.Rd, a)
		} else {
			state.SetReg(d.Rd, int32(au%bu))
		}
	}
	return ok()
}

func execAtomic(state *CpuState, d decode.Instr) ExecResult {
	addr := uint32(state.Reg(d.Rs1))
	if addr&3 != 0 {
		return exc(isa.CauseMisalignedStore, addr)
	}

	if d.Kind == decode.LR_W {
		v := state.Mem.Read(addr, 4)
		state.SetReg(d.Rd, int32(v))
		state.Reservation.Set(addr)
		return ok()
	}

	if d.Kind == decode.SC_W {
		if state.Reservation.Matches(addr) {
			state.Mem.Write(addr, 4, uint32(state.Reg(d.Rs2)))
			state.SetReg(d.Rd, 0)
		} else {
			state.SetReg(d.Rd, 1)
		}
		state.Reservation.Clear()
		return ok()
	}

	old := state.Mem.Read(addr, 4)
	oldSigned := int32(old)
	rs2 := state.Reg(d.Rs2)
	var next uint32
	switch d.Kind {
	case decode.AMOSWAP_W:
		next = uint32(rs2)
	case decode.AMOADD_W:
		next = uint32(oldSigned + rs2)
	case decode.AMOXOR_W:
		next = old ^ uint32(rs2)
	case decode.AMOAND_W:
		next = old & uint32(rs2)
	case decode.AMOOR_W:
		next = old | uint32(rs2)
	case decode.AMOMIN_W:
		if oldSigned < rs2 {
			next = old
		} else {
			next = uint32(rs2)
		}
	case decode.AMOMAX_W:
		if oldSigned > rs2 {
			next = old
		} else {
			next = uint32(rs2)
		}
	case decode.AMOMINU_W:
		if old < uint32(rs2) {
			next = old
		} else {
			next = uint32(rs2)
		}
	case decode.AMOMAXU_W:
		if old > uint32(rs2) {
			next = old
		} else {
			next = uint32(rs2)
		}
	}
	state.Mem.Write(addr, 4, next)
	state.SetReg(d.Rd, oldSigned)
	state.Reservation.Clear()
	return ok()
}

func execCSR(state *CpuState, d decode.Instr) ExecResult {
	switch d.Kind {
	case decode.CSRRW:
		var old uint32
		if d.Rd != 0 {
			var rok bool
			old, rok = state.CSR.Read(d.CSR, state.Priv)
			if !rok {
				return illegalInstr(d.Raw)
			}
		}
		if !state.CSR.Write(d.CSR, state.Priv, uint32(state.Reg(d.Rs1))) {
			return illegalInstr(d.Raw)
		}
		state.SetReg(d.Rd, int32(old))
		return ok()

	case decode.CSRRWI:
		var old uint32
		if d.Rd != 0 {
			var rok bool
			old, rok = state.CSR.Read(d.CSR, state.Priv)
			if !rok {
				return illegalInstr(d.Raw)
			}
		}
		if !state.CSR.Write(d.CSR, state.Priv, uint32(d.Imm)) {
			return illegalInstr(d.Raw)
		}
		state.SetReg(d.Rd, int32(old))
		return ok()

	case decode.CSRRS, decode.CSRRC:
		old, rok := state.CSR.Read(d.CSR, state.Priv)
		if !rok {
			return illegalInstr(d.Raw)
		}
		if d.Rs1 != 0 {
			src := uint32(state.Reg(d.Rs1))
			var next uint32
			if d.Kind == decode.CSRRS {
				next = old | src
			} else {
				next = old &^ src
			}
			if !state.CSR.Write(d.CSR, state.Priv, next) {
				return illegalInstr(d.Raw)
			}
		}
		state.SetReg(d.Rd, int32(old))
		return ok()

	case decode.CSRRSI, decode.CSRRCI:
		old, rok := state.CSR.Read(d.CSR, state.Priv)
		if !rok {
			return illegalInstr(d.Raw)
		}
		src := uint32(d.Imm)
		if src != 0 {
			var next uint32
			if d.Kind == decode.CSRRSI {
				next = old | src
			} else {
				next = old &^ src
			}
			if !state.CSR.Write(d.CSR, state.Priv, next) {
				return illegalInstr(d.Raw)
			}
		}
		state.SetReg(d.Rd, int32(old))
		return ok()
	}
	return illegalInstr(d.Raw)
}

func doMret(state *CpuState) {
	st := state.CSR.MStatus()
	mpie := st&isa.MSTATUS_MPIE != 0
	mpp := (st & isa.MSTATUS_MPP) >> 11
	if mpie {
		st |= isa.MSTATUS_MIE
	} else {
		st &^= isa.MSTATUS_MIE
	}
	st |= isa.MSTATUS_MPIE
	st &^= isa.MSTATUS_MPP
	state.CSR.SetMStatus(st)
	state.Priv = mpp
	state.NextPC = state.CSR.MEPC()
}

func doSret(state *CpuState) {
	st := state.CSR.MStatus()
	spie := st&isa.MSTATUS_SPIE != 0
	spp := st&isa.MSTATUS_SPP != 0
	if spie {
		st |= isa.MSTATUS_SIE
	} else {
		st &^= isa.MSTATUS_SIE
	}
	st |= isa.MSTATUS_SPIE
	st &^= isa.MSTATUS_SPP
	state.CSR.SetMStatus(st)
	if spp {
		state.Priv = isa.PrivS
	} else {
		state.Priv = isa.PrivU
	}
	state.NextPC = state.CSR.SEPC()
}
