// Package decode implements the stateless RV32IMAC instruction decoder:
// a 32-bit base word, or a 16-bit compressed (C) halfword, in; a flat
// Instr value out. Decode is pure and total — every bit pattern maps to
// some Instr, with unrecognized encodings mapping to ILLEGAL.
package decode

import "github.com/rv32x/rv32core/isa"

// Decode decodes a 32-bit fetch word. Bits [1:0] == 0b11 select a 32-bit
// base instruction; any other value selects a 16-bit compressed
// instruction taken from the low halfword of word.
func Decode(word uint32) Instr {
	if word&0x3 == 0x3 {
		return decodeBase(word)
	}
	return decodeCompressed(uint16(word))
}

func illegal(raw uint32, compressed bool) Instr {
	return Instr{Kind: ILLEGAL, Raw: raw, Compressed: compressed}
}

// decodeBase decodes a 32-bit base (non-compressed) instruction word.
func decodeBase(word uint32) Instr {
	opcode := isa.Opcode(word)
	rd := isa.Rd(word)
	funct3 := isa.Funct3(word)
	rs1 := isa.Rs1(word)
	rs2 := isa.Rs2(word)
	funct7 := isa.Funct7(word)

	switch opcode {
	case isa.OpLui:
		return Instr{Kind: LUI, Rd: rd, Imm: isa.ImmU(word), Raw: word}
	case isa.OpAuipc:
		return Instr{Kind: AUIPC, Rd: rd, Imm: isa.ImmU(word), Raw: word}
	case isa.OpJal:
		return Instr{Kind: JAL, Rd: rd, Imm: isa.ImmJ(word), Raw: word}
	case isa.OpJalr:
		if funct3 != 0 {
			return illegal(word, false)
		}
		return Instr{Kind: JALR, Rd: rd, Rs1: rs1, Imm: isa.ImmI(word), Raw: word}

	case isa.OpBranch:
		var kind Kind
		switch funct3 {
		case isa.Funct3B_BEQ:
			kind = BEQ
		case isa.Funct3B_BNE:
			kind = BNE
		case isa.Funct3B_BLT:
			kind = BLT
		case isa.Funct3B_BGE:
			kind = BGE
		case isa.Funct3B_BLTU:
			kind = BLTU
		case isa.Funct3B_BGEU:
			kind = BGEU
		default:
			return illegal(word, false)
		}
		return Instr{Kind: kind, Rs1: rs1, Rs2: rs2, Imm: isa.ImmB(word), Raw: word}

	case isa.OpLoad:
		var kind Kind
		switch funct3 {
		case isa.Funct3L_B:
			kind = LB
		case isa.Funct3L_H:
			kind = LH
		case isa.Funct3L_W:
			kind = LW
		case isa.Funct3L_BU:
			kind = LBU
		case isa.Funct3L_HU:
			kind = LHU
		default:
			return illegal(word, false)
		}
		return Instr{Kind: kind, Rd: rd, Rs1: rs1, Imm: isa.ImmI(word), Raw: word}

	case isa.OpStore:
		var kind Kind
		switch funct3 {
		case isa.Funct3S_B:
			kind = SB
		case isa.Funct3S_H:
			kind = SH
		case isa.Funct3S_W:
			kind = SW
		default:
			return illegal(word, false)
		}
		return Instr{Kind: kind, Rs1: rs1, Rs2: rs2, Imm: isa.ImmS(word), Raw: word}

	case isa.OpOpImm:
		switch funct3 {
		case isa.Funct3_ADDI:
			return Instr{Kind: ADDI, Rd: rd, Rs1: rs1, Imm: isa.ImmI(word), Raw: word}
		case isa.Funct3_SLTI:
			return Instr{Kind: SLTI, Rd: rd, Rs1: rs1, Imm: isa.ImmI(word), Raw: word}
		case isa.Funct3_SLTIU:
			return Instr{Kind: SLTIU, Rd: rd, Rs1: rs1, Imm: isa.ImmI(word), Raw: word}
		case isa.Funct3_XORI:
			return Instr{Kind: XORI, Rd: rd, Rs1: rs1, Imm: isa.ImmI(word), Raw: word}
		case isa.Funct3_ORI:
			return Instr{Kind: ORI, Rd: rd, Rs1: rs1, Imm: isa.ImmI(word), Raw: word}
		case isa.Funct3_ANDI:
			return Instr{Kind: ANDI, Rd: rd, Rs1: rs1, Imm: isa.ImmI(word), Raw: word}
		case isa.Funct3_SLLI:
			if funct7 != isa.Funct7Base {
				return illegal(word, false)
			}
			return Instr{Kind: SLLI, Rd: rd, Rs1: rs1, Imm: int32(rs2), Raw: word}
		case isa.Funct3_SR:
			switch funct7 {
			case isa.Funct7Base:
				return Instr{Kind: SRLI, Rd: rd, Rs1: rs1, Imm: int32(rs2), Raw: word}
			case isa.Funct7Alt:
				return Instr{Kind: SRAI, Rd: rd, Rs1: rs1, Imm: int32(rs2), Raw: word}
			default:
				return illegal(word, false)
			}
		default:
			return illegal(word, false)
		}

	case isa.OpOp:
		if funct7 == isa.Funct7MExt {
			var kind Kind
			switch funct3 {
			case isa.Funct3_MUL:
				kind = MUL
			case isa.Funct3_MULH:
				kind = MULH
			case isa.Funct3_MULHSU:
				kind = MULHSU
			case isa.Funct3_MULHU:
				kind = MULHU
			case isa.Funct3_DIV:
				kind = DIV
			case isa.Funct3_DIVU:
				kind = DIVU
			case isa.Funct3_REM:
				kind = REM
			case isa.Funct3_REMU:
				kind = REMU
			}
			return Instr{Kind: kind, Rd: rd, Rs1: rs1, Rs2: rs2, Raw: word}
		}
		switch funct3 {
		case isa.Funct3_ADDSUB:
			switch funct7 {
			case isa.Funct7Base:
				return Instr{Kind: ADD, Rd: rd, Rs1: rs1, Rs2: rs2, Raw: word}
			case isa.Funct7Alt:
				return Instr{Kind: SUB, Rd: rd, Rs1: rs1, Rs2: rs2, Raw: word}
			default:
				return illegal(word, false)
			}
		case isa.Funct3_SLL:
			if funct7 != isa.Funct7Base {
				return illegal(word, false)
			}
			return Instr{Kind: SLL, Rd: rd, Rs1: rs1, Rs2: rs2, Raw: word}
		case isa.Funct3_SLT:
			if funct7 != isa.Funct7Base {
				return illegal(word, false)
			}
			return Instr{Kind: SLT, Rd: rd, Rs1: rs1, Rs2: rs2, Raw: word}
		case isa.Funct3_SLTU:
			if funct7 != isa.Funct7Base {
				return illegal(word, false)
			}
			return Instr{Kind: SLTU, Rd: rd, Rs1: rs1, Rs2: rs2, Raw: word}
		case isa.Funct3_XOR:
			if funct7 != isa.Funct7Base {
				return illegal(word, false)
			}
			return Instr{Kind: XOR, Rd: rd, Rs1: rs1, Rs2: rs2, Raw: word}
		case isa.Funct3_SRx:
			switch funct7 {
			case isa.Funct7Base:
				return Instr{Kind: SRL, Rd: rd, Rs1: rs1, Rs2: rs2, Raw: word}
			case isa.Funct7Alt:
				return Instr{Kind: SRA, Rd: rd, Rs1: rs1, Rs2: rs2, Raw: word}
			default:
				return illegal(word, false)
			}
		case isa.Funct3_OR:
			if funct7 != isa.Funct7Base {
				return illegal(word, false)
			}
			return Instr{Kind: OR, Rd: rd, Rs1: rs1, Rs2: rs2, Raw: word}
		case isa.Funct3_AND:
			if funct7 != isa.Funct7Base {
				return illegal(word, false)
			}
			return Instr{Kind: AND, Rd: rd, Rs1: rs1, Rs2: rs2, Raw: word}
		default:
			return illegal(word, false)
		}

	case isa.OpMiscMem:
		switch funct3 {
		case isa.Funct3_FENCE:
			return Instr{Kind: FENCE, Raw: word}
		case isa.Funct3_FENCEI:
			return Instr{Kind: FENCEI, Raw: word}
		default:
			return illegal(word, false)
		}

	case isa.OpAmo:
		size := funct3
		if size != 0x2 { // only .W (word) AMOs are supported in RV32A
			return illegal(word, false)
		}
		funct5 := isa.Funct5(word)
		var kind Kind
		switch funct5 {
		case isa.Funct5LR:
			if rs2 != 0 {
				return illegal(word, false)
			}
			return Instr{Kind: LR_W, Rd: rd, Rs1: rs1, Raw: word}
		case isa.Funct5SC:
			kind = SC_W
		case isa.Funct5AMOSWAP:
			kind = AMOSWAP_W
		case isa.Funct5AMOADD:
			kind = AMOADD_W
		case isa.Funct5AMOXOR:
			kind = AMOXOR_W
		case isa.Funct5AMOAND:
			kind = AMOAND_W
		case isa.Funct5AMOOR:
			kind = AMOOR_W
		case isa.Funct5AMOMIN:
			kind = AMOMIN_W
		case isa.Funct5AMOMAX:
			kind = AMOMAX_W
		case isa.Funct5AMOMINU:
			kind = AMOMINU_W
		case isa.Funct5AMOMAXU:
			kind = AMOMAXU_W
		default:
			return illegal(word, false)
		}
		return Instr{Kind: kind, Rd: rd, Rs1: rs1, Rs2: rs2, Raw: word}

	case isa.OpSystem:
		switch funct3 {
		case isa.Funct3_PRIV:
			if funct7 == isa.Funct7SFENCEVMA {
				return Instr{Kind: SFENCE_VMA, Rs1: rs1, Rs2: rs2, Raw: word}
			}
			if rd != 0 || rs1 != 0 {
				return illegal(word, false)
			}
			switch isa.Funct12(word) {
			case isa.Funct12ECALL:
				return Instr{Kind: ECALL, Raw: word}
			case isa.Funct12EBREAK:
				return Instr{Kind: EBREAK, Raw: word}
			case isa.Funct12MRET:
				return Instr{Kind: MRET, Raw: word}
			case isa.Funct12SRET:
				return Instr{Kind: SRET, Raw: word}
			case isa.Funct12WFI:
				return Instr{Kind: WFI, Raw: word}
			default:
				return illegal(word, false)
			}
		case isa.Funct3_CSRRW, isa.Funct3_CSRRS, isa.Funct3_CSRRC:
			var kind Kind
			switch funct3 {
			case isa.Funct3_CSRRW:
				kind = CSRRW
			case isa.Funct3_CSRRS:
				kind = CSRRS
			case isa.Funct3_CSRRC:
				kind = CSRRC
			}
			return Instr{Kind: kind, Rd: rd, Rs1: rs1, CSR: isa.CSRAddr(word), Raw: word}
		case isa.Funct3_CSRRWI, isa.Funct3_CSRRSI, isa.Funct3_CSRRCI:
			var kind Kind
			switch funct3 {
			case isa.Funct3_CSRRWI:
				kind = CSRRWI
			case isa.Funct3_CSRRSI:
				kind = CSRRSI
			case isa.Funct3_CSRRCI:
				kind = CSRRCI
			}
			return Instr{Kind: kind, Rd: rd, Imm: int32(rs1), CSR: isa.CSRAddr(word), Raw: word}
		default:
			return illegal(word, false)
		}

	default:
		return illegal(word, false)
	}
}
