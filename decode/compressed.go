package decode

// Compressed (RVC) instruction expansion. Every form below is decoded by
// building the Instr directly rather than materializing an intermediate
// 32-bit word, but the field values produced are exactly what decodeBase
// would compute from the equivalent 32-bit encoding. compressed_test.go
// checks the fields of selected forms; no test compares them against
// decodeBase of the expanded word.
//
// Bit-field layouts follow the RVC chapter of the unprivileged spec v2.2.
// Register fields in the 3-bit compressed register space (rd'/rs1'/rs2')
// are biased by cRegOffset to land in x8..x15.

const cRegOffset = 8

func cReg(v uint32) uint32 { return v + cRegOffset }

// decodeCompressed decodes a 16-bit halfword into an Instr. Decode passes
// in the low 16 bits of the 32-bit fetch word; the upper half is not used.
func decodeCompressed(half uint16) Instr {
	instr := uint32(half)
	raw := instr

	if instr == 0 {
		return illegal(raw, true)
	}

	quadrant := instr & 0x3
	funct3 := (instr >> 13) & 0x7

	switch quadrant {
	case 0x0:
		return decodeQuadrant0(instr, raw, funct3)
	case 0x1:
		return decodeQuadrant1(instr, raw, funct3)
	case 0x2:
		return decodeQuadrant2(instr, raw, funct3)
	default:
		return illegal(raw, true)
	}
}

func compressed(in Instr, raw uint32) Instr {
	in.Raw = raw
	in.Compressed = true
	return in
}

func decodeQuadrant0(instr, raw, funct3 uint32) Instr {
	rdp := cReg((instr >> 2) & 0x7)
	rs1p := cReg((instr >> 7) & 0x7)

	switch funct3 {
	case 0x0: // C.ADDI4SPN
		nzuimm := ((instr>>11)&0x3)<<4 | ((instr>>7)&0xF)<<6 | ((instr>>6)&0x1)<<2 | ((instr>>5)&0x1)<<3
		if nzuimm == 0 {
			return illegal(raw, true)
		}
		return compressed(Instr{Kind: ADDI, Rd: rdp, Rs1: 2, Imm: int32(nzuimm)}, raw)
	case 0x2: // C.LW
		imm := ((instr>>10)&0x7)<<3 | ((instr>>6)&0x1)<<2 | ((instr>>5)&0x1)<<6
		return compressed(Instr{Kind: LW, Rd: rdp, Rs1: rs1p, Imm: int32(imm)}, raw)
	case 0x6: // C.SW
		imm := ((instr>>10)&0x7)<<3 | ((instr>>6)&0x1)<<2 | ((instr>>5)&0x1)<<6
		rs2p := cReg((instr >> 2) & 0x7)
		return compressed(Instr{Kind: SW, Rs1: rs1p, Rs2: rs2p, Imm: int32(imm)}, raw)
	default:
		return illegal(raw, true)
	}
}

func decodeQuadrant1(instr, raw, funct3 uint32) Instr {
	rd5 := (instr >> 7) & 0x1F // the full 5-bit rd/rs1 field, used where registers aren't compressed-biased

	switch funct3 {
	case 0x0: // C.NOP / C.ADDI
		imm := ci6(instr)
		return compressed(Instr{Kind: ADDI, Rd: rd5, Rs1: rd5, Imm: imm}, raw)
	case 0x1: // C.JAL (RV32 only)
		imm := cjImm(instr)
		return compressed(Instr{Kind: JAL, Rd: 1, Imm: imm}, raw)
	case 0x2: // C.LI
		imm := ci6(instr)
		return compressed(Instr{Kind: ADDI, Rd: rd5, Rs1: 0, Imm: imm}, raw)
	case 0x3: // C.ADDI16SP / C.LUI
		if rd5 == 2 {
			nzimm := ((instr>>12)&1)<<9 | ((instr>>3)&0x3)<<7 | ((instr>>5)&1)<<6 |
				((instr>>6)&1)<<4 | ((instr>>2)&1)<<5
			if nzimm == 0 {
				return illegal(raw, true)
			}
			return compressed(Instr{Kind: ADDI, Rd: 2, Rs1: 2, Imm: signExtend(nzimm, 9)}, raw)
		}
		raw6 := ((instr>>12)&1)<<5 | (instr>>2)&0x1F
		if raw6 == 0 {
			return illegal(raw, true)
		}
		return compressed(Instr{Kind: LUI, Rd: rd5, Imm: signExtend(raw6<<12, 17)}, raw)
	case 0x4: // C.SRLI/C.SRAI/C.ANDI/C.SUB/C.XOR/C.OR/C.AND
		rdp := cReg((instr >> 7) & 0x7)
		switch (instr >> 10) & 0x3 {
		case 0x0: // C.SRLI
			shamt := ((instr>>12)&1)<<5 | (instr>>2)&0x1F
			if shamt >= 32 {
				return illegal(raw, true)
			}
			return compressed(Instr{Kind: SRLI, Rd: rdp, Rs1: rdp, Imm: int32(shamt)}, raw)
		case 0x1: // C.SRAI
			shamt := ((instr>>12)&1)<<5 | (instr>>2)&0x1F
			if shamt >= 32 {
				return illegal(raw, true)
			}
			return compressed(Instr{Kind: SRAI, Rd: rdp, Rs1: rdp, Imm: int32(shamt)}, raw)
		case 0x2: // C.ANDI
			imm := ((instr>>12)&1)<<5 | (instr>>2)&0x1F
			return compressed(Instr{Kind: ANDI, Rd: rdp, Rs1: rdp, Imm: signExtend(imm, 5)}, raw)
		default: // 0x3: register-register forms
			if (instr>>12)&1 != 0 {
				return illegal(raw, true) // SUBW/ADDW: RV64 only
			}
			rs2p := cReg((instr >> 2) & 0x7)
			var kind Kind
			switch (instr >> 5) & 0x3 {
			case 0x0:
				kind = SUB
			case 0x1:
				kind = XOR
			case 0x2:
				kind = OR
			case 0x3:
				kind = AND
			}
			return compressed(Instr{Kind: kind, Rd: rdp, Rs1: rdp, Rs2: rs2p}, raw)
		}
	case 0x5: // C.J
		imm := cjImm(instr)
		return compressed(Instr{Kind: JAL, Rd: 0, Imm: imm}, raw)
	case 0x6: // C.BEQZ
		imm, rs1p := cbImm(instr)
		return compressed(Instr{Kind: BEQ, Rs1: rs1p, Rs2: 0, Imm: imm}, raw)
	case 0x7: // C.BNEZ
		imm, rs1p := cbImm(instr)
		return compressed(Instr{Kind: BNE, Rs1: rs1p, Rs2: 0, Imm: imm}, raw)
	default:
		return illegal(raw, true)
	}
}

func decodeQuadrant2(instr, raw, funct3 uint32) Instr {
	rd5 := (instr >> 7) & 0x1F
	rs2_5 := (instr >> 2) & 0x1F

	switch funct3 {
	case 0x0: // C.SLLI
		shamt := ((instr>>12)&1)<<5 | (instr>>2)&0x1F
		if shamt >= 32 {
			return illegal(raw, true)
		}
		return compressed(Instr{Kind: SLLI, Rd: rd5, Rs1: rd5, Imm: int32(shamt)}, raw)
	case 0x2: // C.LWSP
		if rd5 == 0 {
			return illegal(raw, true)
		}
		imm := (instr>>12&1)<<5 | (instr>>4&0x7)<<2 | (instr>>2&0x3)<<6
		return compressed(Instr{Kind: LW, Rd: rd5, Rs1: 2, Imm: int32(imm)}, raw)
	case 0x4:
		bit12 := (instr >> 12) & 1
		switch {
		case bit12 == 0 && rs2_5 == 0: // C.JR
			if rd5 == 0 {
				return illegal(raw, true)
			}
			return compressed(Instr{Kind: JALR, Rd: 0, Rs1: rd5, Imm: 0}, raw)
		case bit12 == 0: // C.MV
			return compressed(Instr{Kind: ADD, Rd: rd5, Rs1: 0, Rs2: rs2_5}, raw)
		case rd5 == 0 && rs2_5 == 0: // C.EBREAK
			return compressed(Instr{Kind: EBREAK}, raw)
		case rs2_5 == 0: // C.JALR
			return compressed(Instr{Kind: JALR, Rd: 1, Rs1: rd5, Imm: 0}, raw)
		default: // C.ADD
			return compressed(Instr{Kind: ADD, Rd: rd5, Rs1: rd5, Rs2: rs2_5}, raw)
		}
	case 0x6: // C.SWSP
		imm := (instr>>9&0xF)<<2 | (instr>>7&0x3)<<6
		return compressed(Instr{Kind: SW, Rs1: 2, Rs2: rs2_5, Imm: int32(imm)}, raw)
	default:
		return illegal(raw, true)
	}
}

// ci6 decodes the 6-bit sign-extended CI-format immediate shared by
// C.ADDI/C.LI (imm[5]=instr[12], imm[4:0]=instr[6:2]).
func ci6(instr uint32) int32 {
	raw := ((instr>>12)&1)<<5 | (instr>>2)&0x1F
	return signExtend(raw, 5)
}

// cjImm decodes the CJ-format jump offset used by C.J/C.JAL, already
// scaled to bytes (bit 0 is implicitly zero).
func cjImm(instr uint32) int32 {
	imm := ((instr>>3)&0x7)<<1 |
		((instr>>11)&0x1)<<4 |
		((instr>>2)&0x1)<<5 |
		((instr>>7)&0x1)<<6 |
		((instr>>6)&0x1)<<7 |
		((instr>>9)&0x3)<<8 |
		((instr>>8)&0x1)<<10 |
		((instr>>12)&0x1)<<11
	return signExtend(imm, 11)
}

// cbImm decodes the CB-format branch offset and the compressed rs1' used
// by C.BEQZ/C.BNEZ, already scaled to bytes.
func cbImm(instr uint32) (int32, uint32) {
	imm := ((instr>>3)&0x3)<<1 |
		((instr>>10)&0x3)<<3 |
		((instr>>2)&0x1)<<5 |
		((instr>>5)&0x1)<<6 |
		((instr>>6)&0x1)<<7 |
		((instr>>12)&0x1)<<8
	rs1p := cReg((instr >> 7) & 0x7)
	return signExtend(imm, 8), rs1p
}

// signExtend sign-extends the low (bit+1) bits of v, treating bit as the
// sign bit. Shared with isa.signExtend in spirit, duplicated here (rather
// than imported) because the compressed forms operate on field widths the
// base isa package never needs to express.
func signExtend(v uint32, bit uint) int32 {
	shift := 31 - bit
	return int32(v<<shift) >> shift
}
