package decode

// Instr is the value type produced by Decode: spec.md's DecodedInstr.
// It is intentionally flat (an enum tag plus every operand field any
// variant might need) rather than a sum type with per-variant payloads,
// per the teacher's table-dispatch style — keeping Decode allocation-free
// on the fetch/decode/execute hot path.
type Instr struct {
	Kind Kind

	Rd  uint32 // destination register index, 0 when absent
	Rs1 uint32 // source register 1 index, 0 when absent
	Rs2 uint32 // source register 2 index, 0 when absent

	// Imm is the sign-extended immediate for ALU/branch/jump/load/store
	// forms, or the shift amount (SLLI/SRLI/SRAI) / CSR zimm for CSR*I forms.
	Imm int32

	CSR uint32 // 12-bit CSR address, SYSTEM instructions only

	Raw uint32 // original encoding: 32-bit word, or the 16-bit halfword zero-extended

	Compressed bool // true if the source was a 16-bit (C) encoding
}

// Len returns the number of bytes the instruction occupies in the
// instruction stream: 2 for compressed, 4 otherwise.
func (d Instr) Len() uint32 {
	if d.Compressed {
		return 2
	}
	return 4
}
