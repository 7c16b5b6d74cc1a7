package isa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpcodeAndRegisterFields(t *testing.T) {
	// ADDI x5, x0, 42 -> 0x02A00293
	word := uint32(0x02A00293)
	require.Equal(t, uint32(OpOpImm), Opcode(word))
	require.Equal(t, uint32(5), Rd(word))
	require.Equal(t, uint32(0), Funct3(word))
	require.Equal(t, uint32(0), Rs1(word))
	require.Equal(t, int32(42), ImmI(word))
}

func TestImmINegative(t *testing.T) {
	// ADDI x1, x0, -1 -> imm field all ones
	word := uint32(0xFFF00093)
	require.Equal(t, int32(-1), ImmI(word))
}

func TestImmSAndImmB(t *testing.T) {
	// SW x2, 4(x1) -> opcode 0x23, funct3 0x2, rs1=1, rs2=2, imm=4
	word := uint32(0x0020A223)
	require.Equal(t, int32(4), ImmS(word))

	// BEQ x0, x0, -4: imm[12|10:5|4:1|11] packed as
	// 0xFE000EE3, which must decode back to imm = -4.
	word2 := uint32(0xFE000EE3)
	require.Equal(t, int32(-4), ImmB(word2))
}

func TestImmUAndImmJ(t *testing.T) {
	// LUI x1, 0x12345 -> 0x123450B7
	word := uint32(0x123450B7)
	require.Equal(t, int32(0x12345000), ImmU(word))

	// JAL x0, -4 (self loop): 0xFFDFF06F
	word2 := uint32(0xFFDFF06F)
	require.Equal(t, int32(-4), ImmJ(word2))
}

func TestFunct5AndFunct12(t *testing.T) {
	// LR.W x10, (x1): funct5 = 0x02, funct7 top bits
	word := uint32(0x1000A52F)
	require.Equal(t, uint32(0x02), Funct5(word))

	// ECALL: 0x00000073
	require.Equal(t, uint32(0x000), Funct12(uint32(0x00000073)))
	// EBREAK: 0x00100073
	require.Equal(t, uint32(0x001), Funct12(uint32(0x00100073)))
}
