package cpu_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rv32x/rv32core/cpu"
	"github.com/rv32x/rv32core/isa"
	"github.com/rv32x/rv32core/memport"
)

func TestWithHartIDFeedsMhartidCSR(t *testing.T) {
	s := cpu.NewCpuState(cpu.WithMem(memport.NewFlatMemory()), cpu.WithHartID(7))
	require.Equal(t, uint32(7), s.HartID())
	v, ok := s.CSR.Read(isa.CSR_MHARTID, isa.PrivM)
	require.True(t, ok)
	require.Equal(t, uint32(7), v)
}

func TestRegZeroAlwaysReadsZero(t *testing.T) {
	s := cpu.NewCpuState(cpu.WithMem(memport.NewFlatMemory()))
	s.SetReg(0, 99)
	require.Equal(t, int32(0), s.Reg(0))
}
