package cpu_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rv32x/rv32core/cpu"
	"github.com/rv32x/rv32core/isa"
	"github.com/rv32x/rv32core/memport"
)

func TestCheckPendingPriorityOrder(t *testing.T) {
	s := cpu.NewCpuState(cpu.WithMem(memport.NewFlatMemory()))
	s.CSR.Write(isa.CSR_MSTATUS, isa.PrivM, isa.MSTATUS_MIE)
	s.CSR.Write(isa.CSR_MIE, isa.PrivM, isa.MIP_MTIP|isa.MIP_MSIP|isa.MIP_MEIP)
	s.CSR.SetMTIP(true)
	s.CSR.SetMSIP(true)
	s.CSR.SetMEIP(true)

	require.Equal(t, isa.IntBit|isa.IRQ_MEI, cpu.CheckPending(s), "MEI outranks MSI and MTI")
}

func TestCheckPendingMaskedByMie(t *testing.T) {
	s := cpu.NewCpuState(cpu.WithMem(memport.NewFlatMemory()))
	s.CSR.Write(isa.CSR_MSTATUS, isa.PrivM, isa.MSTATUS_MIE)
	s.CSR.SetMTIP(true) // pending in mip, but mie never enabled it
	require.Equal(t, uint32(0), cpu.CheckPending(s))
}

func TestCheckPendingDisabledWhenMIEClear(t *testing.T) {
	s := cpu.NewCpuState(cpu.WithMem(memport.NewFlatMemory()))
	s.CSR.Write(isa.CSR_MIE, isa.PrivM, isa.MIP_MTIP)
	s.CSR.SetMTIP(true)
	// mstatus.MIE left clear.
	require.Equal(t, uint32(0), cpu.CheckPending(s))
}

func TestCheckPendingLowerPrivAlwaysEnabled(t *testing.T) {
	// A pending, enabled M-mode interrupt is always taken when the hart
	// is running below M, regardless of mstatus.MIE.
	s := cpu.NewCpuState(cpu.WithMem(memport.NewFlatMemory()))
	s.Priv = isa.PrivS
	s.CSR.Write(isa.CSR_MIE, isa.PrivM, isa.MIP_MTIP)
	s.CSR.SetMTIP(true)
	require.Equal(t, isa.IntBit|isa.IRQ_MTI, cpu.CheckPending(s))
}

func TestTakeTrapDirectMtvecNonVectored(t *testing.T) {
	s := cpu.NewCpuState(cpu.WithMem(memport.NewFlatMemory()))
	s.CSR.Write(isa.CSR_MTVEC, isa.PrivM, 0x80000100) // mode=0
	s.PC = 0x80001000
	cpu.TakeTrap(s, isa.CauseIllegalInstr, 0xDEAD)
	require.Equal(t, uint32(0x80000100), s.NextPC)
	require.Equal(t, uint32(0x80001000), s.CSR.MEPC())
	mtval, _ := s.CSR.Read(isa.CSR_MTVAL, isa.PrivM)
	require.Equal(t, uint32(0xDEAD), mtval)
	mcause, _ := s.CSR.Read(isa.CSR_MCAUSE, isa.PrivM)
	require.Equal(t, isa.CauseIllegalInstr, mcause)
}

func TestTakeTrapVectoredExceptionStillGoesToBase(t *testing.T) {
	s := cpu.NewCpuState(cpu.WithMem(memport.NewFlatMemory()))
	s.CSR.Write(isa.CSR_MTVEC, isa.PrivM, 0x80000101) // mode=1
	s.PC = 0x80001000
	cpu.TakeTrap(s, isa.CauseIllegalInstr, 0)
	require.Equal(t, uint32(0x80000100), s.NextPC, "exceptions never use the vectored offset")
}

func TestTakeTrapNoDelegationWhenMedelegBitClear(t *testing.T) {
	s := cpu.NewCpuState(cpu.WithMem(memport.NewFlatMemory()))
	s.Priv = isa.PrivU
	s.CSR.Write(isa.CSR_MTVEC, isa.PrivM, 0x80000100)
	s.CSR.Write(isa.CSR_STVEC, isa.PrivS, 0x80000400)
	// medeleg left at 0: ECALL_U must trap to M, not S.
	cpu.TakeTrap(s, isa.CauseECallU, 0)
	require.Equal(t, isa.PrivM, s.Priv)
	require.Equal(t, uint32(0x80000100), s.NextPC)
}

func TestTakeTrapMModeSavesMPPFromPriorPriv(t *testing.T) {
	s := cpu.NewCpuState(cpu.WithMem(memport.NewFlatMemory()))
	s.Priv = isa.PrivS
	s.CSR.Write(isa.CSR_MTVEC, isa.PrivM, 0x80000100)
	cpu.TakeTrap(s, isa.CauseIllegalInstr, 0)
	st := s.CSR.MStatus()
	require.Equal(t, uint32(isa.PrivS)<<11, st&isa.MSTATUS_MPP)
}
