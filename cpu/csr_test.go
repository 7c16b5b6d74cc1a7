package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rv32x/rv32core/isa"
)

func TestCSRMStatusWARLMasking(t *testing.T) {
	c := NewCSRFile()
	ok := c.Write(isa.CSR_MSTATUS, isa.PrivM, 0xFFFFFFFF)
	require.True(t, ok)
	v, ok := c.Read(isa.CSR_MSTATUS, isa.PrivM)
	require.True(t, ok)
	require.Equal(t, isa.MStatusWriteMask, v)
}

func TestCSRMStatusMPPReservedFixup(t *testing.T) {
	c := NewCSRFile()
	// Write MPP = 2 (reserved): bit 12 set, bit 11 clear.
	c.Write(isa.CSR_MSTATUS, isa.PrivM, isa.MSTATUS_MPP_HI)
	v, _ := c.Read(isa.CSR_MSTATUS, isa.PrivM)
	require.Equal(t, uint32(0), v&isa.MSTATUS_MPP)
}

func TestCSRSstatusIsMaskedView(t *testing.T) {
	c := NewCSRFile()
	c.Write(isa.CSR_MSTATUS, isa.PrivM, isa.MSTATUS_SIE|isa.MSTATUS_MIE)
	v, ok := c.Read(isa.CSR_SSTATUS, isa.PrivS)
	require.True(t, ok)
	require.Equal(t, isa.MSTATUS_SIE, v&isa.SStatusMask)
	require.Equal(t, uint32(0), v&^isa.SStatusMask)
}

func TestCSRSieIsMaskedViewOfMie(t *testing.T) {
	c := NewCSRFile()
	c.Write(isa.CSR_MIE, isa.PrivM, isa.MIP_SSIP|isa.MIP_MTIP|isa.MIP_SEIP)
	v, ok := c.Read(isa.CSR_SIE, isa.PrivS)
	require.True(t, ok)
	require.Equal(t, isa.MIP_SSIP|isa.MIP_SEIP, v)
}

func TestCSRSipReflectsComposedMip(t *testing.T) {
	c := NewCSRFile()
	c.SetSTIP(true)
	c.SetSSIP(true) // hardware line, shouldn't normally be driven this way but exercises mip()
	v, ok := c.Read(isa.CSR_SIP, isa.PrivS)
	require.True(t, ok)
	require.Equal(t, isa.MIP_STIP|isa.MIP_SSIP, v)
}

func TestCSRSipWriteOnlyMovesSSIP(t *testing.T) {
	c := NewCSRFile()
	c.SetSTIP(true)
	ok := c.Write(isa.CSR_SIP, isa.PrivS, isa.MIP_SSIP|isa.MIP_STIP)
	require.True(t, ok)
	// STIP came from hardware and a software write to sip cannot clear it
	// because it never reaches swMip; it must still read back set, and
	// SSIP must now be set via swMip.
	v, _ := c.Read(isa.CSR_MIP, isa.PrivM)
	require.Equal(t, isa.MIP_STIP|isa.MIP_SSIP, v)
}

func TestCSRPrivilegeGatesAccess(t *testing.T) {
	c := NewCSRFile()
	_, ok := c.Read(isa.CSR_MSTATUS, isa.PrivS)
	require.False(t, ok, "S-mode must not read an M-only CSR")

	ok = c.Write(isa.CSR_MSTATUS, isa.PrivU, 0)
	require.False(t, ok, "U-mode must not write an M-only CSR")
}

func TestCSRReadOnlyRejectsWrite(t *testing.T) {
	c := NewCSRFile()
	ok := c.Write(isa.CSR_CYCLE, isa.PrivM, 5)
	require.False(t, ok, "cycle is a read-only shadow CSR")
}

func TestCSRMisaFixed(t *testing.T) {
	c := NewCSRFile()
	c.Write(isa.CSR_MISA, isa.PrivM, 0)
	v, ok := c.Read(isa.CSR_MISA, isa.PrivM)
	require.True(t, ok)
	require.Equal(t, isa.MisaRV32IMACSU, v)
}

func TestCSRMCycleMInstretCountersSplitHalves(t *testing.T) {
	c := NewCSRFile()
	for i := 0; i < 3; i++ {
		c.IncMCycle()
		c.IncMInstret()
	}
	lo, _ := c.Read(isa.CSR_MCYCLE, isa.PrivM)
	hi, _ := c.Read(isa.CSR_MCYCLEH, isa.PrivM)
	require.Equal(t, uint32(3), lo)
	require.Equal(t, uint32(0), hi)

	ilo, _ := c.Read(isa.CSR_MINSTRET, isa.PrivM)
	require.Equal(t, uint32(3), ilo)
}

func TestCSRSatpWriteFiresHook(t *testing.T) {
	c := NewCSRFile()
	var seen uint32
	c.OnSATPWrite = func(v uint32) { seen = v }
	c.Write(isa.CSR_SATP, isa.PrivS, 0xDEADBEEF)
	require.Equal(t, uint32(0xDEADBEEF), seen)
	v, _ := c.Read(isa.CSR_SATP, isa.PrivS)
	require.Equal(t, uint32(0xDEADBEEF), v)
}

func TestCSRMhartidReadsConfiguredID(t *testing.T) {
	c := NewCSRFile()
	c.HartID = 3
	v, ok := c.Read(isa.CSR_MHARTID, isa.PrivM)
	require.True(t, ok)
	require.Equal(t, uint32(3), v)
}

func TestCSRMepcSepcLowBitForced(t *testing.T) {
	c := NewCSRFile()
	c.SetMEPC(0x1001)
	require.Equal(t, uint32(0x1000), c.MEPC())
	c.SetSEPC(0x2003)
	require.Equal(t, uint32(0x2002), c.SEPC())
}
