package memport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlatMemoryUnmappedReadsZero(t *testing.T) {
	m := NewFlatMemory()
	require.Equal(t, uint32(0), m.Read(0x1000, 4))
}

func TestFlatMemoryWriteReadRoundTrip(t *testing.T) {
	m := NewFlatMemory()
	m.Write(0x100, 4, 0xDEADBEEF)
	require.Equal(t, uint32(0xDEADBEEF), m.Read(0x100, 4))
}

func TestFlatMemoryByteOrderIsLittleEndian(t *testing.T) {
	m := NewFlatMemory()
	m.Write(0, 4, 0x01020304)
	require.Equal(t, uint32(0x04), m.Read(0, 1))
	require.Equal(t, uint32(0x0304), m.Read(0, 2))
}

func TestFlatMemoryCrossesPageBoundary(t *testing.T) {
	m := NewFlatMemory()
	m.Write(pageSize-2, 4, 0x11223344)
	require.Equal(t, uint32(0x11223344), m.Read(pageSize-2, 4))
}

func TestFlatMemoryLoadBytes(t *testing.T) {
	m := NewFlatMemory()
	m.LoadBytes(0x1000, []byte{1, 2, 3, 4})
	require.Equal(t, uint32(0x04030201), m.Read(0x1000, 4))
}

func TestCLINTRaisesTimerInterruptAtMtimecmp(t *testing.T) {
	sink := &fakeSink{}
	c := NewCLINT(sink)
	c.SetMTimeCmp(2)
	c.Tick()
	require.False(t, sink.mtip)
	c.Tick()
	require.True(t, sink.mtip)
}

type fakeSink struct {
	mtip, msip bool
}

func (f *fakeSink) SetMTIP(v bool) { f.mtip = v }
func (f *fakeSink) SetMSIP(v bool) { f.msip = v }
func (f *fakeSink) SetMEIP(bool)   {}
func (f *fakeSink) SetSTIP(bool)   {}
func (f *fakeSink) SetSEIP(bool)   {}
func (f *fakeSink) SetSSIP(bool)   {}
