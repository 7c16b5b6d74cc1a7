package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rv32x/rv32core/cpu"
	"github.com/rv32x/rv32core/isa"
	"github.com/rv32x/rv32core/memport"
)

func TestNewStateDumpHexEncodesScalarsAndRegs(t *testing.T) {
	s := cpu.NewCpuState(cpu.WithMem(memport.NewFlatMemory()))
	s.PC = 0x1000
	s.SetReg(5, 42)
	s.CSR.SetMEPC(0x2000)

	d := newStateDump(s, 7)
	require.Equal(t, "0x1000", d.PC.String())
	require.Equal(t, "0x2a", d.Regs[5].String())
	require.Equal(t, "0x2000", d.MEPC.String())
	require.Equal(t, uint64(7), d.Instructions)
	require.Equal(t, isa.PrivM, d.Priv)
}

func TestWriteStateDumpProducesValidJSON(t *testing.T) {
	s := cpu.NewCpuState(cpu.WithMem(memport.NewFlatMemory()))
	s.PC = 4

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, writeStateDump(path, s, 1))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	require.Equal(t, "0x4", got["pc"])
}
