package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/rv32x/rv32core/cpu"
	"github.com/rv32x/rv32core/isa"
)

// stateDump is the JSON shape written by -state: every field the teacher's
// own Proof struct (rvgo/cmd/run.go) would hex-encode, sized down from a
// fault-proof witness to a plain post-run hart snapshot for offline
// inspection. The PC, registers and CSR fields use hexutil.Uint64 the same
// way the teacher tags its own state fields, so they read as "0x..."; priv
// and the instruction count are written as plain decimal numbers.
type stateDump struct {
	PC           hexutil.Uint64     `json:"pc"`
	Priv         uint32             `json:"priv"`
	Regs         [32]hexutil.Uint64 `json:"regs"`
	MStatus      hexutil.Uint64     `json:"mstatus"`
	MCause       hexutil.Uint64     `json:"mcause"`
	MEPC         hexutil.Uint64     `json:"mepc"`
	Instructions uint64             `json:"instructions"`
}

func newStateDump(state *cpu.CpuState, instrCount uint64) stateDump {
	d := stateDump{
		PC:           hexutil.Uint64(state.PC),
		Priv:         state.Priv,
		MStatus:      hexutil.Uint64(state.CSR.MStatus()),
		MEPC:         hexutil.Uint64(state.CSR.MEPC()),
		Instructions: instrCount,
	}
	if cause, ok := state.CSR.Read(isa.CSR_MCAUSE, isa.PrivM); ok {
		d.MCause = hexutil.Uint64(cause)
	}
	for i := range d.Regs {
		d.Regs[i] = hexutil.Uint64(uint32(state.Reg(uint32(i))))
	}
	return d
}

// writeStateDump marshals state's post-run snapshot to path as indented JSON.
func writeStateDump(path string, state *cpu.CpuState, instrCount uint64) error {
	b, err := json.MarshalIndent(newStateDump(state, instrCount), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state dump: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write state dump: %w", err)
	}
	return nil
}
