package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/profile"
	"github.com/urfave/cli/v2"

	"github.com/rv32x/rv32core/cpu"
	"github.com/rv32x/rv32core/loader"
	"github.com/rv32x/rv32core/memport"
)

var (
	elfFlag = &cli.PathFlag{
		Name:     "elf",
		Usage:    "path to the RV32 ELF binary to load",
		Required: true,
	}
	maxStepsFlag = &cli.Uint64Flag{
		Name:  "max-steps",
		Usage: "stop after this many retired instructions (0 = unbounded)",
	}
	pprofFlag = &cli.BoolFlag{
		Name:  "pprof-cpu",
		Usage: "capture a CPU profile of the run to ./cpu.pprof",
	}
	stateFlag = &cli.PathFlag{
		Name:  "state",
		Usage: "write the final hart state as JSON to this path after the run completes",
	}
	clintFlag = &cli.BoolFlag{
		Name:  "clint",
		Usage: "drive a CLINT timer, ticking mtime once per retired instruction",
	}
	mtimecmpFlag = &cli.Uint64Flag{
		Name:  "mtimecmp",
		Usage: "initial CLINT mtimecmp value (only meaningful with -clint)",
	}
)

var runCommand = &cli.Command{
	Name:  "run",
	Usage: "execute an ELF binary to completion or max-steps",
	Flags: []cli.Flag{elfFlag, maxStepsFlag, pprofFlag, stateFlag, clintFlag, mtimecmpFlag},
	Action: func(c *cli.Context) error {
		if c.Bool(pprofFlag.Name) {
			defer profile.Start(profile.NoShutdownHook, profile.ProfilePath("."), profile.CPUProfile).Stop()
		}

		l := newLogger(os.Stderr, slog.LevelInfo)

		f, err := os.Open(c.Path(elfFlag.Name))
		if err != nil {
			return fmt.Errorf("open elf: %w", err)
		}
		defer f.Close()

		img, err := loader.Load(f, loader.LoadOptions{})
		if err != nil {
			return fmt.Errorf("load elf: %w", err)
		}

		state := img.Reset()
		iss := cpu.NewISS(state)
		iss.StopOnEBreak = true

		var clint *memport.CLINT
		if c.Bool(clintFlag.Name) {
			clint = memport.NewCLINT(&state.CSR)
			clint.SetMTimeCmp(c.Uint64(mtimecmpFlag.Name))
		}

		l.Info("starting run", "entry", hexU32(img.EntryPC), "sp", hexU32(img.StackTop))

		maxSteps := c.Uint64(maxStepsFlag.Name)
		var result cpu.StepResult
		if clint != nil {
			// Drive the loop by hand so mtime advances once per retired
			// step; iss.Run has no hook for a per-step external tick.
			for n := uint64(0); maxSteps == 0 || n < maxSteps; n++ {
				result = iss.Step()
				clint.Tick()
				if result.Breakpoint {
					break
				}
			}
		} else {
			result = iss.Run(maxSteps)
		}

		l.Info("run finished",
			"instructions", iss.InstrCount,
			"pc", hexU32(state.PC),
			"priv", state.Priv,
			"breakpoint", result.Breakpoint,
			"trapped", result.Trapped,
		)
		if result.Trapped && !result.Breakpoint {
			l.Warn("final step trapped", "cause", hexU32(result.Cause), "tval", hexU32(result.Tval))
		}

		if statePath := c.Path(stateFlag.Name); statePath != "" {
			if err := writeStateDump(statePath, state, iss.InstrCount); err != nil {
				return err
			}
		}
		return nil
	},
}
