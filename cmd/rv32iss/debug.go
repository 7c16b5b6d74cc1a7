package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/rv32x/rv32core/cpu"
	"github.com/rv32x/rv32core/loader"
)

var rawFlag = &cli.BoolFlag{
	Name:  "raw",
	Usage: "single-keypress stepping instead of a line-based command prompt",
}

var debugCommand = &cli.Command{
	Name:  "debug",
	Usage: "interactively single-step an ELF binary with breakpoints",
	Flags: []cli.Flag{elfFlag, rawFlag},
	Action: func(c *cli.Context) error {
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

		dbg := &debugger{iss: iss}
		if c.Bool(rawFlag.Name) {
			return dbg.runRaw()
		}
		return dbg.runLine()
	},
}

// debugger is a minimal single-hart stepping debugger: breakpoints by
// address, register/memory inspection, and step/continue — the same
// small command set the pack's only other interactive debugger exposes,
// adapted from 16-bit LC-3 addresses to this core's 32-bit address space.
type debugger struct {
	iss         *cpu.ISS
	breakpoints map[uint32]bool
}

func (d *debugger) printState() {
	s := d.iss.State
	fmt.Printf("pc=%08x priv=%d instrs=%d\n", s.PC, s.Priv, d.iss.InstrCount)
}

func (d *debugger) printRegs() {
	s := d.iss.State
	for i := 0; i < 32; i += 4 {
		fmt.Printf("x%-2d=%08x x%-2d=%08x x%-2d=%08x x%-2d=%08x\n",
			i, uint32(s.Reg(uint32(i))),
			i+1, uint32(s.Reg(uint32(i+1))),
			i+2, uint32(s.Reg(uint32(i+2))),
			i+3, uint32(s.Reg(uint32(i+3))),
		)
	}
}

func (d *debugger) atBreakpoint() bool {
	return d.breakpoints != nil && d.breakpoints[d.iss.State.PC]
}

// runLine drives the debugger from a line-oriented command prompt:
// s[tep] [n], c[ontinue], b[reak] <hex addr>, r[egs], m[em] <hex addr> <n>, q[uit].
func (d *debugger) runLine() error {
	d.breakpoints = map[uint32]bool{}
	scanner := bufio.NewScanner(os.Stdin)
	d.printState()
	for {
		fmt.Print("(rv32iss) ")
		if !scanner.Scan() {
			return nil
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "s", "step":
			n := uint64(1)
			if len(fields) > 1 {
				if v, err := strconv.ParseUint(fields[1], 10, 64); err == nil {
					n = v
				}
			}
			for i := uint64(0); i < n; i++ {
				d.iss.Step()
			}
			d.printState()
		case "c", "continue":
			for {
				d.iss.Step()
				if d.atBreakpoint() {
					break
				}
			}
			d.printState()
		case "b", "break":
			if len(fields) < 2 {
				fmt.Println("usage: break <hex addr>")
				continue
			}
			addr, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 32)
			if err != nil {
				fmt.Println("bad address:", err)
				continue
			}
			d.breakpoints[uint32(addr)] = true
		case "r", "regs":
			d.printRegs()
		case "m", "mem":
			if len(fields) < 3 {
				fmt.Println("usage: mem <hex addr> <count>")
				continue
			}
			addr, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 32)
			if err != nil {
				fmt.Println("bad address:", err)
				continue
			}
			n, _ := strconv.Atoi(fields[2])
			for i := 0; i < n; i += 4 {
				a := uint32(addr) + uint32(i)
				fmt.Printf("%08x: %08x\n", a, d.iss.State.Mem.Read(a, 4))
			}
		case "q", "quit":
			return nil
		default:
			fmt.Println("commands: step [n], continue, break <addr>, regs, mem <addr> <n>, quit")
		}
	}
}

// runRaw steps one instruction per keypress ('n'), prints register state
// on 'r', and quits on 'q' — no newline required between commands.
func (d *debugger) runRaw() error {
	term, err := enterRawTerm()
	if err != nil {
		return fmt.Errorf("enter raw terminal mode: %w", err)
	}
	defer term.restore()

	buf := make([]byte, 1)
	d.printState()
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			return err
		}
		switch buf[0] {
		case 'n':
			d.iss.Step()
			d.printState()
		case 'r':
			d.printRegs()
		case 'q':
			return nil
		}
	}
}
