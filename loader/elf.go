// Package loader builds an initial cpu.CpuState and backing memory image
// from an ELF binary, grounded on the teacher's LoadELF/Symbols/
// FindSymbol trio but stripped down to this core's RV32 bare-metal target:
// no Go-runtime GC patching, no RV64 heap-arena placement, just program
// segments, an entry point, and a generic argv/auxv stack layout.
package loader

import (
	"debug/elf"
	"fmt"
	"io"
	"sort"

	"github.com/rv32x/rv32core/cpu"
	"github.com/rv32x/rv32core/memport"
)

// Image is the result of loading an ELF: the populated memory and the
// reset PC/SP the hart should start from.
type Image struct {
	Mem      *memport.FlatMemory
	EntryPC  uint32
	StackTop uint32
}

// defaultStackTop is an arbitrary high address for a 32-bit address space
// with plenty of room below it for a loaded binary; callers targeting a
// specific platform memory map should override via LoadOptions.
const defaultStackTop = 0x7FFF0000

// LoadOptions configures Load beyond the ELF's own entry point.
type LoadOptions struct {
	StackTop uint32 // 0 selects defaultStackTop
	Argv     []string
}

// Load reads an RV32 ELF from r and returns a populated Image: every
// PT_LOAD segment copied into memory, zero-filled out to Memsz when the
// file image is shorter, and an argv/auxv vector pushed below StackTop.
func Load(r io.ReaderAt, opts LoadOptions) (*Image, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, fmt.Errorf("parse elf: %w", err)
	}
	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("unsupported ELF class %s: this core is RV32-only", f.Class)
	}
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("unsupported ELF machine %s: expected EM_RISCV", f.Machine)
	}

	mem := memport.NewFlatMemory()

	for i, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		data := make([]byte, prog.Memsz)
		n, err := prog.ReadAt(data[:prog.Filesz], 0)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read program segment %d: %w", i, err)
		}
		if uint64(n) != prog.Filesz {
			return nil, fmt.Errorf("short read on program segment %d: got %d want %d", i, n, prog.Filesz)
		}
		mem.LoadBytes(uint32(prog.Vaddr), data)
	}

	stackTop := opts.StackTop
	if stackTop == 0 {
		stackTop = defaultStackTop
	}
	sp := buildStack(mem, stackTop, opts.Argv)

	return &Image{Mem: mem, EntryPC: uint32(f.Entry), StackTop: sp}, nil
}

// buildStack writes a minimal argc/argv/envp/auxv vector below top,
// generic bare-metal layout (not Go-runtime specific): argc, then argv
// pointers, a NULL terminator, an empty envp, and an AT_NULL auxv.
func buildStack(mem *memport.FlatMemory, top uint32, argv []string) uint32 {
	sp := top &^ 0xF // 16-byte align

	strPtrs := make([]uint32, len(argv))
	for i := len(argv) - 1; i >= 0; i-- {
		s := append([]byte(argv[i]), 0)
		sp -= uint32(len(s))
		mem.LoadBytes(sp, s)
		strPtrs[i] = sp
	}
	sp &^= 0x3 // word align after string bytes

	// auxv: just AT_NULL (0,0).
	sp -= 8
	mem.Write(sp, 4, 0)
	mem.Write(sp+4, 4, 0)

	// envp: just a NULL terminator.
	sp -= 4
	mem.Write(sp, 4, 0)

	// argv: pointers then NULL terminator.
	sp -= 4
	mem.Write(sp, 4, 0)
	for i := len(strPtrs) - 1; i >= 0; i-- {
		sp -= 4
		mem.Write(sp, 4, strPtrs[i])
	}

	sp -= 4
	mem.Write(sp, 4, uint32(len(argv)))

	return sp
}

// Reset returns a fresh cpu.CpuState for img, wired to mem with the stack
// pointer (x2) initialized to the built argv/auxv stack top.
func (img *Image) Reset(opts ...cpu.Option) *cpu.CpuState {
	allOpts := append([]cpu.Option{
		cpu.WithResetPC(img.EntryPC),
		cpu.WithMem(img.Mem),
	}, opts...)
	s := cpu.NewCpuState(allOpts...)
	s.SetReg(2, int32(img.StackTop))
	return s
}

// SortedSymbols is an address-sorted symbol table, for debugger
// addr->name lookups.
type SortedSymbols []elf.Symbol

// FindSymbol returns the symbol containing addr, or a synthetic "!gap"
// symbol when addr falls between known symbols.
func (s SortedSymbols) FindSymbol(addr uint32) elf.Symbol {
	i := sort.Search(len(s), func(i int) bool {
		return uint32(s[i].Value) > addr
	})
	if i == 0 {
		return elf.Symbol{Name: "!start", Value: 0}
	}
	out := s[i-1]
	if out.Value+out.Size < uint64(addr) {
		return elf.Symbol{Name: "!gap", Value: uint64(addr)}
	}
	return out
}

// Symbols reads and address-sorts f's symbol table.
func Symbols(f *elf.File) (SortedSymbols, error) {
	symbols, err := f.Symbols()
	if err != nil {
		return nil, fmt.Errorf("read symbols: %w", err)
	}
	out := make(SortedSymbols, len(symbols))
	copy(out, symbols)
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out, nil
}
