// Package memport provides concrete cpu.MemPort and cpu.InterruptSource
// implementations for running an ISS standalone: a flat paged RAM model
// grounded on the teacher's page-cached memory (Merkle/witness tracking
// stripped out, since nothing downstream of this core needs a state
// root), and a minimal CLINT-alike timer/software-interrupt source.
package memport

import "fmt"

const pageSize = 4096
const pageMask = pageSize - 1

// FlatMemory is a sparse, page-allocated flat address space. Pages are
// allocated lazily on first touch, the same page-cache-on-demand shape
// the teacher's memory model uses, minus the Merkleization layer this
// core has no use for.
type FlatMemory struct {
	pages map[uint32][]byte
}

// NewFlatMemory returns an empty address space.
func NewFlatMemory() *FlatMemory {
	return &FlatMemory{pages: make(map[uint32][]byte)}
}

func (m *FlatMemory) page(addr uint32, write bool) []byte {
	key := addr &^ pageMask
	p, ok := m.pages[key]
	if !ok {
		if !write {
			return nil
		}
		p = make([]byte, pageSize)
		m.pages[key] = p
	}
	return p
}

// Read implements cpu.MemPort. Unmapped pages read as zero.
func (m *FlatMemory) Read(addr uint32, bytes uint8) uint32 {
	var v uint32
	for i := uint8(0); i < bytes; i++ {
		a := addr + uint32(i)
		p := m.page(a, false)
		var b byte
		if p != nil {
			b = p[a&pageMask]
		}
		v |= uint32(b) << (8 * i)
	}
	return v
}

// Write implements cpu.MemPort, allocating backing pages on demand.
func (m *FlatMemory) Write(addr uint32, bytes uint8, value uint32) {
	for i := uint8(0); i < bytes; i++ {
		a := addr + uint32(i)
		p := m.page(a, true)
		p[a&pageMask] = byte(value >> (8 * i))
	}
}

// LoadBytes copies data into memory starting at addr, allocating pages
// as needed. Used by the loader to place ELF segments.
func (m *FlatMemory) LoadBytes(addr uint32, data []byte) {
	for i, b := range data {
		a := addr + uint32(i)
		p := m.page(a, true)
		p[a&pageMask] = b
	}
}

// Dump returns a human-readable hex dump of [addr, addr+n), for debugger use.
func (m *FlatMemory) Dump(addr uint32, n int) string {
	s := ""
	for i := 0; i < n; i += 4 {
		s += fmt.Sprintf("%08x: %08x\n", addr+uint32(i), m.Read(addr+uint32(i), 4))
	}
	return s
}
