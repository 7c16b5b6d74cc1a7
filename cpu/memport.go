package cpu

// MemPort is the sole capability the core uses to reach memory. It is
// deliberately narrow: no bus addressing, no ROM/MMU modeling, no error
// channel — those live with the collaborator that implements this
// interface, not with the core. Reads are zero-extended and
// little-endian; writes take the low bytes*8 bits of value.
type MemPort interface {
	Read(addr uint32, bytes uint8) uint32
	Write(addr uint32, bytes uint8, value uint32)
}

// InterruptSource lets external controllers (CLINT, PLIC) drive the
// hardware half of mip. The core never reads these signals directly; it
// only ever observes their effect through CSRFile.mip() inside
// CheckPending.
type InterruptSource interface {
	SetMTIP(bool)
	SetMSIP(bool)
	SetMEIP(bool)
	SetSTIP(bool)
	SetSEIP(bool)
	SetSSIP(bool)
}
