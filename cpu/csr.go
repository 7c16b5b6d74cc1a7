package cpu

import "github.com/rv32x/rv32core/isa"

// CSRFile is the hart's privileged register state. Per the teacher's
// style of keeping a typed record plus a read/write switch rather than a
// dynamic map, every register is a named field and Read/Write are the
// only entry points — this is the one place privilege and WARL rules
// live.
type CSRFile struct {
	mstatus    uint32
	medeleg    uint32
	mideleg    uint32
	mie        uint32
	mtvec      uint32
	mcounteren uint32
	mscratch   uint32
	mepc       uint32
	mcause     uint32
	mtval      uint32

	stvec      uint32
	scounteren uint32
	sscratch   uint32
	sepc       uint32
	scause     uint32
	stval      uint32
	satp       uint32

	mcycle   uint64
	minstret uint64

	hwMip uint32 // driven by InterruptSource.Set*
	swMip uint32 // driven by CSR writes to mip/sip (SSIP only)

	// HartID backs the mhartid CSR; installed by CpuState at construction
	// time via WithHartID, never written by a CSR access (mhartid is
	// read-only per the privileged spec).
	HartID uint32

	// OnSATPWrite, if set, is invoked after a write to satp with the new
	// value — the hook a future TLB would use to flush translation
	// caches. Write calls it; nothing else in the CSR file does.
	OnSATPWrite func(uint32)
}

// NewCSRFile returns a CSR file in its post-reset state: misa fixed to
// RV32IMACSU, everything else zero.
func NewCSRFile() *CSRFile {
	return &CSRFile{}
}

// accessReadOnly reports whether addr's top two encoding bits (11:10)
// mark the CSR read-only.
func accessReadOnly(addr uint32) bool {
	return (addr>>10)&0x3 == 0x3
}

// requiredPriv extracts the minimum privilege level encoded in addr[9:8].
func requiredPriv(addr uint32) uint32 {
	return (addr >> 8) & 0x3
}

// Read returns the CSR value and true, or (0, false) on an access fault
// (insufficient privilege). Execute turns a false into CAUSE_ILLEGAL_INSTR.
func (c *CSRFile) Read(addr uint32, priv uint32) (uint32, bool) {
	if priv < requiredPriv(addr) {
		return 0, false
	}
	switch addr {
	case isa.CSR_SSTATUS:
		return c.mstatus & isa.SStatusMask, true
	case isa.CSR_SIE:
		return c.mie & isa.SIntMask, true
	case isa.CSR_STVEC:
		return c.stvec, true
	case isa.CSR_SCOUNTEREN:
		return c.scounteren, true
	case isa.CSR_SSCRATCH:
		return c.sscratch, true
	case isa.CSR_SEPC:
		return c.sepc, true
	case isa.CSR_SCAUSE:
		return c.scause, true
	case isa.CSR_STVAL:
		return c.stval, true
	case isa.CSR_SIP:
		return c.mip() & isa.SIntMask, true
	case isa.CSR_SATP:
		return c.satp, true

	case isa.CSR_MSTATUS:
		return c.mstatus, true
	case isa.CSR_MISA:
		return isa.MisaRV32IMACSU, true
	case isa.CSR_MEDELEG:
		return c.medeleg, true
	case isa.CSR_MIDELEG:
		return c.mideleg, true
	case isa.CSR_MIE:
		return c.mie, true
	case isa.CSR_MTVEC:
		return c.mtvec, true
	case isa.CSR_MCOUNTEREN:
		return c.mcounteren, true
	case isa.CSR_MSCRATCH:
		return c.mscratch, true
	case isa.CSR_MEPC:
		return c.mepc, true
	case isa.CSR_MCAUSE:
		return c.mcause, true
	case isa.CSR_MTVAL:
		return c.mtval, true
	case isa.CSR_MIP:
		return c.mip(), true

	case isa.CSR_MCYCLE, isa.CSR_CYCLE:
		return uint32(c.mcycle), true
	case isa.CSR_MCYCLEH, isa.CSR_CYCLEH:
		return uint32(c.mcycle >> 32), true
	case isa.CSR_MINSTRET, isa.CSR_INSTRET:
		return uint32(c.minstret), true
	case isa.CSR_MINSTRETH, isa.CSR_INSTRETH:
		return uint32(c.minstret >> 32), true
	// time/timeh alias mcycle/mcycleh: no independent RTC exists in-core.
	case isa.CSR_TIME:
		return uint32(c.mcycle), true
	case isa.CSR_TIMEH:
		return uint32(c.mcycle >> 32), true

	case isa.CSR_MVENDORID, isa.CSR_MARCHID, isa.CSR_MIMPID:
		return 0, true
	case isa.CSR_MHARTID:
		return c.HartID, true

	default:
		return 0, false
	}
}

// Write applies val to the CSR at addr and reports whether the write was
// legal (false means access fault — caller should raise CAUSE_ILLEGAL_INSTR).
func (c *CSRFile) Write(addr uint32, priv uint32, val uint32) bool {
	if priv < requiredPriv(addr) {
		return false
	}
	if accessReadOnly(addr) {
		return false
	}
	switch addr {
	case isa.CSR_SSTATUS:
		c.mstatus = (c.mstatus &^ isa.SStatusMask) | (val & isa.SStatusMask)
		c.fixupMPP()
	case isa.CSR_SIE:
		c.mie = (c.mie &^ isa.SIntMask) | (val & isa.SIntMask)
	case isa.CSR_STVEC:
		c.stvec = val
	case isa.CSR_SCOUNTEREN:
		c.scounteren = val
	case isa.CSR_SSCRATCH:
		c.sscratch = val
	case isa.CSR_SEPC:
		c.sepc = val &^ 1
	case isa.CSR_SCAUSE:
		c.scause = val
	case isa.CSR_STVAL:
		c.stval = val
	case isa.CSR_SIP:
		// Software may only move SSIP through sip.
		if val&isa.MIP_SSIP != 0 {
			c.swMip |= isa.MIP_SSIP
		} else {
			c.swMip &^= isa.MIP_SSIP
		}
	case isa.CSR_SATP:
		c.satp = val
		if c.OnSATPWrite != nil {
			c.OnSATPWrite(val)
		}

	case isa.CSR_MSTATUS:
		c.mstatus = (c.mstatus &^ isa.MStatusWriteMask) | (val & isa.MStatusWriteMask)
		c.fixupMPP()
	case isa.CSR_MISA:
		// misa writes are accepted and ignored: fixed ISA.
	case isa.CSR_MEDELEG:
		c.medeleg = val
	case isa.CSR_MIDELEG:
		c.mideleg = val
	case isa.CSR_MIE:
		c.mie = val
	case isa.CSR_MTVEC:
		c.mtvec = val
	case isa.CSR_MCOUNTEREN:
		c.mcounteren = val
	case isa.CSR_MSCRATCH:
		c.mscratch = val
	case isa.CSR_MEPC:
		c.mepc = val &^ 1
	case isa.CSR_MCAUSE:
		c.mcause = val
	case isa.CSR_MTVAL:
		c.mtval = val
	case isa.CSR_MIP:
		if val&isa.MIP_SSIP != 0 {
			c.swMip |= isa.MIP_SSIP
		} else {
			c.swMip &^= isa.MIP_SSIP
		}

	case isa.CSR_MCYCLE:
		c.mcycle = c.mcycle&0xFFFFFFFF00000000 | uint64(val)
	case isa.CSR_MCYCLEH:
		c.mcycle = c.mcycle&0xFFFFFFFF | uint64(val)<<32
	case isa.CSR_MINSTRET:
		c.minstret = c.minstret&0xFFFFFFFF00000000 | uint64(val)
	case isa.CSR_MINSTRETH:
		c.minstret = c.minstret&0xFFFFFFFF | uint64(val)<<32

	default:
		return false
	}
	return true
}

// fixupMPP forces MPP to U (0) whenever a write leaves it at the
// reserved encoding 2 — mstatus.MPP is WARL over {0,1,3}.
func (c *CSRFile) fixupMPP() {
	if (c.mstatus&isa.MSTATUS_MPP)>>11 == 2 {
		c.mstatus &^= isa.MSTATUS_MPP
	}
}

// mip is the composed pending-interrupt vector: hardware-set bits or'd
// with the software-writable subset (SSIP only).
func (c *CSRFile) mip() uint32 {
	return c.hwMip | c.swMip
}

// Hardware-facing interrupt line setters (CSRFile implements InterruptSource).
func (c *CSRFile) SetMTIP(v bool) { c.setHw(isa.MIP_MTIP, v) }
func (c *CSRFile) SetMSIP(v bool) { c.setHw(isa.MIP_MSIP, v) }
func (c *CSRFile) SetMEIP(v bool) { c.setHw(isa.MIP_MEIP, v) }
func (c *CSRFile) SetSTIP(v bool) { c.setHw(isa.MIP_STIP, v) }
func (c *CSRFile) SetSEIP(v bool) { c.setHw(isa.MIP_SEIP, v) }
func (c *CSRFile) SetSSIP(v bool) { c.setHw(isa.MIP_SSIP, v) }

func (c *CSRFile) setHw(bit uint32, v bool) {
	if v {
		c.hwMip |= bit
	} else {
		c.hwMip &^= bit
	}
}

// IncMCycle advances mcycle by one, carrying into the conceptual high
// word (mcycle is stored as a native 64-bit value and split on read).
func (c *CSRFile) IncMCycle() { c.mcycle++ }

// IncMInstret advances minstret by one retired instruction.
func (c *CSRFile) IncMInstret() { c.minstret++ }

// MStatus returns the raw mstatus value, for Execute/Trap use (MRET/SRET,
// trap entry) that need to manipulate bits CSR access policy wouldn't
// otherwise expose a path for.
func (c *CSRFile) MStatus() uint32 { return c.mstatus }

// SetMStatus installs a new mstatus value verbatim, masked to the legal
// write bits, applying the same MPP WARL fixup as a CSR write.
func (c *CSRFile) SetMStatus(v uint32) {
	c.mstatus = v & isa.MStatusWriteMask
	c.fixupMPP()
}

func (c *CSRFile) MEPC() uint32        { return c.mepc }
func (c *CSRFile) SetMEPC(pc uint32)   { c.mepc = pc &^ 1 }
func (c *CSRFile) SEPC() uint32        { return c.sepc }
func (c *CSRFile) SetSEPC(pc uint32)   { c.sepc = pc &^ 1 }
func (c *CSRFile) SetMCause(v uint32)  { c.mcause = v }
func (c *CSRFile) SetMTval(v uint32)   { c.mtval = v }
func (c *CSRFile) SetSCause(v uint32)  { c.scause = v }
func (c *CSRFile) SetSTval(v uint32)   { c.stval = v }
func (c *CSRFile) MTvec() uint32       { return c.mtvec }
func (c *CSRFile) STvec() uint32       { return c.stvec }
func (c *CSRFile) MEDeleg() uint32     { return c.medeleg }
func (c *CSRFile) MIDeleg() uint32     { return c.mideleg }
func (c *CSRFile) MIE() uint32         { return c.mie }
func (c *CSRFile) MIP() uint32         { return c.mip() }
func (c *CSRFile) TSR() bool           { return c.mstatus&isa.MSTATUS_TSR != 0 }
func (c *CSRFile) TVM() bool           { return c.mstatus&isa.MSTATUS_TVM != 0 }
