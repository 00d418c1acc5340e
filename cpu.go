// Package y86 implements a sequential simulator for the Y86-64
// instruction set: a pedagogical, 64-bit, fixed-encoding subset of
// x86-64 used in classic systems-architecture texts. It decodes and
// executes one fully completed instruction per Step call against an
// architectural state of fifteen general-purpose registers, three
// condition-code bits, a program counter, and byte-addressable memory.
//
// There is no pipelining, hazard detection, forwarding, branch
// prediction, or cycle accounting: execution is strictly sequential.
package y86

// Registers holds the programmer-visible general-purpose register file.
// Index 15 (RNone) is never stored here; it is a decode-time sentinel.
type Registers [15]uint64

// CPU is the Y86-64 processor: register file, condition codes, program
// counter, status, and a reference to memory.
type CPU struct {
	regs   Registers
	cc     ConditionCodes
	pc     uint64
	status Status
	mem    Memory

	// cur is the most recently decoded instruction, consumed by execute.
	// Kept as a CPU field rather than threaded as a return value so
	// execute handlers can rewrite valP for control-flow instructions;
	// nothing outside fetch/execute ever reads it.
	cur decoded
}

// New creates a CPU with an empty memory and zeroed architectural state.
// Load must be called before Step will do anything useful.
func New() *CPU {
	c := &CPU{mem: newSparseMemory()}
	return c
}

// Load fully resets the CPU, writes every byte of image into memory at
// its address, and sets pc to the minimum key in image. It fails with
// INS if image is empty.
func (c *CPU) Load(image map[uint64]byte) error {
	c.Reset()
	if len(image) == 0 {
		c.status = INS
		return &LoadError{Reason: "empty program"}
	}
	var minAddr uint64
	first := true
	for addr, b := range image {
		c.mem.WriteByte(addr, b)
		if first || addr < minAddr {
			minAddr = addr
			first = false
		}
	}
	c.pc = minAddr
	return nil
}

// Reset clears all registers, condition codes, the program counter,
// status, memory, and the decoded-instruction record. Load calls Reset
// and then places the PC; a bare Reset leaves PC at zero rather than
// preserving whatever PC was set by a previous Load.
func (c *CPU) Reset() {
	c.regs = Registers{}
	c.cc = ConditionCodes{}
	c.pc = 0
	c.status = AOK
	c.mem.Reset()
	c.cur = decoded{}
}

// Status returns the CPU's current lifecycle state.
func (c *CPU) Status() Status { return c.status }

// PC returns the current program counter.
func (c *CPU) PC() uint64 { return c.pc }

// Register returns the value of the named general-purpose register.
// Reading RNone returns 0 and is never done by Step itself.
func (c *CPU) Register(r Reg) uint64 {
	if !r.valid() {
		return 0
	}
	return c.regs[r]
}

// ConditionCodes returns the current ZF/SF/OF flags.
func (c *CPU) ConditionCodes() ConditionCodes { return c.cc }

// Memory exposes the CPU's memory for read-only inspection (used by the
// serializer and by tests).
func (c *CPU) Memory() Memory { return c.mem }

// Step runs one fetch-execute-commit cycle. running is false once status
// has left AOK; a Step call after that point is a no-op that returns the
// same (false, status).
func (c *CPU) Step() (running bool, status Status) {
	if c.status != AOK {
		return false, c.status
	}

	d, st := c.fetch()
	if st != AOK {
		c.status = st
		return false, c.status
	}

	c.cur = d
	handler := opcodeTable[d.icode]
	if handler == nil {
		c.status = INS
		return false, c.status
	}

	handler(c, &c.cur)
	if c.status != AOK {
		return false, c.status
	}

	c.pc = c.cur.valP

	if c.cur.icode == iHalt {
		c.status = HLT
		return false, c.status
	}
	return true, c.status
}

// fetch reads the instruction at pc: the opcode byte, an optional
// register byte, and an optional 8-byte little-endian immediate. It
// never mutates CPU state beyond what's needed to build the decoded
// value; pc is only committed by Step after a successful execute.
func (c *CPU) fetch() (decoded, Status) {
	var d decoded

	b0, st := c.mem.ReadByte(c.pc)
	if st != AOK {
		return d, st
	}
	d.icode = ICode(b0 >> 4)
	d.ifun = b0 & 0xF
	cursor := c.pc + 1

	if regByteGroup[d.icode] {
		rb, st := c.mem.ReadByte(cursor)
		if st != AOK {
			return d, st
		}
		d.rA = Reg(rb >> 4)
		d.rB = Reg(rb & 0xF)
		cursor++
	}

	if immGroup[d.icode] {
		v, st := c.mem.ReadQuad(cursor)
		if st != AOK {
			return d, st
		}
		d.valC = int64(v)
		cursor += 8
	}

	d.valP = cursor
	return d, AOK
}

// fault sets the CPU's status to code and is the single place every
// execute handler reports a failure: INS for a decode-time operand
// violation (an unexpected RNone, or an ifun with no matching
// condition), or the status a failed memory access returned.
func (c *CPU) fault(code Status) {
	c.status = code
}

// readReg returns R[r], faulting INS if r is the reserved sentinel. Used
// for every rA/rB operand read except a memory instruction's base
// register, which has its own exemption (see readBase); the stack
// instructions read rsp directly.
func (c *CPU) readReg(r Reg) (uint64, bool) {
	if !r.valid() {
		c.fault(INS)
		return 0, false
	}
	return c.regs[r], true
}

// writeReg stores v in R[r], faulting INS if r is the reserved sentinel.
func (c *CPU) writeReg(r Reg, v uint64) bool {
	if !r.valid() {
		c.fault(INS)
		return false
	}
	c.regs[r] = v
	return true
}

// readBase returns the base-register contribution for rmmovq/mrmovq
// addressing: R[rB], or 0 if rB is the no-register sentinel. Unlike
// readReg, a no-register base is legal here rather than a fault, since
// "no base register" is a meaningful addressing mode (absolute
// displacement), not an operand-decoding error.
func (c *CPU) readBase(r Reg) uint64 {
	if !r.valid() {
		return 0
	}
	return c.regs[r]
}
