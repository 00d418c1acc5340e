package y86

func init() {
	registerRMMov()
	registerMRMov()
	registerPushq()
	registerPopq()
}

// effectiveAddr computes R[rB] + valC, the sole Y86-64 memory addressing
// mode. rB may be the no-register sentinel (base contributes 0); valC is
// a signed 64-bit displacement, so the add wraps modulo 2^64 exactly
// like any other Y86-64 arithmetic.
func effectiveAddr(c *CPU, rB Reg, valC int64) uint64 {
	return c.readBase(rB) + uint64(valC)
}

// registerRMMov installs rmmovq under icode 0x4.
func registerRMMov() {
	opcodeTable[iRMMov] = opRMMov
}

// opRMMov implements rmmovq: M8[R[rB] + valC] <- R[rA].
func opRMMov(c *CPU, d *decoded) {
	val, ok := c.readReg(d.rA)
	if !ok {
		return
	}
	addr := effectiveAddr(c, d.rB, d.valC)
	if st := c.mem.WriteQuad(addr, val); st != AOK {
		c.fault(st)
	}
}

// registerMRMov installs mrmovq under icode 0x5.
func registerMRMov() {
	opcodeTable[iMRMov] = opMRMov
}

// opMRMov implements mrmovq: R[rA] <- M8[R[rB] + valC].
func opMRMov(c *CPU, d *decoded) {
	addr := effectiveAddr(c, d.rB, d.valC)
	val, st := c.mem.ReadQuad(addr)
	if st != AOK {
		c.fault(st)
		return
	}
	c.writeReg(d.rA, val)
}

// registerPushq installs pushq under icode 0xA. Its encoding carries rA
// in the high nibble of the register byte and RNone in the low nibble
// (rB is unused).
func registerPushq() {
	opcodeTable[iPushq] = opPushq
}

// opPushq implements pushq: R[rsp] <- R[rsp] - 8; M8[R[rsp]] <- R[rA].
// The value is read before rsp is decremented, matching the real
// Y86-64 semantics where pushq %rsp pushes the pre-decrement value.
func opPushq(c *CPU, d *decoded) {
	val, ok := c.readReg(d.rA)
	if !ok {
		return
	}
	newSP := c.regs[RSP] - 8
	if st := c.mem.WriteQuad(newSP, val); st != AOK {
		c.fault(st)
		return
	}
	c.regs[RSP] = newSP
}

// registerPopq installs popq under icode 0xB.
func registerPopq() {
	opcodeTable[iPopq] = opPopq
}

// opPopq implements popq: R[rA] <- M8[R[rsp]]; R[rsp] <- R[rsp] + 8.
// The two writes happen in program order, so popq %rsp ends with rsp
// holding sp+8 rather than the popped value: the second assignment to
// R[rsp] (the increment) is the one that sticks.
func opPopq(c *CPU, d *decoded) {
	sp := c.regs[RSP]
	val, st := c.mem.ReadQuad(sp)
	if st != AOK {
		c.fault(st)
		return
	}
	if !c.writeReg(d.rA, val) {
		return
	}
	c.regs[RSP] = sp + 8
}
