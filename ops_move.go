package y86

func init() {
	registerRRMov()
	registerIRMov()
}

// registerRRMov installs rrmovq (ifun 0) and the six cmovXX variants
// (ifun 1-6) under icode 0x2. All seven share one handler; the
// condition is evaluated from ifun at execute time.
func registerRRMov() {
	opcodeTable[iRRMov] = opRRMov
}

// opRRMov implements rrmovq/cmovXX: if cond(ifun) then R[rB] <- R[rA].
// The move's source and destination registers are always decoded,
// whether or not the condition holds, so RNone in either field faults
// regardless of the runtime condition outcome.
func opRRMov(c *CPU, d *decoded) {
	should, ok := c.cc.condition(d.ifun)
	if !ok {
		c.fault(INS)
		return
	}

	val, ok := c.readReg(d.rA)
	if !ok {
		return
	}
	if !d.rB.valid() {
		c.fault(INS)
		return
	}
	if !should {
		return
	}
	c.writeReg(d.rB, val)
}

// registerIRMov installs irmovq under icode 0x3.
func registerIRMov() {
	opcodeTable[iIRMov] = opIRMov
}

// opIRMov implements irmovq: R[rB] <- valC. rA is unused by this
// instruction and is ignored (the encoding pads it with 0xF).
func opIRMov(c *CPU, d *decoded) {
	c.writeReg(d.rB, uint64(d.valC))
}
