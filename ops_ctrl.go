package y86

func init() {
	registerHalt()
	registerNop()
	registerJump()
	registerCall()
	registerRet()
}

// registerHalt installs halt under icode 0x0.
func registerHalt() {
	opcodeTable[iHalt] = opHalt
}

// opHalt implements halt. Step itself sets status to HLT once this
// handler returns without faulting; the handler has nothing to do but
// let valP (the byte after halt) become the committed PC.
func opHalt(c *CPU, d *decoded) {}

// registerNop installs nop under icode 0x1.
func registerNop() {
	opcodeTable[iNop] = opNop
}

// opNop implements nop: no architectural effect beyond advancing PC.
func opNop(c *CPU, d *decoded) {}

// registerJump installs jmp/jXX under icode 0x7.
func registerJump() {
	opcodeTable[iJump] = opJump
}

// opJump implements jmp/jXX: if cond(ifun) then valP <- valC.
func opJump(c *CPU, d *decoded) {
	should, ok := c.cc.condition(d.ifun)
	if !ok {
		c.fault(INS)
		return
	}
	if should {
		d.valP = uint64(d.valC)
	}
}

// registerCall installs call under icode 0x8.
func registerCall() {
	opcodeTable[iCall] = opCall
}

// opCall implements call: R[rsp] <- R[rsp] - 8; M8[R[rsp]] <- valP;
// valP <- valC. The pushed return address is the fall-through address
// of the call itself, computed at fetch time before this handler runs.
func opCall(c *CPU, d *decoded) {
	retAddr := d.valP
	newSP := c.regs[RSP] - 8
	if st := c.mem.WriteQuad(newSP, retAddr); st != AOK {
		c.fault(st)
		return
	}
	c.regs[RSP] = newSP
	d.valP = uint64(d.valC)
}

// registerRet installs ret under icode 0x9.
func registerRet() {
	opcodeTable[iRet] = opRet
}

// opRet implements ret: valP <- M8[R[rsp]]; R[rsp] <- R[rsp] + 8.
func opRet(c *CPU, d *decoded) {
	sp := c.regs[RSP]
	retAddr, st := c.mem.ReadQuad(sp)
	if st != AOK {
		c.fault(st)
		return
	}
	c.regs[RSP] = sp + 8
	d.valP = retAddr
}
