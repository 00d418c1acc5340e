package y86

// Condition code bits. Only three of the eight positions in a byte are
// meaningful; the rest are always zero.
const (
	flagZF uint8 = 1 << iota
	flagSF
	flagOF
)

// ConditionCodes holds the three single-bit Y86-64 flags. They are read
// by conditional moves and jumps and written only by the OPq group
// (add/sub/and/xor); no other instruction, including plain moves,
// perturbs them.
type ConditionCodes struct {
	bits uint8
}

func (c ConditionCodes) ZF() bool { return c.bits&flagZF != 0 }
func (c ConditionCodes) SF() bool { return c.bits&flagSF != 0 }
func (c ConditionCodes) OF() bool { return c.bits&flagOF != 0 }

func (c *ConditionCodes) set(zf, sf, of bool) {
	var b uint8
	if zf {
		b |= flagZF
	}
	if sf {
		b |= flagSF
	}
	if of {
		b |= flagOF
	}
	c.bits = b
}

// aluOp identifies which of the four OPq operations produced a result,
// since overflow is computed differently for add/sub than for the
// bitwise operations.
type aluOp int

const (
	aluAdd aluOp = iota
	aluSub
	aluAnd
	aluXor
)

// setFlags centralizes condition-code computation for the OPq group, so
// add/sub/and/xor all derive ZF/SF/OF from one place rather than each
// execute handler recomputing them. valA, valB, and result are the full
// 64-bit operands/result as they were used to compute result (valB op
// valA for add/sub; valB & valA or valB ^ valA for the logical pair).
func (c *ConditionCodes) setFlags(op aluOp, valA, valB, result uint64) {
	zf := result == 0
	sf := result&(1<<63) != 0

	var of bool
	switch op {
	case aluAdd:
		a, b, r := int64(valA), int64(valB), int64(result)
		of = (b >= 0) == (a >= 0) && (r >= 0) != (a >= 0)
	case aluSub:
		a, b, r := int64(valA), int64(valB), int64(result)
		of = (a < 0) != (b < 0) && (r < 0) != (b < 0)
	case aluAnd, aluXor:
		of = false
	}

	c.set(zf, sf, of)
}

// condition evaluates a cmov/jXX predicate (ifun 0-6) against the
// current flags. ok is false for any other ifun value, which the caller
// must treat as an invalid instruction.
func (c ConditionCodes) condition(ifun uint8) (result, ok bool) {
	switch ifun {
	case 0: // unconditional
		return true, true
	case 1: // le
		return (c.SF() != c.OF()) || c.ZF(), true
	case 2: // l
		return c.SF() != c.OF(), true
	case 3: // e
		return c.ZF(), true
	case 4: // ne
		return !c.ZF(), true
	case 5: // ge
		return c.SF() == c.OF(), true
	case 6: // g
		return c.SF() == c.OF() && !c.ZF(), true
	default:
		return false, false
	}
}
