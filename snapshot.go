package y86

// Snapshot is the CPU's full architectural state at one point in time:
// every register, the condition codes, the program counter, the
// terminal status, and every non-zero memory byte. Driver and the
// serializer both work from a Snapshot rather than a live *CPU so that
// a run's history can be retained (the HTTP /api/run endpoint returns
// one per step) without aliasing live state.
type Snapshot struct {
	Regs   Registers
	CC     ConditionCodes
	PC     uint64
	Status Status
	Mem    map[uint64]uint8
}

// Snapshot captures the CPU's current state.
func (c *CPU) Snapshot() Snapshot {
	return Snapshot{
		Regs:   c.regs,
		CC:     c.cc,
		PC:     c.pc,
		Status: c.status,
		Mem:    c.mem.NonzeroSnapshot(),
	}
}
