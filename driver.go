package y86

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/sirupsen/logrus"
)

// DefaultStepCap bounds how many instructions Driver.Run will execute
// before giving up on a program, guarding against an infinite loop in
// the simulated program rather than modeling any architectural limit.
const DefaultStepCap = 10000

// Driver runs a loaded CPU to completion: step until halted or
// faulted, then snapshot. Both the CLI and HTTP entry points share
// this one code path.
type Driver struct {
	Log *logrus.Logger
}

// NewDriver returns a Driver with a default logger.
func NewDriver() *Driver {
	return &Driver{Log: logrus.StandardLogger()}
}

// Run steps cpu until it stops running (HLT, ADR, or INS) or cap
// instructions have executed, whichever comes first. It returns the
// final snapshot; on a step-cap breach it also returns a
// *StepCapExceededError, with the snapshot reflecting state as of the
// last successfully executed instruction.
func (d *Driver) Run(cpu *CPU, cap int) (Snapshot, error) {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	for n := 0; n < cap; n++ {
		running, status := cpu.Step()
		if !running {
			if status != HLT {
				log.WithFields(logrus.Fields{
					"status": status.String(),
					"pc":     cpu.PC(),
					"steps":  n + 1,
				}).Warn("y86: execution stopped abnormally")
			}
			return cpu.Snapshot(), nil
		}
	}

	snap := cpu.Snapshot()
	log.WithFields(logrus.Fields{
		"cap": cap,
		"pc":  cpu.PC(),
	}).Debug("y86: step cap exceeded, dumping state")
	log.Debug(spew.Sdump(snap))
	return snap, &StepCapExceededError{Cap: cap, PC: cpu.PC()}
}

// RunAll behaves like Run but additionally returns one Snapshot per
// executed step, including the initial, pre-step state, so a caller
// can replay or inspect the full execution history.
func (d *Driver) RunAll(cpu *CPU, cap int) ([]Snapshot, error) {
	history := []Snapshot{cpu.Snapshot()}

	for n := 0; n < cap; n++ {
		running, _ := cpu.Step()
		history = append(history, cpu.Snapshot())
		if !running {
			return history, nil
		}
	}

	return history, &StepCapExceededError{Cap: cap, PC: cpu.PC()}
}
