package y86

import "fmt"

// ParseError reports a malformed line in a .yo object file. A malformed
// line rejects the whole file rather than being silently dropped, so a
// bad input never quietly produces a wrong memory image.
type ParseError struct {
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("y86: parse error at line %d (%q): %s", e.Line, e.Text, e.Reason)
}

// LoadError reports that a parsed program could not be loaded, because
// it contained no instructions at all.
type LoadError struct {
	Reason string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("y86: load error: %s", e.Reason)
}

// StepCapExceededError reports that the driver's instruction-count guard
// tripped before the machine reached a terminal status. This is a
// driver-level guard against divergent programs, not an architectural
// fault, so it is reported distinctly from ADR/INS.
type StepCapExceededError struct {
	Cap int
	PC  uint64
}

func (e *StepCapExceededError) Error() string {
	return fmt.Sprintf("y86: exceeded step cap of %d instructions (pc=%#x)", e.Cap, e.PC)
}
