package y86

import (
	"bytes"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestBuildFinalStateRegisterCompleteness(t *testing.T) {
	prog := newAsm().irmovq(-1, RAX).halt().prog
	cpu := mustLoad(t, prog)
	cpu.Step()

	fs := BuildFinalState(cpu.Snapshot())
	if len(fs.REG) != 15 {
		t.Fatalf("len(REG) = %d, want 15", len(fs.REG))
	}
	for _, name := range regNames {
		if _, ok := fs.REG[name]; !ok {
			t.Errorf("REG missing key %q", name)
		}
	}
	if fs.REG["rax"] != -1 {
		t.Errorf(`REG["rax"] = %d, want -1 (signed two's-complement)`, fs.REG["rax"])
	}
}

func TestBuildFinalStateMemoryIsEightByteAligned(t *testing.T) {
	prog := newAsm().
		irmovq(0x1122334455667788, RAX).
		irmovq(0x204, RBX).
		rmmovq(RAX, RBX, 0).
		halt().
		prog

	cpu := mustLoad(t, prog)
	for {
		running, _ := cpu.Step()
		if !running {
			break
		}
	}

	fs := BuildFinalState(cpu.Snapshot())
	for addr := range fs.MEM {
		if addr%8 != 0 {
			t.Errorf("MEM key %#x is not 8-byte aligned", addr)
		}
	}
	// The quad at 0x204 straddles two blocks: its low four bytes fill the
	// upper half of the 0x200 block, its high four the lower half of 0x208.
	if fs.MEM[0x200] != int64(0x5566778800000000) {
		t.Errorf("MEM[0x200] = %#x, want 0x5566778800000000", fs.MEM[0x200])
	}
}

func TestBuildFinalStateStatCode(t *testing.T) {
	halted := mustLoad(t, newAsm().halt().prog)
	for {
		running, _ := halted.Step()
		if !running {
			break
		}
	}
	if got := BuildFinalState(halted.Snapshot()).STAT; got != 1 {
		t.Errorf("STAT for HLT = %d, want 1", got)
	}

	faulted := mustLoad(t, newAsm().badOpcode().prog)
	faulted.Step()
	if got := BuildFinalState(faulted.Snapshot()).STAT; got != 2 {
		t.Errorf("STAT for INS = %d, want 2", got)
	}
}

func TestWriteFinalStateFieldOrderAndShape(t *testing.T) {
	prog := newAsm().irmovq(7, RAX).halt().prog
	cpu := mustLoad(t, prog)
	for {
		running, _ := cpu.Step()
		if !running {
			break
		}
	}
	fs := BuildFinalState(cpu.Snapshot())

	var buf bytes.Buffer
	if err := WriteFinalState(&buf, fs); err != nil {
		t.Fatalf("WriteFinalState returned error: %v", err)
	}

	var doc []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("round-trip unmarshal failed: %v\noutput was:\n%s", err, buf.String())
	}
	if len(doc) != 1 {
		t.Fatalf("len(doc) = %d, want 1 (a one-element sequence)", len(doc))
	}

	record := doc[0]
	for _, key := range []string{"PC", "REG", "CC", "MEM", "STAT"} {
		if _, ok := record[key]; !ok {
			t.Errorf("decoded record missing key %q", key)
		}
	}
	if record["STAT"] != 1 {
		t.Errorf(`record["STAT"] = %v, want 1`, record["STAT"])
	}

	// Field order in the raw bytes should be PC, REG, CC, MEM, STAT.
	text := buf.String()
	order := []string{"PC:", "REG:", "CC:", "MEM:", "STAT:"}
	last := -1
	for _, key := range order {
		idx := bytes.Index([]byte(text), []byte(key))
		if idx < 0 {
			t.Fatalf("output missing field %q:\n%s", key, text)
		}
		if idx < last {
			t.Errorf("field %q appears out of order in:\n%s", key, text)
		}
		last = idx
	}
}
