package y86

import (
	"io"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// WriteFinalState writes fs to w as a YAML document, via a yaml.v3
// Encoder with a two-space indent; the encoder is closed before
// returning.
func WriteFinalState(w io.Writer, fs FinalState) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fs); err != nil {
		return err
	}
	return enc.Close()
}

// FinalState is the structured final-state record: PC, all fifteen
// registers, the three condition-code bits, every non-zero 8-byte-
// aligned memory block, and the terminal status code.
type FinalState struct {
	PC   uint64
	REG  map[string]int64
	CC   ConditionCodes
	MEM  map[uint64]int64
	STAT int
}

// BuildFinalState derives the structured output record from a Snapshot.
//
// Register values are rendered as signed 64-bit two's-complement
// integers uniformly, regardless of which instruction last wrote them,
// so irmovq-loaded values and OPq results share one consistent sign
// convention.
func BuildFinalState(s Snapshot) FinalState {
	reg := make(map[string]int64, len(regNames))
	for i, name := range regNames {
		reg[name] = int64(s.Regs[i])
	}

	mem := make(map[uint64]int64)
	blocks := make(map[uint64]uint64)
	for addr, b := range s.Mem {
		base := addr - (addr % 8)
		offset := addr % 8
		blocks[base] |= uint64(b) << (8 * offset)
	}
	for base, v := range blocks {
		mem[base] = int64(v)
	}

	return FinalState{
		PC:   s.PC,
		REG:  reg,
		CC:   s.CC,
		MEM:  mem,
		STAT: s.Status.statCode(),
	}
}

// MarshalYAML renders the final state as a one-element YAML sequence:
// fields in PC/REG/CC/MEM/STAT order, registers in their canonical
// rax..r14 order, MEM keys in ascending address order, and every
// integer as a plain decimal scalar. A hand-built yaml.Node tree is
// used instead of a bare yaml.Marshal(fs) because Go map iteration
// order is randomized and this output's field and key order must be
// stable across runs. No anchors or aliases are ever produced, since
// every node in the tree is built fresh from scratch.
func (fs FinalState) MarshalYAML() (any, error) {
	doc := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	doc.Content = []*yaml.Node{fs.recordNode()}
	return doc, nil
}

func (fs FinalState) recordNode() *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	n.Content = append(n.Content,
		strNode("PC"), uintNode(fs.PC),
		strNode("REG"), fs.regNode(),
		strNode("CC"), fs.ccNode(),
		strNode("MEM"), fs.memNode(),
		strNode("STAT"), intNode(int64(fs.STAT)),
	)
	return n
}

func (fs FinalState) regNode() *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range regNames {
		n.Content = append(n.Content, strNode(name), intNode(fs.REG[name]))
	}
	return n
}

func (fs FinalState) ccNode() *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	n.Content = append(n.Content,
		strNode("ZF"), boolIntNode(fs.CC.ZF()),
		strNode("SF"), boolIntNode(fs.CC.SF()),
		strNode("OF"), boolIntNode(fs.CC.OF()),
	)
	return n
}

func (fs FinalState) memNode() *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	addrs := make([]uint64, 0, len(fs.MEM))
	for addr := range fs.MEM {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	for _, addr := range addrs {
		n.Content = append(n.Content, uintNode(addr), intNode(fs.MEM[addr]))
	}
	return n
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func intNode(v int64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v, 10)}
}

func uintNode(v uint64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatUint(v, 10)}
}

func boolIntNode(b bool) *yaml.Node {
	if b {
		return intNode(1)
	}
	return intNode(0)
}
