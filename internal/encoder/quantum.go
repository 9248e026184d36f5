package encoder

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/smarttree/smarttree/internal/scanner"
)

// Header bits (spec §4.8.1), grounded on original_source's quantum.rs.
const (
	bitSize       = 0b00000001
	bitPerms      = 0b00000010
	bitTime       = 0b00000100
	bitOwner      = 0b00001000
	bitDir        = 0b00010000
	bitSymlink    = 0b00100000
	bitXattr      = 0b01000000
	bitSummary    = 0b10000000
)

// Traversal markers (ASCII control codes), spec §4.8.1.
const (
	traverseSame   byte = 0x0B
	traverseDeeper byte = 0x0E
	traverseBack   byte = 0x0F
)

const (
	defaultParentPerms = 0o755
	defaultParentUID   = 1000
	defaultParentGID   = 1000
)

// baseTokens is the fixed low-range token dictionary (spec §4.8.1).
var baseTokens = map[string]byte{
	"node_modules": 0x80,
	".git":         0x81,
	"src":          0x82,
	"target":       0x83,
	"dist":         0x84,
	".js":          0x90,
	".rs":          0x91,
	".json":        0x92,
	".md":          0x93,
	"index":        0x94,
	"README":       0x95,
}

// QuantumEncoder implements the Quantum binary format (spec §4.8.1).
type QuantumEncoder struct{}

func NewQuantum() *QuantumEncoder { return &QuantumEncoder{} }

func (QuantumEncoder) Name() string { return "quantum" }

type quantumState struct {
	parentPerms uint16
	tokens      map[string]byte
	nextToken   byte
}

func newQuantumState() *quantumState {
	return &quantumState{
		parentPerms: defaultParentPerms,
		tokens:      baseTokens,
		nextToken:   0xA0,
	}
}

func encodeSize(size int64) []byte {
	switch {
	case size <= 0xFF:
		return []byte{0x00, byte(size)}
	case size <= 0xFFFF:
		b := make([]byte, 3)
		b[0] = 0x01
		binary.LittleEndian.PutUint16(b[1:], uint16(size))
		return b
	case size <= 0xFFFFFFFF:
		b := make([]byte, 5)
		b[0] = 0x02
		binary.LittleEndian.PutUint32(b[1:], uint32(size))
		return b
	default:
		b := make([]byte, 9)
		b[0] = 0x03
		binary.LittleEndian.PutUint64(b[1:], uint64(size))
		return b
	}
}

func (s *quantumState) permsDelta(perms uint16) []byte {
	perms12 := perms & 0o777
	if perms12 == s.parentPerms {
		return nil
	}
	delta := perms12 ^ s.parentPerms
	return []byte{byte(delta >> 8), byte(delta)}
}

// tokenizeName applies the priority order from spec §4.8.1: exact name,
// extension after last '.', long (>3) prefix, else raw UTF-8.
func (s *quantumState) tokenizeName(name string) []byte {
	if tok, ok := s.tokens[name]; ok {
		return []byte{tok}
	}
	if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
		ext := name[dot:]
		if tok, ok := s.tokens[ext]; ok {
			out := []byte(name[:dot])
			return append(out, tok)
		}
	}
	for pattern, tok := range s.tokens {
		if len(pattern) > 3 && strings.HasPrefix(name, pattern) {
			out := []byte{tok}
			return append(out, []byte(name[len(pattern):])...)
		}
	}
	return []byte(name)
}

func (s *quantumState) encodeEntry(n *scanner.Node) []byte {
	var header byte
	var data []byte

	header |= bitSize
	data = append(data, encodeSize(n.Size)...)

	perms12 := n.Permissions & 0o777
	if perms12 != s.parentPerms {
		header |= bitPerms
		data = append(data, s.permsDelta(n.Permissions)...)
	}

	if n.IsDir() {
		header |= bitDir
		s.parentPerms = perms12
	}
	if n.IsSymlink {
		header |= bitSymlink
	}

	result := append([]byte{header}, data...)
	result = append(result, s.tokenizeName(n.Name())...)
	result = append(result, 0x00)
	return result
}

func (QuantumEncoder) Emit(w io.Writer, nodes []*scanner.Node, stats scanner.TreeStats, root string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "MEM8_QUANTUM_V1:")
	fmt.Fprintln(bw, "KEY:HSSSSS...")
	fmt.Fprintln(bw, "TOKENS:80=node_modules,81=.git,82=src,90=.js,91=.rs")
	fmt.Fprintln(bw, "---BEGIN_DATA---")

	state := newQuantumState()
	depth := 0
	for i, n := range nodes {
		if depth > n.Depth {
			for j := 0; j < depth-n.Depth; j++ {
				bw.WriteByte(traverseBack)
			}
			depth = n.Depth
		}

		bw.Write(state.encodeEntry(n))

		descending := n.IsDir() && i+1 < len(nodes) && nodes[i+1].Depth > n.Depth
		isLast := i+1 >= len(nodes) || nodes[i+1].Depth < n.Depth

		switch {
		case descending:
			bw.WriteByte(traverseDeeper)
			depth = n.Depth + 1
		case isLast && n.Depth > 0:
			bw.WriteByte(traverseBack)
			depth = n.Depth - 1
		default:
			bw.WriteByte(traverseSame)
		}
	}
	for depth > 0 {
		bw.WriteByte(traverseBack)
		depth--
	}

	fmt.Fprintln(bw)
	fmt.Fprintln(bw, "---END_DATA---")
	return bw.Flush()
}

// quantumMarkers are the begin/end delimiters other encoders (Quantum-Safe,
// Claude) locate to extract the binary body.
const (
	quantumBeginMarker = "---BEGIN_DATA---\n"
	quantumEndMarker   = "\n---END_DATA---"
)

// splitQuantum separates a rendered Quantum buffer into its header text and
// raw binary body.
func splitQuantum(buf []byte) (header string, body []byte) {
	startIdx := indexOf(buf, quantumBeginMarker)
	if startIdx < 0 {
		return string(buf), nil
	}
	bodyStart := startIdx + len(quantumBeginMarker)
	endIdx := indexOf(string(buf[bodyStart:]), quantumEndMarker)
	if endIdx < 0 {
		return string(buf[:startIdx]), buf[bodyStart:]
	}
	return string(buf[:startIdx]), buf[bodyStart : bodyStart+endIdx]
}

func indexOf(s any, sub string) int {
	switch v := s.(type) {
	case string:
		return strings.Index(v, sub)
	case []byte:
		return strings.Index(string(v), sub)
	default:
		return -1
	}
}
