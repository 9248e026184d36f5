package encoder

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/smarttree/smarttree/internal/scanner"
)

const maxHexTreeTokens = 32

// HexTreeEncoder renders the human+AI readable tree with a learned token
// table (spec §4.8.4), grounded on original_source/src/formatters/hextree.rs.
type HexTreeEncoder struct{}

func NewHexTree() *HexTreeEncoder { return &HexTreeEncoder{} }

func (HexTreeEncoder) Name() string { return "hextree" }

// formatHexSize renders size with k/m/g suffixes for 1024/1048576/1073741824.
func formatHexSize(size int64) string {
	switch {
	case size == 0:
		return "0"
	case size >= 1073741824:
		return fmt.Sprintf("%xg", size/1073741824)
	case size >= 1048576:
		return fmt.Sprintf("%xm", size/1048576)
	case size >= 1024:
		return fmt.Sprintf("%xk", size/1024)
	default:
		return fmt.Sprintf("%x", size)
	}
}

func langMarker(category scanner.Category) string {
	switch category {
	case scanner.CategoryRust:
		return "@"
	case scanner.CategoryPython:
		return "#"
	case scanner.CategoryJavaScript, scanner.CategoryTypeScript:
		return "$"
	case scanner.CategoryMarkdown:
		return "%"
	case scanner.CategoryTOML, scanner.CategoryYAML, scanner.CategoryJSON:
		return "&"
	default:
		return ""
	}
}

// learnHexTreeTokens counts directory names and key basename stems, then
// assigns single-byte ids to the top entries occurring at least twice,
// capped at maxHexTreeTokens (spec §4.8.4).
func learnHexTreeTokens(nodes []*scanner.Node) map[string]byte {
	occ := make(map[string]int)
	stems := []string{"mod", "lib", "main", "index", "test"}
	for _, n := range nodes {
		name := n.Name()
		if n.IsDir() {
			occ[name]++
		}
		for _, stem := range stems {
			if strings.HasPrefix(name, stem) {
				occ[stem+".rs"]++
				occ[stem+".py"]++
				occ[stem+".js"]++
			}
		}
	}

	type kv struct {
		name  string
		count int
	}
	var sorted []kv
	for name, count := range occ {
		sorted = append(sorted, kv{name, count})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].count > sorted[j].count })

	tokens := make(map[string]byte)
	next := byte(0x80)
	for _, e := range sorted {
		if e.count < 2 || next >= 0xFF {
			continue
		}
		tokens[e.name] = next
		next++
		if len(tokens) >= maxHexTreeTokens {
			break
		}
	}
	return tokens
}

func hexTokenize(tokens map[string]byte, name string) string {
	if tok, ok := tokens[name]; ok {
		return fmt.Sprintf("%X", tok)
	}
	return name
}

type dirState struct {
	depth     int
	fileCount int
	totalSize int64
}

func (HexTreeEncoder) Emit(w io.Writer, nodes []*scanner.Node, stats scanner.TreeStats, root string) error {
	tokens := learnHexTreeTokens(nodes)

	fmt.Fprintln(w, "HEXTREE_V1:")
	fmt.Fprintln(w, "KEY: ↓=enter ·=same ↑=exit")
	fmt.Fprintln(w, "EXT: @=rs #=py $=js %=md &=cfg")

	if len(tokens) > 0 {
		type kv struct {
			name string
			id   byte
		}
		var sorted []kv
		for name, id := range tokens {
			sorted = append(sorted, kv{name, id})
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].id < sorted[j].id })

		fmt.Fprint(w, "TOK:")
		for i, e := range sorted {
			if i >= 16 {
				break
			}
			fmt.Fprintf(w, " %X=%s", e.id, e.name)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "ROOT:%s\n", root)
	fmt.Fprintln(w, "---")

	var stack []*dirState
	prevDepth := 0

	for _, n := range nodes {
		depth := n.Depth

		for prevDepth > depth {
			if len(stack) > 0 {
				state := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				indent := strings.Repeat("  ", state.depth)
				fmt.Fprintf(w, "%s↑F%xS%s\n", indent, state.fileCount, formatHexSize(state.totalSize))
			}
			prevDepth--
		}

		indent := strings.Repeat("  ", depth)
		name := hexTokenize(tokens, n.Name())

		if n.IsDir() {
			fmt.Fprintf(w, "%s%s↓\n", indent, name)
			stack = append(stack, &dirState{depth: depth})
			prevDepth = depth + 1
		} else {
			fmt.Fprintf(w, "%s%s%s·%s\n", indent, langMarker(n.Category), name, formatHexSize(n.Size))
			if len(stack) > 0 {
				stack[len(stack)-1].fileCount++
				stack[len(stack)-1].totalSize += n.Size
			}
		}
	}

	for len(stack) > 0 {
		state := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		indent := strings.Repeat("  ", state.depth)
		fmt.Fprintf(w, "%s↑F%xS%s\n", indent, state.fileCount, formatHexSize(state.totalSize))
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "TOTAL:F%xD%xS%s\n", stats.TotalFiles, stats.TotalDirs, formatHexSize(stats.TotalSize))
	return nil
}
