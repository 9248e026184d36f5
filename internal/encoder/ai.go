package encoder

import (
	"bytes"
	"fmt"
	"io"

	"github.com/smarttree/smarttree/internal/scanner"
)

// AIEncoder wraps the Hex-Tree body plus a structural hash and stats line in
// a delimited block meant for a human-or-AI reader that wants both a tree
// view and a verification hash in one shot (spec §4.8.9).
type AIEncoder struct {
	tree *HexTreeEncoder
}

func NewAI() *AIEncoder { return &AIEncoder{tree: NewHexTree()} }

func (AIEncoder) Name() string { return "ai" }

func (e AIEncoder) Emit(w io.Writer, nodes []*scanner.Node, stats scanner.TreeStats, root string) error {
	fmt.Fprintln(w, "TREE_HEX_V1:")

	var body bytes.Buffer
	if err := e.tree.Emit(&body, nodes, stats, root); err != nil {
		return err
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}

	fmt.Fprintf(w, "HASH: %s\n", treeHash(nodes))
	fmt.Fprintln(w, "STATS:")
	fmt.Fprintf(w, "F:%x D:%x S:%x\n", stats.TotalFiles, stats.TotalDirs, stats.TotalSize)
	fmt.Fprintln(w, "END_AI")
	return nil
}
