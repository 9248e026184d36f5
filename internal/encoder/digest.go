package encoder

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/smarttree/smarttree/internal/scanner"
)

// DigestEncoder renders a single-line structural hash plus a top-5 extension
// summary (spec §4.8.8), grounded on
// original_source/src/formatters/digest.rs's calculate_tree_hash.
type DigestEncoder struct{}

func NewDigest() *DigestEncoder { return &DigestEncoder{} }

func (DigestEncoder) Name() string { return "digest" }

// treeHash hashes depth, name, is-dir flag, size, and permissions of every
// node in stream order, returning the first 8 bytes hex-encoded.
func treeHash(nodes []*scanner.Node) string {
	h := sha256.New()
	var depthBuf, sizeBuf [8]byte
	var permBuf [2]byte
	for _, n := range nodes {
		binary.LittleEndian.PutUint64(depthBuf[:], uint64(n.Depth))
		h.Write(depthBuf[:])
		h.Write([]byte(n.Name()))
		if n.IsDir() {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
		binary.LittleEndian.PutUint64(sizeBuf[:], uint64(n.Size))
		h.Write(sizeBuf[:])
		binary.LittleEndian.PutUint16(permBuf[:], n.Permissions)
		h.Write(permBuf[:])
	}
	sum := h.Sum(nil)
	return fmt.Sprintf("%x", sum[:8])
}

func (DigestEncoder) Emit(w io.Writer, nodes []*scanner.Node, stats scanner.TreeStats, root string) error {
	fmt.Fprintf(w, "HASH: %s F:%x D:%x S:%x",
		treeHash(nodes), stats.TotalFiles, stats.TotalDirs, stats.TotalSize)

	if len(stats.FileTypeHistogram) > 0 {
		type kv struct {
			ext   string
			count int64
		}
		var sorted []kv
		for ext, count := range stats.FileTypeHistogram {
			sorted = append(sorted, kv{ext, count})
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].count > sorted[j].count })

		fmt.Fprint(w, " TYPES:")
		for i, e := range sorted {
			if i >= 5 {
				break
			}
			fmt.Fprintf(w, " %s:%d", e.ext, e.count)
		}
	}

	fmt.Fprintln(w)
	return nil
}
