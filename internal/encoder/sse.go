package encoder

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/smarttree/smarttree/internal/scanner"
)

// SSEEncoder emits one `data: <json>\n\n` frame per node with an
// incrementing `id:` field (spec §4.8.9), grounded on
// original_source/src/formatters/sse.rs. A streaming session's id counter
// lives on the encoder instance so Start/EmitNode/End share one sequence;
// callers should use a fresh SSEEncoder per concurrent stream.
type SSEEncoder struct {
	nextID uint64
}

func NewSSE() *SSEEncoder { return &SSEEncoder{} }

func (*SSEEncoder) Name() string { return "sse" }

type sseWriter struct {
	w  io.Writer
	id uint64
}

func (s *sseWriter) event(eventType string, data any) error {
	s.id++
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.id, eventType, payload); err != nil {
		return err
	}
	return nil
}

func nodeEventPayload(n *scanner.Node) map[string]any {
	return map[string]any{
		"name":  n.Name(),
		"path":  n.JoinedPath(),
		"isDir": n.IsDir(),
		"size":  n.Size,
		"depth": n.Depth,
	}
}

func (e *SSEEncoder) Emit(w io.Writer, nodes []*scanner.Node, stats scanner.TreeStats, root string) error {
	sw := &sseWriter{w: w}

	if err := sw.event("scan", map[string]any{
		"type": "scan_complete",
		"path": root,
		"stats": map[string]any{
			"totalFiles": stats.TotalFiles,
			"totalDirs":  stats.TotalDirs,
			"totalSize":  stats.TotalSize,
		},
	}); err != nil {
		return err
	}

	for _, n := range nodes {
		if err := sw.event("node", map[string]any{"type": "node", "node": nodeEventPayload(n)}); err != nil {
			return err
		}
	}

	return sw.event("complete", map[string]any{"type": "format_complete", "nodeCount": len(nodes)})
}

func (e *SSEEncoder) Start(w io.Writer, root string) error {
	sw := &sseWriter{w: w, id: e.nextID}
	defer func() { e.nextID = sw.id }()
	return sw.event("init", map[string]any{"type": "stream_start", "path": root})
}

func (e *SSEEncoder) EmitNode(w io.Writer, n *scanner.Node, root string) error {
	sw := &sseWriter{w: w, id: e.nextID}
	defer func() { e.nextID = sw.id }()
	payload := nodeEventPayload(n)
	payload["permissions"] = fmt.Sprintf("%o", n.Permissions)
	return sw.event("node", map[string]any{"type": "node_discovered", "node": payload})
}

func (e *SSEEncoder) End(w io.Writer, stats scanner.TreeStats, root string) error {
	sw := &sseWriter{w: w, id: e.nextID}
	defer func() { e.nextID = sw.id }()
	if err := sw.event("complete", map[string]any{
		"type": "stream_complete",
		"path": root,
		"stats": map[string]any{
			"totalFiles": stats.TotalFiles,
			"totalDirs":  stats.TotalDirs,
			"totalSize":  stats.TotalSize,
		},
	}); err != nil {
		return err
	}
	return sw.event("close", map[string]any{"type": "stream_close", "reason": "scan_complete"})
}
