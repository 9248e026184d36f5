package toolserver

import (
	"bytes"
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/smarttree/smarttree/internal/apperr"
	"github.com/smarttree/smarttree/internal/encoder"
	"github.com/smarttree/smarttree/internal/scanner"
)

// handleWatch services the SSE watch handler group (spec §4.8.9, §4.9): it
// arms an fsnotify watcher over path and its subdirectories for a bounded
// window, writing each observed event as a plain "event: <op> path: <name>"
// line between the SSE encoder's Start and End frames, and returns the
// accumulated text as one block — there is no
// open transport back to an MCP caller to push frames onto as they occur.
// Recursive directory registration is grounded on blueman82-conductor's
// FileWatcher.addRecursive.
func (s *Server) handleWatch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args watchArgs
	if err := decodeArgs(req.Params.Arguments, &args); err != nil {
		return errorResponse(err)
	}
	if err := s.pipeline.gate.Check(args.Path); err != nil {
		return errorResponse(err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errorResponse(apperr.Wrap(apperr.IOError, err, "starting filesystem watcher"))
	}
	defer watcher.Close()

	if err := addRecursive(watcher, args.Path); err != nil {
		return errorResponse(apperr.Wrap(apperr.IOError, err, "watching %s", args.Path))
	}

	var buf bytes.Buffer
	sse := encoder.NewSSE()
	if err := sse.Start(&buf, args.Path); err != nil {
		return errorResponse(apperr.Wrap(apperr.IOError, err, "starting SSE stream"))
	}

	deadline := time.NewTimer(time.Duration(args.durationOrDefault()) * time.Second)
	defer deadline.Stop()

	count := 0
	maxEvents := args.maxEventsOrDefault()
loop:
	for count < maxEvents {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				break loop
			}
			if err := writeWatchEvent(&buf, ev); err != nil {
				return errorResponse(apperr.Wrap(apperr.IOError, err, "encoding watch event"))
			}
			count++
		case <-watcher.Errors:
			continue
		case <-deadline.C:
			break loop
		case <-ctx.Done():
			break loop
		}
	}

	if err := sse.End(&buf, scanner.TreeStats{TotalFiles: int64(count)}, args.Path); err != nil {
		return errorResponse(apperr.Wrap(apperr.IOError, err, "closing SSE stream"))
	}

	return textResponse(s.recommendNext(buf.String()))
}

func writeWatchEvent(buf *bytes.Buffer, ev fsnotify.Event) error {
	op := "modified"
	switch {
	case ev.Op&fsnotify.Create != 0:
		op = "created"
	case ev.Op&fsnotify.Remove != 0:
		op = "removed"
	case ev.Op&fsnotify.Rename != 0:
		op = "renamed"
	case ev.Op&fsnotify.Write != 0:
		op = "written"
	case ev.Op&fsnotify.Chmod != 0:
		op = "permissions_changed"
	}
	_, err := buf.WriteString("event: " + op + " path: " + ev.Name + "\n")
	return err
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
