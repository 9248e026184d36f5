// Package signature implements the Signature Store: a per-root JSON
// snapshot of the previous scan's file metadata, used to classify changes
// between scans (spec §4.7). Persistence follows
// blueman82-conductor/internal/filelock's lock-then-write-temp-then-rename
// idiom; the field shape and change classification follow spec §4.7 since
// no original_source module persists cross-run state.
package signature

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/smarttree/smarttree/internal/apperr"
	"github.com/smarttree/smarttree/internal/scanner"
	"github.com/smarttree/smarttree/internal/smlog"
)

var logger = smlog.For("signature")

// fileName is the snapshot's on-disk name within a root's state directory.
const fileName = "signatures.json"

// StateDir returns the directory a root's signature snapshot lives under,
// namespaced per scan root so two roots never collide.
func StateDir(stateRoot, scanRoot string) string {
	sum := sha256.Sum256([]byte(scanRoot))
	return filepath.Join(stateRoot, hex.EncodeToString(sum[:])[:16])
}

// Snapshot is the persisted form of one scan's signatures, keyed by joined
// node path.
type Snapshot struct {
	Root       string                            `json:"root"`
	Signatures map[string]scanner.FileSignature `json:"signatures"`
}

// Load reads a prior snapshot for dir, returning (nil, nil) if none exists
// yet — a fresh root has no prior state and that is not an error.
func Load(dir string) (*Snapshot, error) {
	path := filepath.Join(dir, fileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.IOError, err, "reading signature snapshot %s", path)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, apperr.Wrap(apperr.IOError, err, "parsing signature snapshot %s", path)
	}
	return &snap, nil
}

// Save atomically persists snap to dir, holding an flock-based lock for the
// duration of the write so two concurrent scans of the same root never
// interleave writes.
func Save(dir string, snap *Snapshot) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.Wrap(apperr.IOError, err, "creating signature state dir %s", dir)
	}

	lockPath := filepath.Join(dir, fileName+".lock")
	lock := flock.New(lockPath)
	if err := lock.Lock(); err != nil {
		return apperr.Wrap(apperr.IOError, err, "acquiring signature lock %s", lockPath)
	}
	defer lock.Unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return apperr.Wrap(apperr.IOError, err, "encoding signature snapshot")
	}

	path := filepath.Join(dir, fileName)
	tmp, err := os.CreateTemp(dir, ".signatures-*.tmp")
	if err != nil {
		return apperr.Wrap(apperr.IOError, err, "creating temp signature file in %s", dir)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return apperr.Wrap(apperr.IOError, err, "writing temp signature file")
	}
	if err := tmp.Sync(); err != nil {
		return apperr.Wrap(apperr.IOError, err, "syncing temp signature file")
	}
	if err := tmp.Close(); err != nil {
		return apperr.Wrap(apperr.IOError, err, "closing temp signature file")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return apperr.Wrap(apperr.IOError, err, "renaming temp signature file to %s", path)
	}
	tmp = nil

	logger.Debug("signature snapshot saved", "path", path, "entries", len(snap.Signatures))
	return nil
}

// FromNode builds a FileSignature from a scanned node, optionally hashing
// its content (the caller supplies an open reader so the store never
// re-reads a file on its own).
func FromNode(n *scanner.Node, content io.Reader) scanner.FileSignature {
	sig := scanner.FileSignature{
		Path:        n.JoinedPath(),
		Size:        n.Size,
		Mtime:       n.Modified,
		Permissions: n.Permissions,
	}
	if content != nil {
		h := sha256.New()
		if _, err := io.Copy(h, content); err == nil {
			sig.ContentHash = hex.EncodeToString(h.Sum(nil))
		}
	}
	return sig
}

// Classify compares node against the prior snapshot (keyed by joined path)
// and returns the change status to attach, and whether any change was
// detected at all (spec §4.7):
//   - no prior entry → Added
//   - prior entry, permissions differ → PermissionChanged
//   - prior entry, permissions same but size/mtime/hash differ → Modified
//   - prior entry, everything equal → "" (unchanged, no factor)
func Classify(node *scanner.Node, prior map[string]scanner.FileSignature) scanner.ChangeStatus {
	prev, ok := prior[node.JoinedPath()]
	if !ok {
		return scanner.ChangeAdded
	}
	if prev.Permissions != node.Permissions {
		return scanner.ChangePermissionChanged
	}
	if prev.Size != node.Size || !prev.Mtime.Equal(node.Modified) ||
		(prev.ContentHash != "" && node.ContentHash != "" && prev.ContentHash != node.ContentHash) {
		return scanner.ChangeModified
	}
	return ""
}

// Deleted returns a synthetic node for every prior-snapshot path absent from
// the current node set, marked ChangeDeleted — scanner.Walk only emits
// nodes for paths that still exist, so deletions must be reconstructed from
// the snapshot by whoever compares the two (§4.7, scenario S4).
func Deleted(current []*scanner.Node, prior map[string]scanner.FileSignature) []*scanner.Node {
	seen := make(map[string]bool, len(current))
	for _, n := range current {
		seen[n.JoinedPath()] = true
	}

	var deleted []*scanner.Node
	for path, sig := range prior {
		if seen[path] {
			continue
		}
		deleted = append(deleted, &scanner.Node{
			Path:         splitPath(path),
			Size:         sig.Size,
			Modified:     sig.Mtime,
			Permissions:  sig.Permissions,
			ChangeStatus: scanner.ChangeDeleted,
		})
	}
	return deleted
}

func splitPath(joined string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(joined); i++ {
		if joined[i] == '/' {
			parts = append(parts, joined[start:i])
			start = i + 1
		}
	}
	parts = append(parts, joined[start:])
	return parts
}

// BuildSnapshot builds a fresh Snapshot from a completed scan's nodes, skipping
// directories (only files carry meaningful content hashes/permissions for
// change detection purposes).
func BuildSnapshot(root string, nodes []*scanner.Node) *Snapshot {
	snap := &Snapshot{Root: root, Signatures: make(map[string]scanner.FileSignature, len(nodes))}
	for _, n := range nodes {
		if n.IsDir() {
			continue
		}
		snap.Signatures[n.JoinedPath()] = scanner.FileSignature{
			Path:        n.JoinedPath(),
			Size:        n.Size,
			Mtime:       n.Modified,
			Permissions: n.Permissions,
			ContentHash: n.ContentHash,
		}
	}
	return snap
}
