// Package pathgate implements the Path Gate (spec §4.1): the single
// sandboxing check every Tool Server handler must call at its boundary
// before touching the filesystem. Grounded on the teacher's
// discovery.SymlinkResolver (path resolution without trusting the raw
// string) and config.DiscoverRepoConfig (filepath.Abs + filepath.EvalSymlinks
// idiom), generalized from loop-detection into allow-list containment.
package pathgate

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/smarttree/smarttree/internal/apperr"
)

// denyMarker is the literal allow-list entry that rejects every path,
// regardless of what else is on the list (spec §4.1: "any allowed root is
// the literal process-wide deny marker").
const denyMarker = "__SMARTTREE_DENY_ALL__"

// EnvVar is the optional environment variable that augments the allow-list
// (spec §6.4).
const EnvVar = "SMART_TREE_ALLOW"

// Gate resolves a candidate path against a fixed set of allowed roots. A
// Gate has no mutable state after construction and performs no I/O beyond
// path resolution, so Allow is safe for concurrent use.
type Gate struct {
	roots []string
	deny  bool
}

// New builds a Gate from an explicit allow-list (already-absolute or
// relative roots), in addition to the process environment's SMART_TREE_ALLOW
// entries. Each root is cleaned to an absolute path; a root that cannot be
// made absolute is skipped rather than making the whole Gate unusable.
func New(roots ...string) *Gate {
	all := append([]string{}, roots...)
	if env := os.Getenv(EnvVar); env != "" {
		all = append(all, strings.Split(env, ":")...)
	}

	g := &Gate{}
	for _, r := range all {
		if r == denyMarker {
			g.deny = true
			continue
		}
		abs, err := filepath.Abs(r)
		if err != nil {
			continue
		}
		g.roots = append(g.roots, filepath.Clean(abs))
	}
	return g
}

// Default builds a Gate allowing only the current working directory and its
// descendants (spec §6.4's default allow-list), plus any SMART_TREE_ALLOW
// augmentation.
func Default() *Gate {
	cwd, err := os.Getwd()
	if err != nil {
		return New()
	}
	return New(cwd)
}

// Allow reports whether path resolves to a location the gate permits. The
// path is resolved to an absolute form WITHOUT following symlinks — the
// spec requires rejecting escape via a symlink even when the caller later
// asks to follow symlinks during the scan itself, so Allow must judge the
// link's own location, not its target.
func (g *Gate) Allow(path string) bool {
	return g.Check(path) == nil
}

// Check is Allow's error-returning form, used by callers that want the
// PermissionDenied detail for an RPC error object.
func (g *Gate) Check(path string) error {
	if g.deny {
		return apperr.New(apperr.PermissionDenied, "path gate: deny marker active")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return apperr.Wrap(apperr.PermissionDenied, err, "resolving path %s", path)
	}
	abs = filepath.Clean(abs)

	if len(g.roots) == 0 {
		return apperr.New(apperr.PermissionDenied, "path gate: no allowed roots configured")
	}

	for _, root := range g.roots {
		if isDescendant(root, abs) {
			return nil
		}
	}
	return apperr.New(apperr.PermissionDenied, "path %s is outside the allow-list", abs)
}

// isDescendant reports whether candidate is root itself or a path nested
// under it, compared component-wise so that a root of "/tmp/ab" does not
// wrongly admit "/tmp/abc".
func isDescendant(root, candidate string) bool {
	if root == candidate {
		return true
	}
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Roots returns the gate's resolved allow-list, for diagnostics and
// server-info RPC responses.
func (g *Gate) Roots() []string {
	return append([]string{}, g.roots...)
}
