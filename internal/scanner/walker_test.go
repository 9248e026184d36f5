package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

// TestEmptyDirectory matches scenario S1: a single empty directory yields
// exactly one directory node at depth 0 and stats F:0 D:1 S:0.
func TestEmptyDirectory(t *testing.T) {
	root := t.TempDir()

	result, err := Walk(context.Background(), Config{Root: root})
	require.NoError(t, err)

	require.Len(t, result.Nodes, 1)
	assert.True(t, result.Nodes[0].IsDir())
	assert.Equal(t, 0, result.Nodes[0].Depth)
	assert.EqualValues(t, 0, result.Stats.TotalFiles)
	assert.EqualValues(t, 1, result.Stats.TotalDirs)
	assert.EqualValues(t, 0, result.Stats.TotalSize)
}

// TestTwoFilesPreOrder matches scenario S2: pre-order emission is exactly
// [root, a.rs, b.py] and categories are derived from extension.
func TestTwoFilesPreOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.rs", "0123456789")
	writeFile(t, root, "b.py", "01234567890123456789")

	result, err := Walk(context.Background(), Config{Root: root})
	require.NoError(t, err)

	require.Len(t, result.Nodes, 3)
	assert.Equal(t, filepath.Base(root), result.Nodes[0].Name())
	assert.Equal(t, "a.rs", result.Nodes[1].Name())
	assert.Equal(t, "b.py", result.Nodes[2].Name())
	assert.Equal(t, CategoryRust, result.Nodes[1].Category)
	assert.Equal(t, CategoryPython, result.Nodes[2].Category)
	assert.EqualValues(t, 10, result.Nodes[1].Size)
	assert.EqualValues(t, 20, result.Nodes[2].Size)
}

// TestPreOrderInvariant checks invariant 1 from spec §8: any deeper node's
// path begins with its shallower neighbour's path.
func TestPreOrderInvariant(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/b/c.toml", "x = 1\n")
	writeFile(t, root, "a/b/c.txt", "hi\n")
	writeFile(t, root, "x/y.rs", "fn main() {}\n")

	result, err := Walk(context.Background(), Config{Root: root})
	require.NoError(t, err)

	for i := 1; i < len(result.Nodes); i++ {
		prev, cur := result.Nodes[i-1], result.Nodes[i]
		if cur.Depth > prev.Depth {
			require.GreaterOrEqual(t, len(cur.Path), len(prev.Path))
			for j, seg := range prev.Path {
				assert.Equal(t, seg, cur.Path[j])
			}
		}
	}
}

// TestHiddenEntriesSkippedByDefault checks that dotfiles are left out of the
// stream unless ShowHidden is set.
func TestHiddenEntriesSkippedByDefault(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".hidden", "secret\n")
	writeFile(t, root, "visible.txt", "hi\n")

	result, err := Walk(context.Background(), Config{Root: root})
	require.NoError(t, err)

	require.Len(t, result.Nodes, 2)
	assert.Equal(t, "visible.txt", result.Nodes[1].Name())
}

func TestShowHiddenIncludesDotfiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".hidden", "secret\n")

	result, err := Walk(context.Background(), Config{Root: root, ShowHidden: true})
	require.NoError(t, err)

	require.Len(t, result.Nodes, 2)
	assert.True(t, result.Nodes[1].IsHidden)
}

func TestMaxDepthStopsDescent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/b/c.txt", "x\n")

	result, err := Walk(context.Background(), Config{Root: root, MaxDepth: 1})
	require.NoError(t, err)

	for _, n := range result.Nodes {
		assert.LessOrEqual(t, n.Depth, 1)
	}
	require.Len(t, result.Nodes, 2) // root, a
}

type stubIgnorer struct{ ignored map[string]bool }

func (s stubIgnorer) IsIgnored(relPath string, isDir bool) bool { return s.ignored[relPath] }

func TestIgnoredSubtreePruned(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/x.rs", "fn main() {}\n")
	writeFile(t, root, "node_modules/lib/y.js", "module.exports = {}\n")

	ignorer := stubIgnorer{ignored: map[string]bool{"node_modules": true}}

	result, err := Walk(context.Background(), Config{Root: root, Ignorer: ignorer})
	require.NoError(t, err)

	var names []string
	for _, n := range result.Nodes {
		names = append(names, n.Name())
	}
	assert.ElementsMatch(t, []string{filepath.Base(root), "src", "x.rs"}, names)
}

func TestIgnoredSubtreeShownWhenRequested(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/x.rs", "fn main() {}\n")
	writeFile(t, root, "node_modules/lib/y.js", "module.exports = {}\n")

	ignorer := stubIgnorer{ignored: map[string]bool{"node_modules": true}}

	result, err := Walk(context.Background(), Config{Root: root, Ignorer: ignorer, ShowIgnored: true})
	require.NoError(t, err)

	var names []string
	for _, n := range result.Nodes {
		names = append(names, n.Name())
	}
	assert.ElementsMatch(t, []string{filepath.Base(root), "src", "x.rs", "node_modules"}, names)
	for _, n := range result.Nodes {
		if n.Name() == "node_modules" {
			assert.True(t, n.IsIgnored)
		}
	}
}

func TestContentSearchCollectsOffsets(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "first line\nneedle here\nlast line\n")

	result, err := Walk(context.Background(), Config{Root: root, SearchKeyword: "needle"})
	require.NoError(t, err)

	var found bool
	for _, n := range result.Nodes {
		if n.Name() == "a.txt" {
			found = true
			require.Len(t, n.SearchMatches, 1)
		}
	}
	assert.True(t, found)
}
