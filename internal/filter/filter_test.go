package filter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarttree/smarttree/internal/apperr"
	"github.com/smarttree/smarttree/internal/scanner"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

// TestAncestorClosure matches scenario S5: a fileTypeFilter of "toml" keeps
// the file and every ancestor directory, dropping unrelated subtrees.
func TestAncestorClosure(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/b/c.toml", "x = 1\n")
	writeFile(t, root, "a/b/c.txt", "hi\n")
	writeFile(t, root, "x/y.rs", "fn main() {}\n")

	cfg := scanner.Config{Root: root, FileTypeFilter: "toml"}
	result, err := scanner.Walk(context.Background(), cfg)
	require.NoError(t, err)

	p, err := Compile(cfg)
	require.NoError(t, err)
	require.True(t, p.Active())

	out, stats := Apply(result.Nodes, p)

	var names []string
	for _, n := range out {
		names = append(names, n.Name())
	}
	assert.Equal(t, []string{filepath.Base(root), "a", "b", "c.toml"}, names)
	assert.EqualValues(t, 1, stats.TotalFiles)
	assert.EqualValues(t, 3, stats.TotalDirs)
}

func TestInactivePassesThrough(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "hi\n")

	cfg := scanner.Config{Root: root}
	result, err := scanner.Walk(context.Background(), cfg)
	require.NoError(t, err)

	p, err := Compile(cfg)
	require.NoError(t, err)
	require.False(t, p.Active())

	out, _ := Apply(result.Nodes, p)
	assert.Len(t, out, len(result.Nodes))
}

func TestFindPatternRegex(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main.go", "package main\n")
	writeFile(t, root, "docs/guide.md", "# Guide\n")

	cfg := scanner.Config{Root: root, FindPattern: `\.go$`}
	result, err := scanner.Walk(context.Background(), cfg)
	require.NoError(t, err)

	p, err := Compile(cfg)
	require.NoError(t, err)

	out, _ := Apply(result.Nodes, p)
	var names []string
	for _, n := range out {
		names = append(names, n.Name())
	}
	assert.Contains(t, names, "main.go")
	assert.NotContains(t, names, "guide.md")
	assert.NotContains(t, names, "docs")
}

func TestInvalidRegexIsInvalidInput(t *testing.T) {
	cfg := scanner.Config{Root: "/tmp", FindPattern: "("}
	_, err := Compile(cfg)
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
}
