package ignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIgnoreMatcherCoversNodeModules(t *testing.T) {
	m := NewDefaultIgnoreMatcher()
	assert.True(t, m.IsIgnored("node_modules", true))
	assert.True(t, m.IsIgnored("node_modules/lib/y.js", false))
	assert.False(t, m.IsIgnored("src/main.go", false))
}

func TestGitignoreMatcherMissingFileIgnoresNothing(t *testing.T) {
	root := t.TempDir()
	m, err := LoadGitignore(root)
	require.NoError(t, err)
	assert.False(t, m.IsIgnored("anything.txt", false))
}

func TestGitignoreMatcherParsesPatterns(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.log\nbuild/\n"), 0o644))

	m, err := LoadGitignore(root)
	require.NoError(t, err)
	assert.True(t, m.IsIgnored("debug.log", false))
	assert.True(t, m.IsIgnored("build", true))
	assert.False(t, m.IsIgnored("main.go", false))
}

func TestSystemPathMatcher(t *testing.T) {
	m := NewSystemPathMatcher()
	assert.True(t, m.IsIgnoredAbs("/proc"))
	assert.True(t, m.IsIgnoredAbs("/proc/1/status"))
	assert.True(t, m.IsIgnoredAbs("/proc/kcore"))
	assert.False(t, m.IsIgnoredAbs("/home/user/project"))
}

type fakeIgnorer struct{ name string }

func (f fakeIgnorer) IsIgnored(path string, isDir bool) bool { return path == f.name }

// TestPrecedenceFirstMatchWins checks that a match in any chained source
// ignores the path and that a path no source matches is kept. The two fake
// sources never match the same path, so short-circuiting is not observed.
func TestPrecedenceFirstMatchWins(t *testing.T) {
	p := NewPrecedenceIgnorer(fakeIgnorer{name: "a"}, fakeIgnorer{name: "b"})
	assert.True(t, p.IsIgnored("a", false))
	assert.True(t, p.IsIgnored("b", false))
	assert.False(t, p.IsIgnored("c", false))
}

func TestPrecedenceSkipsNilSources(t *testing.T) {
	p := NewPrecedenceIgnorer(nil, fakeIgnorer{name: "a"})
	assert.True(t, p.IsIgnored("a", false))
}
