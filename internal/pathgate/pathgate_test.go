package pathgate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarttree/smarttree/internal/apperr"
)

func TestAllowAcceptsDescendantOfRoot(t *testing.T) {
	root := t.TempDir()
	g := New(root)

	assert.True(t, g.Allow(root))
	assert.True(t, g.Allow(filepath.Join(root, "a", "b.txt")))
}

func TestAllowRejectsOutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	g := New(root)

	assert.False(t, g.Allow(outside))
}

func TestAllowRejectsSiblingWithSharedPrefix(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "ab")
	sibling := filepath.Join(parent, "abc")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.MkdirAll(sibling, 0o755))

	g := New(root)
	assert.True(t, g.Allow(root))
	assert.False(t, g.Allow(sibling))
}

func TestCheckReturnsPermissionDeniedKind(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	g := New(root)

	err := g.Check(outside)
	require.Error(t, err)
	assert.Equal(t, apperr.PermissionDenied, apperr.KindOf(err))
}

func TestDenyMarkerRejectsEverything(t *testing.T) {
	root := t.TempDir()
	g := New(root, denyMarker)

	assert.False(t, g.Allow(root))
}

func TestEmptyAllowListRejectsEverything(t *testing.T) {
	g := &Gate{}
	assert.False(t, g.Allow(t.TempDir()))
}

func TestNewAugmentsFromEnvironmentVariable(t *testing.T) {
	root := t.TempDir()
	t.Setenv(EnvVar, root)

	g := New()
	assert.True(t, g.Allow(filepath.Join(root, "x")))
}

func TestNewSplitsMultipleEnvironmentRoots(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	t.Setenv(EnvVar, rootA+":"+rootB)

	g := New()
	assert.True(t, g.Allow(rootA))
	assert.True(t, g.Allow(rootB))
}

func TestDefaultAllowsCurrentWorkingDirectory(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	g := Default()
	assert.True(t, g.Allow(cwd))
}

func TestRootsReturnsResolvedAllowList(t *testing.T) {
	root := t.TempDir()
	g := New(root)
	assert.Contains(t, g.Roots(), filepath.Clean(root))
}
