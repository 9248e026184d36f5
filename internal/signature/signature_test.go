package signature

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarttree/smarttree/internal/scanner"
)

func TestLoadMissingSnapshotIsNilNotError(t *testing.T) {
	dir := t.TempDir()
	snap, err := Load(dir)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	snap := &Snapshot{
		Root: "/project",
		Signatures: map[string]scanner.FileSignature{
			"R/a.go": {Path: "R/a.go", Size: 42, Permissions: 0o644},
		},
	}
	require.NoError(t, Save(dir, snap))

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "/project", loaded.Root)
	assert.Equal(t, int64(42), loaded.Signatures["R/a.go"].Size)
}

func TestStateDirIsStablePerRoot(t *testing.T) {
	a := StateDir("/state", "/project/one")
	b := StateDir("/state", "/project/one")
	c := StateDir("/state", "/project/two")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Equal(t, "/state", filepath.Dir(a))
}

func TestClassifyAddedWhenNoPrior(t *testing.T) {
	n := &scanner.Node{Path: []string{"R", "new.go"}}
	status := Classify(n, map[string]scanner.FileSignature{})
	assert.Equal(t, scanner.ChangeAdded, status)
}

func TestClassifyPermissionChanged(t *testing.T) {
	n := &scanner.Node{Path: []string{"R", "a.go"}, Permissions: 0o755}
	prior := map[string]scanner.FileSignature{"R/a.go": {Permissions: 0o644}}
	assert.Equal(t, scanner.ChangePermissionChanged, Classify(n, prior))
}

func TestClassifyModifiedOnSizeChange(t *testing.T) {
	now := time.Now()
	n := &scanner.Node{Path: []string{"R", "a.go"}, Size: 200, Modified: now, Permissions: 0o644}
	prior := map[string]scanner.FileSignature{"R/a.go": {Size: 100, Mtime: now, Permissions: 0o644}}
	assert.Equal(t, scanner.ChangeModified, Classify(n, prior))
}

func TestClassifyUnchangedReturnsEmpty(t *testing.T) {
	now := time.Now()
	n := &scanner.Node{Path: []string{"R", "a.go"}, Size: 100, Modified: now, Permissions: 0o644}
	prior := map[string]scanner.FileSignature{"R/a.go": {Size: 100, Mtime: now, Permissions: 0o644}}
	assert.Equal(t, scanner.ChangeStatus(""), Classify(n, prior))
}

func TestDeletedReconstructsMissingPaths(t *testing.T) {
	current := []*scanner.Node{{Path: []string{"R", "a.go"}}}
	prior := map[string]scanner.FileSignature{
		"R/a.go": {Size: 1},
		"R/b.go": {Size: 2, Permissions: 0o644},
	}

	deleted := Deleted(current, prior)
	require.Len(t, deleted, 1)
	assert.Equal(t, []string{"R", "b.go"}, deleted[0].Path)
	assert.Equal(t, scanner.ChangeDeleted, deleted[0].ChangeStatus)
}

func TestBuildSnapshotSkipsDirectories(t *testing.T) {
	nodes := []*scanner.Node{
		{Path: []string{"R"}, Kind: scanner.KindDirectory},
		{Path: []string{"R", "a.go"}, Kind: scanner.KindRegular, Size: 10},
	}
	snap := BuildSnapshot("/project", nodes)
	assert.Len(t, snap.Signatures, 1)
	assert.Contains(t, snap.Signatures, "R/a.go")
}
