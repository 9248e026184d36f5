package toolserver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarttree/smarttree/internal/pathgate"
	"github.com/smarttree/smarttree/internal/scanner"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func TestValidateArgsRejectsMissingPath(t *testing.T) {
	err := validateArgs(analyzeArgs{})
	assert.Error(t, err)
}

func TestValidateArgsRejectsUnknownFormat(t *testing.T) {
	err := validateArgs(analyzeArgs{Path: "/tmp", Format: "nonsense"})
	assert.Error(t, err)
}

func TestValidateArgsAcceptsMinimalRequest(t *testing.T) {
	err := validateArgs(analyzeArgs{Path: "/tmp"})
	assert.NoError(t, err)
}

func TestToScanRequestFillsDefaults(t *testing.T) {
	req := analyzeArgs{Path: "/tmp/x"}.toScanRequest()
	assert.Equal(t, 100, req.MaxDepth)
	assert.Equal(t, "hextree", req.Format)
	assert.True(t, req.RespectGitignore)
}

func TestPipelineRunRejectsPathOutsideGate(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	p := newPipeline(pathgate.New(root), t.TempDir())

	_, err := p.run(context.Background(), defaultScanRequest(outside))
	assert.Error(t, err)
}

func TestPipelineRunProducesEncodedOutput(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.rs"), make([]byte, 10))
	p := newPipeline(pathgate.New(root), t.TempDir())

	out, err := p.run(context.Background(), defaultScanRequest(root))
	require.NoError(t, err)
	assert.Contains(t, out, "HEXTREE_V1:")
}

func TestPipelineScoreInterestAttachesScoreAndPersistsState(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.rs"), make([]byte, 10))
	stateRoot := t.TempDir()
	p := newPipeline(pathgate.New(root), stateRoot)

	req := defaultScanRequest(root)
	req.ComputeInterest = true
	req.Format = "summary-ai"
	_, err := p.run(context.Background(), req)
	require.NoError(t, err)

	entries, err := os.ReadDir(stateRoot)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestSuggestToolFindsClosestName(t *testing.T) {
	got := suggestTool("analyz_directory", toolNames)
	assert.Equal(t, "analyze_directory", got)
}

func TestSuggestToolReturnsEmptyForNoise(t *testing.T) {
	got := suggestTool("xyzxyzxyzxyz", toolNames)
	assert.Empty(t, got)
}

func TestNewBuildsServerWithGateFromAllowRoots(t *testing.T) {
	root := t.TempDir()
	s := New([]string{root}, t.TempDir())
	assert.True(t, s.pipeline.gate.Allow(root))
	assert.NotEmpty(t, s.sessionID)
}

func TestRestrictToChangesKeepsOnlyChangedNodesAndAncestors(t *testing.T) {
	nodes := []*scanner.Node{
		{Path: []string{"root"}, Kind: scanner.KindDirectory},
		{Path: []string{"root", "sub"}, Kind: scanner.KindDirectory},
		{Path: []string{"root", "sub", "changed.go"}, Kind: scanner.KindRegular, ChangeStatus: scanner.ChangeModified},
		{Path: []string{"root", "unchanged.go"}, Kind: scanner.KindRegular},
	}
	prior := map[string]scanner.FileSignature{
		"root/sub/changed.go": {Size: 1},
		"root/unchanged.go":   {Size: 2},
	}

	out := restrictToChanges(nodes, prior)

	var paths []string
	for _, n := range out {
		paths = append(paths, n.JoinedPath())
	}
	assert.Contains(t, paths, "root")
	assert.Contains(t, paths, "root/sub")
	assert.Contains(t, paths, "root/sub/changed.go")
	assert.NotContains(t, paths, "root/unchanged.go")
}

func TestRestrictToChangesAppendsDeletedNodes(t *testing.T) {
	nodes := []*scanner.Node{
		{Path: []string{"root"}, Kind: scanner.KindDirectory},
	}
	prior := map[string]scanner.FileSignature{
		"root/gone.go": {Size: 5},
	}

	out := restrictToChanges(nodes, prior)

	var found bool
	for _, n := range out {
		if n.JoinedPath() == "root/gone.go" {
			found = true
			assert.Equal(t, scanner.ChangeDeleted, n.ChangeStatus)
		}
	}
	assert.True(t, found, "expected a synthetic Deleted node for root/gone.go")
}

func TestFilterMinInterestDropsLowScoringFiles(t *testing.T) {
	low := scanner.InterestScore{Score: 0.1}
	high := scanner.InterestScore{Score: 0.9}
	nodes := []*scanner.Node{
		{Path: []string{"root"}, Kind: scanner.KindDirectory},
		{Path: []string{"root", "boring.txt"}, Kind: scanner.KindRegular, Interest: &low},
		{Path: []string{"root", "notable.go"}, Kind: scanner.KindRegular, Interest: &high},
	}

	out := filterMinInterest(nodes, 0.5)

	var paths []string
	for _, n := range out {
		paths = append(paths, n.JoinedPath())
	}
	assert.Contains(t, paths, "root")
	assert.Contains(t, paths, "root/notable.go")
	assert.NotContains(t, paths, "root/boring.txt")
}

func TestUnderSystemTempDirDetectsTempAndDescendants(t *testing.T) {
	tmp := t.TempDir()
	assert.True(t, underSystemTempDir(tmp))
	assert.False(t, underSystemTempDir("/etc"))
}

func TestPipelineRunChangesOnlyOmitsUnchangedAndIncludesDeleted(t *testing.T) {
	root := t.TempDir()
	stateRoot := t.TempDir()
	writeFile(t, filepath.Join(root, "stable.go"), make([]byte, 4))
	writeFile(t, filepath.Join(root, "gone.go"), make([]byte, 4))
	p := newPipeline(pathgate.New(root), stateRoot)

	priming := defaultScanRequest(root)
	priming.ComputeInterest = true
	priming.Format = "sse"
	_, err := p.run(context.Background(), priming)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "gone.go")))
	writeFile(t, filepath.Join(root, "changed.go"), make([]byte, 100))

	req := defaultScanRequest(root)
	req.ComputeInterest = true
	req.ChangesOnly = true
	req.Format = "sse"
	out, err := p.run(context.Background(), req)
	require.NoError(t, err)

	assert.Contains(t, out, "changed.go")
	assert.Contains(t, out, "gone.go")
	assert.NotContains(t, out, "stable.go")
}
