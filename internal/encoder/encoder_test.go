package encoder

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarttree/smarttree/internal/scanner"
)

func testNodes() ([]*scanner.Node, scanner.TreeStats) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	nodes := []*scanner.Node{
		{Path: []string{"root", "src"}, Depth: 1, Kind: scanner.KindDirectory, Modified: now},
		{Path: []string{"root", "src", "main.go"}, Depth: 2, Kind: scanner.KindRegular, Category: scanner.CategoryGo, Size: 512, Modified: now},
		{Path: []string{"root", "README.md"}, Depth: 1, Kind: scanner.KindRegular, Category: scanner.CategoryMarkdown, Size: 1024, Modified: now.Add(-48 * time.Hour)},
	}
	var stats scanner.TreeStats
	for _, n := range nodes {
		stats.Update(n)
	}
	return nodes, stats
}

func TestRegistryHasAllThirteenFormats(t *testing.T) {
	reg := NewRegistry()
	names := reg.Names()
	assert.Len(t, names, 13)
	for _, want := range []string{
		"quantum", "quantum-safe", "claude", "hextree", "summary-ai",
		"semantic-quantum", "digest", "ai", "ai-json", "relations",
		"context", "sse", "markqant",
	} {
		_, err := reg.Get(want)
		assert.NoError(t, err, "expected %s to be registered", want)
	}
}

func TestRegistryGetUnknownFormat(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("nonexistent")
	assert.Error(t, err)
}

func TestQuantumEmitHasFramingMarkers(t *testing.T) {
	nodes, stats := testNodes()
	var buf bytes.Buffer
	require.NoError(t, NewQuantum().Emit(&buf, nodes, stats, "root"))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "MEM8_QUANTUM_V1:\n"))
	assert.Contains(t, out, "---BEGIN_DATA---")
	assert.Contains(t, out, "---END_DATA---")
}

func TestQuantumRoundTripsPathSizePermsAndIsDir(t *testing.T) {
	now := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	nodes := []*scanner.Node{
		{Path: []string{"root", "src"}, Depth: 1, Kind: scanner.KindDirectory, Permissions: 0o755, Modified: now},
		{Path: []string{"root", "src", "main.go"}, Depth: 2, Kind: scanner.KindRegular, Size: 512, Permissions: 0o644, Modified: now},
		{Path: []string{"root", "README.md"}, Depth: 1, Kind: scanner.KindRegular, Size: 1024, Permissions: 0o644, Modified: now},
	}
	var stats scanner.TreeStats
	for _, n := range nodes {
		stats.Update(n)
	}

	var buf bytes.Buffer
	require.NoError(t, NewQuantum().Emit(&buf, nodes, stats, "root"))

	decoded := DecodeQuantum(buf.Bytes())
	require.Len(t, decoded, len(nodes))

	for i, n := range nodes {
		want := strings.Join(n.Path[1:], "/")
		got := strings.Join(decoded[i].Path, "/")
		assert.Equal(t, want, got, "path mismatch for node %d", i)
		assert.Equal(t, n.Size, decoded[i].Size, "size mismatch for %s", want)
		assert.Equal(t, n.Permissions&0o777, decoded[i].Permissions, "permissions mismatch for %s", want)
		assert.Equal(t, n.IsDir(), decoded[i].IsDir, "isDir mismatch for %s", want)
	}
}

func TestQuantumRoundTripsTokenizedNames(t *testing.T) {
	nodes := []*scanner.Node{
		{Path: []string{"root", "node_modules"}, Depth: 1, Kind: scanner.KindDirectory, Permissions: 0o755},
		{Path: []string{"root", "node_modules", "index.js"}, Depth: 2, Kind: scanner.KindRegular, Size: 42, Permissions: 0o644},
	}
	var stats scanner.TreeStats
	for _, n := range nodes {
		stats.Update(n)
	}

	var buf bytes.Buffer
	require.NoError(t, NewQuantum().Emit(&buf, nodes, stats, "root"))

	decoded := DecodeQuantum(buf.Bytes())
	require.Len(t, decoded, len(nodes))
	assert.Equal(t, []string{"node_modules"}, decoded[0].Path)
	assert.Equal(t, []string{"node_modules", "index.js"}, decoded[1].Path)
	assert.True(t, decoded[0].IsDir)
	assert.False(t, decoded[1].IsDir)
	assert.Equal(t, int64(42), decoded[1].Size)
}

func TestQuantumSafeWrapsBase64Body(t *testing.T) {
	nodes, stats := testNodes()
	var buf bytes.Buffer
	require.NoError(t, NewQuantumSafe().Emit(&buf, nodes, stats, "root"))

	out := buf.String()
	assert.Contains(t, out, "---BEGIN_DATA_BASE64---")
	assert.Contains(t, out, "---END_DATA_BASE64---")
	assert.Contains(t, out, "ENCODING: base64")
	assert.Contains(t, out, "COMPRESSION_RATIO:")
}

func TestClaudeEmitsValidJSONWithQuantumPayload(t *testing.T) {
	nodes, stats := testNodes()
	var buf bytes.Buffer
	require.NoError(t, NewClaude().Emit(&buf, nodes, stats, "root"))

	var doc claudeDoc
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "smart-tree-quantum-v1", doc.Format)
	assert.NotEmpty(t, doc.DataBase64)
	assert.Equal(t, stats.TotalFiles, doc.Statistics.TotalFiles)
}

func TestHexTreeLearnsRepeatedTokens(t *testing.T) {
	nodes := []*scanner.Node{
		{Path: []string{"root", "a", "mod.rs"}, Depth: 2, Kind: scanner.KindRegular},
		{Path: []string{"root", "b", "mod.rs"}, Depth: 2, Kind: scanner.KindRegular},
		{Path: []string{"root", "c", "mod.rs"}, Depth: 2, Kind: scanner.KindRegular},
	}
	tokens := learnHexTreeTokens(nodes)
	assert.Contains(t, tokens, "mod.rs")
}

func TestHexTreeFormatSizeSuffixes(t *testing.T) {
	assert.Equal(t, "0", formatHexSize(0))
	assert.Equal(t, "2k", formatHexSize(2048))
	assert.Equal(t, "2m", formatHexSize(2*1048576))
}

func TestDigestHashIsDeterministic(t *testing.T) {
	nodes, _ := testNodes()
	first := treeHash(nodes)
	second := treeHash(nodes)
	assert.Equal(t, first, second)
	assert.Len(t, first, 16)
}

func TestDigestHashChangesWithContent(t *testing.T) {
	nodes, _ := testNodes()
	before := treeHash(nodes)
	nodes[1].Size = 99999
	after := treeHash(nodes)
	assert.NotEqual(t, before, after)
}

func TestSummaryAIDispatchesByDetectedKind(t *testing.T) {
	nodes, stats := testNodes()
	var buf bytes.Buffer
	require.NoError(t, NewSummaryAI().Emit(&buf, nodes, stats, "root"))
	assert.Contains(t, buf.String(), "SUMMARY_AI_V1:")
	assert.Contains(t, buf.String(), "TYPE:")
}

func TestContentDetectorClassifiesPhotoCollection(t *testing.T) {
	var nodes []*scanner.Node
	for i := 0; i < 12; i++ {
		nodes = append(nodes, &scanner.Node{Path: []string{"root", "p.jpg"}, Kind: scanner.KindRegular})
	}
	detected := DetectContent(nodes)
	assert.Equal(t, KindPhotoCollection, detected.Kind)
}

func TestContentDetectorClassifiesCodeProject(t *testing.T) {
	nodes := []*scanner.Node{
		{Path: []string{"root", "go.mod"}, Kind: scanner.KindRegular},
		{Path: []string{"root", "main.go"}, Kind: scanner.KindRegular},
	}
	detected := DetectContent(nodes)
	assert.Equal(t, KindCodeProject, detected.Kind)
	assert.Equal(t, "Go", detected.Language)
}

func TestSSEStreamingIDsIncrementAcrossCalls(t *testing.T) {
	sse := NewSSE()
	var start, node1, end bytes.Buffer

	require.NoError(t, sse.Start(&start, "root"))
	require.NoError(t, sse.EmitNode(&node1, &scanner.Node{Path: []string{"root", "a.go"}}, "root"))
	require.NoError(t, sse.End(&end, scanner.TreeStats{}, "root"))

	assert.Contains(t, start.String(), "id: 1\n")
	assert.Contains(t, node1.String(), "id: 2\n")
	assert.Contains(t, end.String(), "id: 3\n")
	assert.Contains(t, end.String(), "id: 4\n")
}

func TestAIJSONMatchesAIStructurally(t *testing.T) {
	nodes, stats := testNodes()

	var aiBuf bytes.Buffer
	require.NoError(t, NewAI().Emit(&aiBuf, nodes, stats, "root"))

	var jsonBuf bytes.Buffer
	require.NoError(t, NewAIJSON().Emit(&jsonBuf, nodes, stats, "root"))

	var doc aiJSONDoc
	require.NoError(t, json.Unmarshal(jsonBuf.Bytes(), &doc))
	assert.Contains(t, aiBuf.String(), doc.Hash)
	assert.Equal(t, stats.TotalFiles, doc.Statistics.Files)
	assert.NotEmpty(t, doc.HexTree)
}

func TestMarkqantRoundTripsStaticTokens(t *testing.T) {
	md := "# Title\n\n## Section\n\n- item one\n- item two\n"
	compressed, err := compressMarkdown(md, false, time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(compressed, "MARKQANT_V1 "))
	assert.Contains(t, compressed, "---\n")
}

func TestMarkqantTokenizesRepeatedPhrase(t *testing.T) {
	content := "this is a repeated phrase that appears twice. this is a repeated phrase that appears twice."
	tokens, tokenized := tokenizeMarkqant(content)
	assert.NotEmpty(t, tokens)
	assert.NotEqual(t, content, tokenized)
}

func TestRelationsDetectsImportsAndEmitsBlock(t *testing.T) {
	var buf bytes.Buffer
	nodes, stats := testNodes()
	require.NoError(t, NewRelations().Emit(&buf, nodes, stats, "root"))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "RELATIONS_V1:\n"))
	assert.Contains(t, out, "END_RELATIONS")
}

func TestContextEncoderIncludesProjectAndStructure(t *testing.T) {
	nodes, stats := testNodes()
	var buf bytes.Buffer
	require.NoError(t, NewContext().Emit(&buf, nodes, stats, "/tmp/nonexistent-root"))
	out := buf.String()
	assert.Contains(t, out, "=== Smart Tree Context ===")
	assert.Contains(t, out, "SUMMARY_AI_V1:")
	assert.Contains(t, out, "=== End Context ===")
}
