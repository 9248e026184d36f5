package encoder

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"

	"github.com/smarttree/smarttree/internal/scanner"
)

// ClaudeEncoder wraps a Quantum buffer as a single JSON object for direct
// API transmission (spec §4.8.3).
type ClaudeEncoder struct {
	inner *QuantumEncoder
}

func NewClaude() *ClaudeEncoder { return &ClaudeEncoder{inner: NewQuantum()} }

func (ClaudeEncoder) Name() string { return "claude" }

type claudeStats struct {
	TotalFiles int64 `json:"totalFiles"`
	TotalDirs  int64 `json:"totalDirs"`
	TotalSize  int64 `json:"totalSize"`
}

type claudeDoc struct {
	Format      string      `json:"format"`
	APIVersion  string      `json:"apiVersion"`
	RootPath    string      `json:"rootPath"`
	Header      string      `json:"header"`
	DataBase64  string      `json:"dataBase64"`
	DataSize    int         `json:"dataSize"`
	Statistics  claudeStats `json:"statistics"`
	UsageHints  []string    `json:"usageHints"`
}

func (e ClaudeEncoder) Emit(w io.Writer, nodes []*scanner.Node, stats scanner.TreeStats, root string) error {
	var buf bytes.Buffer
	if err := e.inner.Emit(&buf, nodes, stats, root); err != nil {
		return err
	}
	header, body := splitQuantum(buf.Bytes())

	doc := claudeDoc{
		Format:     "smart-tree-quantum-v1",
		APIVersion: "1.0",
		RootPath:   root,
		Header:     header,
		DataBase64: base64.StdEncoding.EncodeToString(body),
		DataSize:   len(body),
		Statistics: claudeStats{TotalFiles: stats.TotalFiles, TotalDirs: stats.TotalDirs, TotalSize: stats.TotalSize},
		UsageHints: []string{
			"The dataBase64 field contains the binary quantum format encoded in base64",
			"Use the header information to understand token mappings",
			"ASCII codes: 0x0E=enter dir, 0x0F=exit dir, 0x0B=same level",
			"Permission deltas are XOR differences from parent (e.g. 0x0049 = 0o755^0o644)",
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
