package encoder

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/smarttree/smarttree/internal/scanner"
)

// AIJSONEncoder re-emits the AI format's tree-plus-stats block as a single
// JSON document (spec §4.8.9). Grounded on
// original_source/src/formatters/ai_json.rs's field shape, built directly
// from nodes/stats rather than by re-parsing AIEncoder's text output — the
// original's line-by-line parser exists only because Rust's formatter
// traits don't let one formatter call another's internals directly.
type AIJSONEncoder struct{}

func NewAIJSON() *AIJSONEncoder { return &AIJSONEncoder{} }

func (AIJSONEncoder) Name() string { return "ai-json" }

type aiJSONFileType struct {
	Extension string `json:"extension"`
	Count     int64  `json:"count"`
}

type aiJSONLargeFile struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type aiJSONStatistics struct {
	Files        int64             `json:"files"`
	Directories  int64             `json:"directories"`
	TotalSize    int64             `json:"totalSize"`
	TotalSizeMB  string            `json:"totalSizeMb"`
	FileTypes    []aiJSONFileType  `json:"fileTypes,omitempty"`
	LargestFiles []aiJSONLargeFile `json:"largestFiles,omitempty"`
}

type aiJSONDoc struct {
	Version    string           `json:"version"`
	Hash       string           `json:"hash"`
	HexTree    []string         `json:"hexTree"`
	Statistics aiJSONStatistics `json:"statistics"`
}

func (AIJSONEncoder) Emit(w io.Writer, nodes []*scanner.Node, stats scanner.TreeStats, root string) error {
	var tree HexTreeEncoder
	var buf writerBuffer
	if err := tree.Emit(&buf, nodes, stats, root); err != nil {
		return err
	}

	var fileTypes []aiJSONFileType
	type kv struct {
		ext   string
		count int64
	}
	var sorted []kv
	for ext, count := range stats.FileTypeHistogram {
		sorted = append(sorted, kv{ext, count})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].count > sorted[j].count })
	for _, e := range sorted {
		fileTypes = append(fileTypes, aiJSONFileType{Extension: e.ext, Count: e.count})
	}

	var largest []aiJSONLargeFile
	for _, t := range stats.TopBySize {
		largest = append(largest, aiJSONLargeFile{Name: baseName(t.Path), Size: t.Size})
	}

	doc := aiJSONDoc{
		Version: "AI_JSON_V1",
		Hash:    treeHash(nodes),
		HexTree: buf.lines(),
		Statistics: aiJSONStatistics{
			Files:        stats.TotalFiles,
			Directories:  stats.TotalDirs,
			TotalSize:    stats.TotalSize,
			TotalSizeMB:  megabytes(stats.TotalSize),
			FileTypes:    fileTypes,
			LargestFiles: largest,
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
