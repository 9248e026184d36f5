package encoder

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/smarttree/smarttree/internal/scanner"
)

// SummaryAIEncoder renders a compact key-value summary for AI consumption
// (spec §4.8.5), delegating directory-type classification to the Content
// Detector (§4.8.6). Grounded on
// original_source/src/formatters/summary_ai.rs.
type SummaryAIEncoder struct{}

func NewSummaryAI() *SummaryAIEncoder { return &SummaryAIEncoder{} }

func (SummaryAIEncoder) Name() string { return "summary-ai" }

var keyFilesByLanguage = map[string][]string{
	"Rust":       {"Cargo.toml", "main.rs", "lib.rs"},
	"Python":     {"requirements.txt", "setup.py", "main.py", "__init__.py"},
	"JavaScript": {"package.json", "index.js"},
	"TypeScript": {"package.json", "index.ts"},
	"Go":         {"go.mod", "main.go"},
	"Java":       {"pom.xml", "build.gradle", "Main.java"},
}

func (SummaryAIEncoder) Emit(w io.Writer, nodes []*scanner.Node, stats scanner.TreeStats, root string) error {
	content := DetectContent(nodes)

	fmt.Fprintln(w, "SUMMARY_AI_V1:")
	fmt.Fprintf(w, "PATH:%s\n", root)
	fmt.Fprintf(w, "STATS:F%xD%xS%x\n", stats.TotalFiles, stats.TotalDirs, stats.TotalSize)

	switch content.Kind {
	case KindCodeProject:
		fmt.Fprintf(w, "TYPE:CODE[%s]T%dD%d\n", content.Language, boolBit(content.HasTests), boolBit(content.HasDocs))

		var key []string
		wanted := keyFilesByLanguage[content.Language]
		for _, n := range nodes {
			if n.IsDir() {
				continue
			}
			for _, name := range wanted {
				if n.Name() == name {
					key = append(key, name)
				}
			}
		}
		fmt.Fprintf(w, "KEY:%s\n", strings.Join(key, ","))
		fmt.Fprintf(w, "EXT:%s\n", extCountsLine(content.ExtCounts, 10))

	case KindPhotoCollection:
		fmt.Fprintf(w, "TYPE:PHOTO[%d]\n", content.ImageCount)
	case KindDocumentArchive:
		fmt.Fprintf(w, "TYPE:DOCS[%d]\n", content.DocCount)
	case KindMediaLibrary:
		fmt.Fprintf(w, "TYPE:MEDIA[V%d,A%d]\n", content.VideoCount, content.AudioCount)
	case KindDataScience:
		fmt.Fprintf(w, "TYPE:DATA[N%d,D%d]\n", content.Notebooks, content.Datasets)
	default:
		fmt.Fprintf(w, "TYPE:MIXED[%d]", content.TotalFiles)
		if content.Dominant != "" {
			fmt.Fprintf(w, "DOM[%s]", content.Dominant)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "TOP:%s\n", extCountsLine(content.ExtCounts, 5))
	}

	fmt.Fprintf(w, "DIRS:%s\n", topDirsLine(nodes, root))
	fmt.Fprintf(w, "LARGE:%s\n", largestFilesLine(nodes, 5))
	fmt.Fprintln(w, "END_SUMMARY_AI")
	return nil
}

func boolBit(b bool) int {
	if b {
		return 1
	}
	return 0
}

func extCountsLine(counts map[string]int, limit int) string {
	type kv struct {
		ext   string
		count int
	}
	var sorted []kv
	for ext, count := range counts {
		sorted = append(sorted, kv{ext, count})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].count > sorted[j].count })

	var parts []string
	for i, e := range sorted {
		if i >= limit {
			break
		}
		parts = append(parts, fmt.Sprintf("%s:%d", e.ext, e.count))
	}
	return strings.Join(parts, ",")
}

func topDirsLine(nodes []*scanner.Node, root string) string {
	type agg struct {
		count int
		size  int64
	}
	dirs := make(map[string]*agg)
	for _, n := range nodes {
		if len(n.Path) < 2 {
			continue
		}
		top := n.Path[1]
		a, ok := dirs[top]
		if !ok {
			a = &agg{}
			dirs[top] = a
		}
		a.count++
		if !n.IsDir() {
			a.size += n.Size
		}
	}

	type kv struct {
		name string
		a    *agg
	}
	var sorted []kv
	for name, a := range dirs {
		sorted = append(sorted, kv{name, a})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].a.size > sorted[j].a.size })

	var parts []string
	for i, e := range sorted {
		if i >= 10 {
			break
		}
		parts = append(parts, fmt.Sprintf("%s[%d,%x]", e.name, e.a.count, e.a.size))
	}
	return strings.Join(parts, ",")
}

func largestFilesLine(nodes []*scanner.Node, limit int) string {
	var files []*scanner.Node
	for _, n := range nodes {
		if !n.IsDir() {
			files = append(files, n)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Size > files[j].Size })

	var parts []string
	for i, f := range files {
		if i >= limit {
			break
		}
		parts = append(parts, fmt.Sprintf("%s:%x", f.Name(), f.Size))
	}
	return strings.Join(parts, ",")
}
