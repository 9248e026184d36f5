package encoder

import (
	"strings"

	"github.com/smarttree/smarttree/internal/scanner"
)

// DirectoryKind classifies the dominant content of a scanned tree (spec
// §4.8.6), grounded on original_source/src/content_detector.rs's
// DirectoryType enum. Framework detection (React/Django/etc.) is a
// documented placeholder in original_source itself — it never reads
// dependency manifests — so it is dropped here rather than faked.
type DirectoryKind int

const (
	KindCodeProject DirectoryKind = iota
	KindPhotoCollection
	KindDocumentArchive
	KindMediaLibrary
	KindDataScience
	KindMixed
)

// DetectedContent is the Content Detector's verdict plus the counts Summary-
// AI needs to render its TYPE: line.
type DetectedContent struct {
	Kind        DirectoryKind
	Language    string
	HasTests    bool
	HasDocs     bool
	ImageCount  int
	DocCount    int
	VideoCount  int
	AudioCount  int
	Notebooks   int
	Datasets    int
	Dominant    string
	ExtCounts   map[string]int
	TotalFiles  int
}

var codeExtensions = []string{"rs", "py", "js", "ts", "go", "java", "cpp", "c", "rb", "php"}
var projectMarkers = map[string]bool{
	"Cargo.toml": true, "package.json": true, "requirements.txt": true,
	"go.mod": true, "pom.xml": true, "Gemfile": true,
}
var imageExtensions = []string{"jpg", "jpeg", "png", "gif", "bmp", "raw", "dng", "heic"}
var docExtensions = []string{"pdf", "doc", "docx", "txt", "odt", "rtf"}
var videoExtensions = []string{"mp4", "mkv", "avi", "mov", "webm"}
var audioExtensions = []string{"mp3", "wav", "flac", "ogg", "m4a"}
var notebookExtensions = []string{"ipynb"}
var datasetExtensions = []string{"csv", "parquet"}

func sumExt(counts map[string]int, exts []string) int {
	total := 0
	for _, ext := range exts {
		total += counts[ext]
	}
	return total
}

// DetectContent applies the ordered heuristics from spec §4.8.6: code
// project, photo collection, document archive, media library, data science,
// else mixed with dominant extension.
func DetectContent(nodes []*scanner.Node) DetectedContent {
	counts := make(map[string]int)
	total := 0
	for _, n := range nodes {
		if n.IsDir() {
			continue
		}
		total++
		if ext := extOf(n.Name()); ext != "" {
			counts[strings.ToLower(ext)]++
		}
	}

	codeFiles := sumExt(counts, codeExtensions)
	hasProjectFile := false
	for _, n := range nodes {
		if projectMarkers[n.Name()] {
			hasProjectFile = true
			break
		}
	}
	if codeFiles > 5 || hasProjectFile {
		return analyzeCodeProject(nodes, counts, total)
	}

	if sumExt(counts, imageExtensions) > 10 {
		return DetectedContent{Kind: KindPhotoCollection, ImageCount: sumExt(counts, imageExtensions), ExtCounts: counts, TotalFiles: total}
	}
	if sumExt(counts, docExtensions) > 10 {
		return DetectedContent{Kind: KindDocumentArchive, DocCount: sumExt(counts, docExtensions), ExtCounts: counts, TotalFiles: total}
	}
	if sumExt(counts, videoExtensions)+sumExt(counts, audioExtensions) > 10 {
		return DetectedContent{
			Kind: KindMediaLibrary, VideoCount: sumExt(counts, videoExtensions),
			AudioCount: sumExt(counts, audioExtensions), ExtCounts: counts, TotalFiles: total,
		}
	}
	if counts["ipynb"] > 0 || sumExt(counts, datasetExtensions) > 5 {
		return DetectedContent{
			Kind: KindDataScience, Notebooks: counts["ipynb"],
			Datasets: sumExt(counts, datasetExtensions), ExtCounts: counts, TotalFiles: total,
		}
	}

	return DetectedContent{Kind: KindMixed, Dominant: dominantExt(counts), ExtCounts: counts, TotalFiles: total}
}

func analyzeCodeProject(nodes []*scanner.Node, counts map[string]int, total int) DetectedContent {
	language := "Unknown"
	switch {
	case counts["rs"] > 0:
		language = "Rust"
	case counts["py"] > 0:
		language = "Python"
	case counts["ts"] > 0:
		language = "TypeScript"
	case counts["js"] > 0:
		language = "JavaScript"
	case counts["go"] > 0:
		language = "Go"
	case counts["java"] > 0:
		language = "Java"
	case counts["cpp"] > 0, counts["cc"] > 0:
		language = "Cpp"
	case counts["rb"] > 0:
		language = "Ruby"
	}

	hasTests, hasDocs := false, false
	for _, n := range nodes {
		joined := n.JoinedPath()
		if strings.Contains(joined, "test") || strings.Contains(joined, "spec") {
			hasTests = true
		}
		if strings.HasSuffix(n.Name(), ".md") || strings.Contains(joined, "docs/") {
			hasDocs = true
		}
	}

	return DetectedContent{
		Kind: KindCodeProject, Language: language, HasTests: hasTests, HasDocs: hasDocs,
		ExtCounts: counts, TotalFiles: total,
	}
}

func dominantExt(counts map[string]int) string {
	best, bestCount := "", 0
	for ext, count := range counts {
		if count > bestCount {
			best, bestCount = ext, count
		}
	}
	return best
}

func extOf(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return ""
	}
	return name[idx+1:]
}
