package encoder

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/smarttree/smarttree/internal/scanner"
)

// SemanticQuantumEncoder emits one compact `path:definitions;` entry per
// code file, all on one body line: a language marker whenever the language
// changes, the file's relative path (not tokenised), and a comma-separated
// list of definitions extracted by a language-keyed regex pass (spec §4.8.7). Grounded on
// original_source/src/formatters/quantum_semantic_v2.rs's QS2 header and
// language-marker table; the actual per-definition regex extraction
// (rather than the original's simulated placeholder tokens) follows the
// element/importance legend spec §4.8.7 documents.
type SemanticQuantumEncoder struct{}

func NewSemanticQuantum() *SemanticQuantumEncoder { return &SemanticQuantumEncoder{} }

func (SemanticQuantumEncoder) Name() string { return "semantic-quantum" }

type semanticRule struct {
	re   *regexp.Regexp
	code string
}

var semanticRulesByExt = map[string][]semanticRule{
	"rs": {
		{regexp.MustCompile(`(?m)^\s*(pub\s+)?fn\s+(\w+)`), "F"},
		{regexp.MustCompile(`(?m)^\s*(pub\s+)?struct\s+(\w+)`), "S"},
		{regexp.MustCompile(`(?m)^\s*(pub\s+)?trait\s+(\w+)`), "T"},
		{regexp.MustCompile(`(?m)^\s*impl\b`), "I"},
	},
	"py": {
		{regexp.MustCompile(`(?m)^\s*def\s+(\w+)`), "D"},
		{regexp.MustCompile(`(?m)^\s*class\s+(\w+)`), "C"},
	},
	"js": {{regexp.MustCompile(`(?m)^\s*(export\s+)?function\s+(\w+)`), "F"}},
	"ts": {{regexp.MustCompile(`(?m)^\s*(export\s+)?function\s+(\w+)`), "F"}},
}

func semanticLang(ext string) byte {
	switch ext {
	case "rs":
		return '@'
	case "py":
		return '#'
	case "js":
		return '$'
	case "ts":
		return '%'
	default:
		return 0
	}
}

// importance returns the suffix weight spec §4.8.7 assigns: 1.0 for main,
// 0.9 for public definitions, 0.3 for test code, else no suffix.
func importance(match string, publicish bool) string {
	lower := strings.ToLower(match)
	switch {
	case strings.Contains(lower, "main"):
		return "[1.0]"
	case strings.Contains(lower, "test"):
		return "[0.3]"
	case publicish:
		return "[0.9]"
	default:
		return ""
	}
}

func extractSemanticTokens(ext string, content []byte) []string {
	rules, ok := semanticRulesByExt[ext]
	if !ok {
		return nil
	}
	text := string(content)
	var tokens []string
	for _, rule := range rules {
		matches := rule.re.FindAllStringSubmatch(text, -1)
		for _, m := range matches {
			public := strings.Contains(m[0], "pub ") || strings.Contains(m[0], "export ")
			tokens = append(tokens, rule.code+importance(m[0], public))
		}
	}
	return tokens
}

func (SemanticQuantumEncoder) Emit(w io.Writer, nodes []*scanner.Node, stats scanner.TreeStats, root string) error {
	fmt.Fprintf(w, "QUANTUM_SEMANTIC_V2:%x,%x,%x;\n", stats.TotalFiles, stats.TotalDirs, stats.TotalSize)

	var lastLang byte
	for _, n := range nodes {
		if n.IsDir() {
			continue
		}
		ext := extOf(n.Name())
		lang := semanticLang(ext)
		if lang == 0 {
			continue
		}

		content, err := os.ReadFile(filepath.Join(root, filepath.Join(n.Path[1:]...)))
		if err != nil {
			continue
		}
		tokens := extractSemanticTokens(ext, content)
		if len(tokens) == 0 {
			continue
		}

		if lang != lastLang {
			fmt.Fprintf(w, "%c", lang)
			lastLang = lang
		}
		rel := strings.Join(n.Path[1:], "/")
		fmt.Fprintf(w, "%s:%s;", rel, strings.Join(tokens, ","))
	}

	fmt.Fprintln(w, "END_QS")
	return nil
}
