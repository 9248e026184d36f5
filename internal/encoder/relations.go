package encoder

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/smarttree/smarttree/internal/scanner"
)

// RelationsEncoder layers a regex-based import extractor over the file list
// (spec §4.8.9), grounded on original_source/src/relations.rs's
// per-language parser tables (RustParser/PythonParser) and its
// detect_coupling/detect_test_relationships passes. It records imports,
// coupling and tested-by edges only; calls and type usages are not
// extracted. Edges are kept as a flat slice of path pairs rather than a
// pointer graph; there is no per-endpoint index.
type RelationsEncoder struct{}

func NewRelations() *RelationsEncoder { return &RelationsEncoder{} }

func (RelationsEncoder) Name() string { return "relations" }

type relationKind string

const (
	relImports  relationKind = "imports"
	relTestedBy relationKind = "tested_by"
	relCoupled  relationKind = "coupled"
)

type fileRelation struct {
	Source   string
	Target   string
	Kind     relationKind
	Items    []string
	Strength int
}

type importParser struct {
	re        *regexp.Regexp
	moduleIdx int
	itemsIdx  int
}

var relationImportParsers = map[string]importParser{
	"rs": {regexp.MustCompile(`use\s+(?:crate::)?([a-zA-Z0-9_:]+)(?:::\{([^}]+)\})?`), 1, 2},
	"py": {regexp.MustCompile(`(?:from\s+([a-zA-Z0-9_.]+)\s+import|import\s+([a-zA-Z0-9_.]+))`), 0, -1},
	"go": {regexp.MustCompile(`"([a-zA-Z0-9_./\-]+)"`), 1, -1},
	"js": {regexp.MustCompile(`(?:import\s+.*?from\s+|require\()\s*['"]([^'"]+)['"]`), 1, -1},
	"ts": {regexp.MustCompile(`(?:import\s+.*?from\s+|require\()\s*['"]([^'"]+)['"]`), 1, -1},
}

func extractImports(ext string, content []byte) []string {
	parser, ok := relationImportParsers[ext]
	if !ok {
		return nil
	}
	var modules []string
	for _, m := range parser.re.FindAllStringSubmatch(string(content), -1) {
		var module string
		if ext == "py" {
			if m[1] != "" {
				module = m[1]
			} else {
				module = m[2]
			}
		} else {
			module = m[parser.moduleIdx]
		}
		if module != "" {
			modules = append(modules, module)
		}
	}
	return modules
}

// resolveImport maps a bare module name to a sibling source file in the same
// directory — a deliberately simplified stand-in for the original's
// file-cache lookup, since Relations works off the already-scanned node list
// rather than re-walking the filesystem.
func resolveImport(files []*scanner.Node, fromDir string, module string, ext string) string {
	base := filepath.Base(strings.ReplaceAll(module, ".", "/"))
	for _, n := range files {
		rel := strings.Join(n.Path[1:], "/")
		if filepath.Dir(rel) != fromDir {
			continue
		}
		stem := strings.TrimSuffix(n.Name(), filepath.Ext(n.Name()))
		if stem == base {
			return rel
		}
	}
	return ""
}

func testBaseName(stem string) string {
	s := strings.ReplaceAll(stem, "_test", "")
	s = strings.ReplaceAll(s, "test_", "")
	return s
}

func analyzeRelations(nodes []*scanner.Node, root string) []fileRelation {
	var files []*scanner.Node
	for _, n := range nodes {
		if !n.IsDir() {
			if _, ok := relationImportParsers[extOf(n.Name())]; ok {
				files = append(files, n)
			}
		}
	}

	var relations []fileRelation
	for _, n := range files {
		ext := extOf(n.Name())
		rel := strings.Join(n.Path[1:], "/")
		content, err := os.ReadFile(filepath.Join(root, filepath.Join(n.Path[1:]...)))
		if err != nil {
			continue
		}
		for _, module := range extractImports(ext, content) {
			target := resolveImport(files, filepath.Dir(rel), module, ext)
			if target == "" || target == rel {
				continue
			}
			relations = append(relations, fileRelation{Source: rel, Target: target, Kind: relImports, Strength: 8})
		}
	}

	relations = append(relations, detectCoupling(relations)...)
	relations = append(relations, detectTestedBy(files)...)
	return relations
}

func detectCoupling(relations []fileRelation) []fileRelation {
	type pair struct{ a, b string }
	counts := map[pair]int{}
	for _, r := range relations {
		if r.Kind != relImports {
			continue
		}
		a, b := r.Source, r.Target
		if a > b {
			a, b = b, a
		}
		counts[pair{a, b}]++
	}
	var coupled []fileRelation
	var keys []pair
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].a != keys[j].a {
			return keys[i].a < keys[j].a
		}
		return keys[i].b < keys[j].b
	})
	for _, k := range keys {
		count := counts[k]
		if count >= 2 {
			strength := count
			if strength > 10 {
				strength = 10
			}
			coupled = append(coupled, fileRelation{Source: k.a, Target: k.b, Kind: relCoupled, Strength: strength})
		}
	}
	return coupled
}

func detectTestedBy(files []*scanner.Node) []fileRelation {
	var tested []fileRelation
	for _, candidate := range files {
		rel := strings.Join(candidate.Path[1:], "/")
		lower := strings.ToLower(rel)
		if !strings.Contains(lower, "test") {
			continue
		}
		stem := strings.TrimSuffix(candidate.Name(), filepath.Ext(candidate.Name()))
		base := testBaseName(stem)
		for _, source := range files {
			if source == candidate {
				continue
			}
			sourceStem := strings.TrimSuffix(source.Name(), filepath.Ext(source.Name()))
			if sourceStem == base {
				tested = append(tested, fileRelation{
					Source: strings.Join(source.Path[1:], "/"), Target: rel, Kind: relTestedBy, Strength: 10,
				})
			}
		}
	}
	return tested
}

func (RelationsEncoder) Emit(w io.Writer, nodes []*scanner.Node, stats scanner.TreeStats, root string) error {
	fmt.Fprintln(w, "RELATIONS_V1:")
	for _, r := range analyzeRelations(nodes, root) {
		switch r.Kind {
		case relImports:
			fmt.Fprintf(w, "rel:imports:%s->%s", r.Source, r.Target)
			if len(r.Items) > 0 {
				fmt.Fprintf(w, ":items=%s", strings.Join(r.Items, ","))
			}
			fmt.Fprintln(w)
		case relTestedBy:
			fmt.Fprintf(w, "rel:tested_by:%s->%s\n", r.Source, r.Target)
		case relCoupled:
			fmt.Fprintf(w, "rel:coupled:%s<->%s:strength=%d\n", r.Source, r.Target, r.Strength)
		}
	}
	fmt.Fprintln(w, "END_RELATIONS")
	return nil
}
