package encoder

import (
	"fmt"
	"io"
	"sort"
	"time"

	git "github.com/go-git/go-git/v5"

	"github.com/smarttree/smarttree/internal/scanner"
)

// ContextEncoder wraps Summary-AI's compressed structure block together with
// git HEAD/branch info and a recent-changes digest, meant as one-shot context
// for an AI conversation starting in this directory (spec §4.8.9). Grounded
// on original_source/src/formatters/context.rs; its MEM|8 conversation-memory
// lookup is dropped since no memory subsystem exists here, and git status is
// read through go-git's Repository/Head rather than gix.
type ContextEncoder struct{}

func NewContext() *ContextEncoder { return &ContextEncoder{} }

func (ContextEncoder) Name() string { return "context" }

func gitHeadSummary(root string) []string {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil
	}
	var lines []string
	if head, err := repo.Head(); err == nil {
		lines = append(lines, fmt.Sprintf("Branch: %s", head.Name().Short()))
		if commit, err := repo.CommitObject(head.Hash()); err == nil {
			msg := commit.Message
			for i, c := range msg {
				if c == '\n' {
					msg = msg[:i]
					break
				}
			}
			lines = append(lines, fmt.Sprintf("Last: %s - %s", head.Hash().String()[:8], msg))
		}
	}
	return lines
}

const recentWindow = 24 * time.Hour

func recentFiles(nodes []*scanner.Node, now time.Time) []string {
	var recent []string
	for _, n := range nodes {
		if n.IsDir() {
			continue
		}
		if now.Sub(n.Modified) < recentWindow {
			recent = append(recent, n.JoinedPath())
		}
		if len(recent) >= 10 {
			break
		}
	}
	return recent
}

func (ContextEncoder) Emit(w io.Writer, nodes []*scanner.Node, stats scanner.TreeStats, root string) error {
	fmt.Fprintln(w, "=== Smart Tree Context ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Project: %s\n", root)

	if gitLines := gitHeadSummary(root); len(gitLines) > 0 {
		fmt.Fprintln(w, "\nGit Status:")
		for _, l := range gitLines {
			fmt.Fprintln(w, l)
		}
	}

	fmt.Fprintln(w, "\nStructure:")
	fmt.Fprintln(w, "SUMMARY_AI_V1:")
	fmt.Fprintf(w, "PATH:%s\n", root)
	fmt.Fprintf(w, "STATS:F%xD%xS%x\n", stats.TotalFiles, stats.TotalDirs, stats.TotalSize)

	detected := DetectContent(nodes)
	if len(detected.ExtCounts) > 0 {
		fmt.Fprintf(w, "EXT:%s\n", extCountsLine(detected.ExtCounts, 10))
	}

	keyFiles := keyFilesPresent(nodes)
	if len(keyFiles) > 0 {
		fmt.Fprintf(w, "KEY:%s\n", joinComma(keyFiles))
	}

	recent := recentFiles(nodes, time.Now())
	if len(recent) > 0 {
		fmt.Fprintln(w, "\nRecent changes:")
		for _, r := range recent {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}

	fmt.Fprintln(w, "\n=== End Context ===")
	return nil
}

var contextKeyFiles = []string{
	"Cargo.toml", "package.json", "README.md", "CLAUDE.md",
	"pyproject.toml", "go.mod", "Makefile", ".env",
}

func keyFilesPresent(nodes []*scanner.Node) []string {
	present := map[string]bool{}
	for _, n := range nodes {
		if !n.IsDir() {
			present[n.Name()] = true
		}
	}
	var found []string
	for _, name := range contextKeyFiles {
		if present[name] {
			found = append(found, name)
		}
	}
	sort.Strings(found)
	return found
}

func joinComma(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out
}
