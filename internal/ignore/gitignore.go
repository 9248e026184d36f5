package ignore

import (
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/smarttree/smarttree/internal/apperr"
)

// GitignoreMatcher wraps a single compiled .gitignore file read from the
// scan root (spec §4.2: "blank lines and # comments skipped; glob syntax
// per gitignore semantics" — both handled by sabhiram/go-gitignore itself).
type GitignoreMatcher struct {
	matcher *gitignore.GitIgnore
}

// LoadGitignore reads and compiles "<root>/.gitignore". A missing file is
// not an error: it yields a matcher that ignores nothing, so callers can
// unconditionally wire it into a PrecedenceIgnorer.
func LoadGitignore(root string) (*GitignoreMatcher, error) {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &GitignoreMatcher{matcher: gitignore.CompileIgnoreLines()}, nil
	}

	compiled, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.IOError, err, "parsing %s", path)
	}
	return &GitignoreMatcher{matcher: compiled}, nil
}

// IsIgnored matches a root-relative, forward-slashed path.
func (g *GitignoreMatcher) IsIgnored(path string, isDir bool) bool {
	normalized := normalizePath(path)
	if normalized == "" {
		return false
	}
	if isDir {
		return g.matcher.MatchesPath(normalized) || g.matcher.MatchesPath(normalized+"/")
	}
	return g.matcher.MatchesPath(normalized)
}

var _ Ignorer = (*GitignoreMatcher)(nil)
