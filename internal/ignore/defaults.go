package ignore

import (
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// DefaultIgnorePatterns is the built-in DEFAULT list: 76 patterns for VCS
// metadata, language build artefacts, editor and OS junk, env files,
// lockfiles, compiled outputs, caches and virtual envs. Adapted and expanded from the teacher's
// discovery.DefaultIgnorePatterns, which covered roughly 70; the extra
// entries below fill in the virtual-env and cache families the teacher's
// own (narrower, AI-context-focused) list didn't need.
var DefaultIgnorePatterns = []string{
	// Version control
	".git/",
	".hg/",
	".svn/",
	".bzr/",

	// JS/TS
	"node_modules/",
	"dist/",
	"build/",
	".next/",
	".nuxt/",
	".turbo/",
	".parcel-cache/",
	"coverage/",
	".npm/",
	".yarn/",

	// Rust
	"target/",
	"target/debug/",
	"target/release/",

	// Go
	"vendor/",

	// Python
	"__pycache__/",
	".venv/",
	"venv/",
	".tox/",
	".pytest_cache/",
	".mypy_cache/",
	".ruff_cache/",
	"*.egg-info/",
	".ipynb_checkpoints/",

	// Java/JVM
	".gradle/",
	"build/classes/",
	".m2/",
	"target/classes/",

	// Ruby
	".bundle/",

	// PHP
	"vendor/composer/",

	// C/C++
	"cmake-build-*/",
	".ccache/",

	// Editors/IDE
	".idea/",
	".vscode/",
	"*.swp",
	"*.swo",
	"*~",

	// OS junk
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",

	// Harvx/Smart Tree own state
	".smart-tree/",
	".harvx/",

	// Environment / secrets
	".env",
	".env.*",
	"*.pem",
	"*.key",
	"*.p12",
	"*.pfx",
	"*secret*",
	"*credential*",
	"*password*",

	// Lock files
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"Gemfile.lock",
	"Cargo.lock",
	"go.sum",
	"poetry.lock",
	"Pipfile.lock",
	"composer.lock",

	// Compiled artefacts
	"*.pyc",
	"*.pyo",
	"*.class",
	"*.o",
	"*.obj",
	"*.exe",
	"*.dll",
	"*.so",
	"*.dylib",
	"*.a",

	// Caches
	".cache/",
	".sass-cache/",
	".eslintcache",
}

// DefaultIgnoreMatcher compiles DefaultIgnorePatterns via the same
// sabhiram/go-gitignore engine used for .gitignore parsing, adapted from the
// teacher's discovery.DefaultIgnoreMatcher.
type DefaultIgnoreMatcher struct {
	matcher *gitignore.GitIgnore
}

// NewDefaultIgnoreMatcher compiles the built-in pattern set. It never fails:
// DefaultIgnorePatterns is a compile-time constant.
func NewDefaultIgnoreMatcher() *DefaultIgnoreMatcher {
	compiled := gitignore.CompileIgnoreLines(DefaultIgnorePatterns...)
	logger.Debug("default ignore matcher compiled", "patterns", len(DefaultIgnorePatterns))
	return &DefaultIgnoreMatcher{matcher: compiled}
}

// IsIgnored matches path (relative to the scan root, forward-slashed)
// against the default glob set, tried against both the filename and the
// full relative path, per spec §4.2.
func (d *DefaultIgnoreMatcher) IsIgnored(path string, isDir bool) bool {
	normalized := normalizePath(path)
	if normalized == "" {
		return false
	}

	matchPath := normalized
	if isDir && !strings.HasSuffix(matchPath, "/") {
		matchPath += "/"
	}
	if d.matcher.MatchesPath(matchPath) {
		return true
	}

	name := filepath.Base(normalized)
	if name != normalized && d.matcher.MatchesPath(name) {
		return true
	}

	return false
}

func normalizePath(path string) string {
	p := filepath.ToSlash(path)
	p = strings.TrimPrefix(p, "./")
	if p == "." {
		return ""
	}
	return p
}

var _ Ignorer = (*DefaultIgnoreMatcher)(nil)
