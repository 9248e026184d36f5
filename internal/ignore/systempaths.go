package ignore

import "strings"

// SystemPrefixes is the EXACT set of absolute system paths matched by
// prefix (spec §4.2).
var SystemPrefixes = []string{
	"/proc",
	"/sys",
	"/dev",
	"/run",
	"/tmp",
	"/lost+found",
	"/mnt",
	"/media",
	"/snap",
}

// SystemFiles is the small EXACT file list matched verbatim (spec §4.2).
var SystemFiles = []string{
	"/proc/kcore",
	"/proc/kmsg",
	"/proc/kallsyms",
	"/dev/core",
}

// SystemPathMatcher implements the first two precedence steps of §4.2
// ("system-prefix exact match → system-file exact match") against an
// absolute path. Unlike the other matchers in this package it operates on
// absolute filesystem paths, not root-relative ones — the Scanner passes the
// absolute path for this one check before falling through to the
// root-relative DEFAULT and gitignore matchers.
type SystemPathMatcher struct{}

// NewSystemPathMatcher returns a matcher over the fixed prefix/file lists.
func NewSystemPathMatcher() *SystemPathMatcher { return &SystemPathMatcher{} }

// IsIgnoredAbs reports whether absPath is covered by a system-prefix or
// system-file rule. Named distinctly from IsIgnored (which takes a
// root-relative path) so callers cannot accidentally pass the wrong kind of
// path to this matcher.
func (s *SystemPathMatcher) IsIgnoredAbs(absPath string) bool {
	for _, f := range SystemFiles {
		if absPath == f {
			return true
		}
	}
	for _, prefix := range SystemPrefixes {
		if absPath == prefix || strings.HasPrefix(absPath, prefix+"/") {
			return true
		}
	}
	return false
}
