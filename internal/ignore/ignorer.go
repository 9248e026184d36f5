// Package ignore implements the Ignore Matcher: a composite set-membership
// predicate over a built-in default list, .gitignore rules, and an exact
// system-path/file list, evaluated in the strict precedence order spec §4.2
// requires (first match wins, unlike a plain "any matches" OR-chain).
package ignore

import "github.com/smarttree/smarttree/internal/smlog"

// Ignorer is the interface every ignore source implements, mirroring the
// teacher's discovery.Ignorer so internal/scanner can depend on either
// package's type interchangeably.
type Ignorer interface {
	IsIgnored(path string, isDir bool) bool
}

var logger = smlog.For("ignore")

// PrecedenceIgnorer evaluates sources strictly in the order given, stopping
// at the first match (spec §4.2: "system-prefix exact match → system-file
// exact match → default glob set → gitignore glob set. First match wins.").
// It replaces the teacher's CompositeIgnorer, which treats its sources as an
// unordered OR-chain — this module's precedence is semantically load-bearing
// (spec §8 invariant 7: a system-path rule always beats a conflicting
// gitignore rule), so the distinction cannot be collapsed back to "any".
type PrecedenceIgnorer struct {
	sources []Ignorer
}

// NewPrecedenceIgnorer chains ignorers in priority order. Nil entries are
// skipped, matching the teacher's NewCompositeIgnorer convenience.
func NewPrecedenceIgnorer(sources ...Ignorer) *PrecedenceIgnorer {
	filtered := make([]Ignorer, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	return &PrecedenceIgnorer{sources: filtered}
}

// IsIgnored returns true as soon as any source in priority order matches.
func (p *PrecedenceIgnorer) IsIgnored(path string, isDir bool) bool {
	for _, s := range p.sources {
		if s.IsIgnored(path, isDir) {
			return true
		}
	}
	return false
}

var _ Ignorer = (*PrecedenceIgnorer)(nil)
