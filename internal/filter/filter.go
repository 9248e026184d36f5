// Package filter implements the post-scan predicate chain (spec §4.4):
// regex on path, extension equality, entry-type equality, size and mtime
// ranges, reconciled with an ancestor-closure pass so that directories on
// the path to a surviving file are never dropped.
package filter

import (
	"regexp"
	"strings"
	"time"

	"github.com/smarttree/smarttree/internal/apperr"
	"github.com/smarttree/smarttree/internal/scanner"
)

// Predicates is the compiled form of ScannerConfig's filter-shaped fields
// (spec §4.4), built once per scan via Compile and then applied to the
// fully materialised node list.
type Predicates struct {
	FindPattern     *regexp.Regexp
	FileTypeFilter  string
	EntryTypeFilter scanner.EntryTypeFilter
	MinSize         int64
	MaxSize         int64
	NewerThan       time.Time
	OlderThan       time.Time
}

// Compile builds Predicates from a scanner.Config, compiling FindPattern if
// set. A malformed regex is an InvalidInput error (spec §7), not a panic.
func Compile(cfg scanner.Config) (*Predicates, error) {
	p := &Predicates{
		FileTypeFilter:  strings.ToLower(strings.TrimPrefix(cfg.FileTypeFilter, ".")),
		EntryTypeFilter: cfg.EntryTypeFilter,
		MinSize:         cfg.MinSize,
		MaxSize:         cfg.MaxSize,
		NewerThan:       cfg.NewerThan,
		OlderThan:       cfg.OlderThan,
	}
	if cfg.FindPattern != "" {
		re, err := regexp.Compile(cfg.FindPattern)
		if err != nil {
			return nil, apperr.Wrap(apperr.InvalidInput, err, "compiling findPattern %q", cfg.FindPattern)
		}
		p.FindPattern = re
	}
	return p, nil
}

// Active reports whether any predicate actually constrains output. When
// false, Apply is a no-op pass-through (spec §4.4 "If any filter is active").
func (p *Predicates) Active() bool {
	return p.FindPattern != nil ||
		p.FileTypeFilter != "" ||
		p.EntryTypeFilter != scanner.EntryTypeAny ||
		p.MinSize > 0 ||
		p.MaxSize > 0 ||
		!p.NewerThan.IsZero() ||
		!p.OlderThan.IsZero()
}

// matches reports whether a single file node satisfies every active
// predicate. Only called on non-directory nodes; directories are retained
// solely through ancestor closure.
func (p *Predicates) matches(n *scanner.Node) bool {
	if p.FindPattern != nil && !p.FindPattern.MatchString(n.JoinedPath()) {
		return false
	}
	if p.FileTypeFilter != "" {
		ext := strings.ToLower(extOf(n.Name()))
		if ext != p.FileTypeFilter {
			return false
		}
	}
	if p.EntryTypeFilter == scanner.EntryTypeDir {
		return false
	}
	if p.MinSize > 0 && n.Size < p.MinSize {
		return false
	}
	if p.MaxSize > 0 && n.Size > p.MaxSize {
		return false
	}
	if !p.NewerThan.IsZero() && n.Modified.Before(p.NewerThan) {
		return false
	}
	if !p.OlderThan.IsZero() && n.Modified.After(p.OlderThan) {
		return false
	}
	return true
}

func extOf(name string) string {
	idx := strings.LastIndexByte(name, '.')
	if idx <= 0 {
		return ""
	}
	return name[idx+1:]
}

// Apply runs the predicate chain followed by ancestor-closure
// reconstruction (spec §4.4): the kept set is every file satisfying every
// active predicate OR carrying at least one search match, plus every
// ancestor directory of those files up to the root. Output preserves scan
// order. Stats are recomputed over the output, as required.
func Apply(nodes []*scanner.Node, p *Predicates) ([]*scanner.Node, scanner.TreeStats) {
	if !p.Active() {
		var stats scanner.TreeStats
		for _, n := range nodes {
			stats.Update(n)
		}
		return nodes, stats
	}

	keep := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.IsDir() {
			continue
		}
		if len(n.SearchMatches) == 0 && !p.matches(n) {
			continue
		}
		for i := 1; i <= len(n.Path); i++ {
			keep[strings.Join(n.Path[:i], "/")] = true
		}
	}

	out := make([]*scanner.Node, 0, len(keep))
	var stats scanner.TreeStats
	for _, n := range nodes {
		if !keep[n.JoinedPath()] {
			continue
		}
		out = append(out, n)
		stats.Update(n)
	}
	return out, stats
}

// EntryTypeFilterMatchesDir reports whether the entry-type predicate
// (if any) still permits directories through — used by callers that want
// to special-case an EntryTypeDir-only filter without running the full
// ancestor-closure machinery (e.g. a "list directories only" tool).
func EntryTypeFilterMatchesDir(t scanner.EntryTypeFilter) bool {
	return t == scanner.EntryTypeAny || t == scanner.EntryTypeDir
}
