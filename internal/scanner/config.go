package scanner

import "time"

// Ignorer decides whether a path should be excluded from the scan (spec
// §4.2). Kept as a minimal one-method surface, mirroring the teacher's
// discovery.Ignorer interface, so internal/ignore has no dependency on this
// package's types.
type Ignorer interface {
	IsIgnored(relPath string, isDir bool) bool
}

// EntryTypeFilter restricts the scan to files or directories only.
type EntryTypeFilter string

const (
	EntryTypeAny EntryTypeFilter = ""
	EntryTypeFile EntryTypeFilter = "file"
	EntryTypeDir  EntryTypeFilter = "dir"
)

// Config is ScannerConfig from spec §3, carrying every recognised option.
// Filter-shaped fields (FindPattern, FileTypeFilter, …) are consumed by
// internal/filter after the scan completes, not during traversal; they are
// threaded through Config because tool handlers build one config object
// per call (spec §4.9 step 3).
type Config struct {
	Root string

	MaxDepth       int
	FollowSymlinks bool

	RespectGitignore  bool
	ShowHidden        bool
	ShowIgnored       bool
	UseDefaultIgnores bool
	Ignorer           Ignorer
	// SystemIgnorer, when set, is checked against the entry's absolute path
	// before Ignorer is consulted against its root-relative path — this is
	// the system-prefix/system-file precedence step of spec §4.2, which
	// must win over every glob-based rule regardless of what else matches.
	SystemIgnorer interface {
		IsIgnoredAbs(absPath string) bool
	}

	FindPattern     string
	FileTypeFilter  string
	EntryTypeFilter EntryTypeFilter
	MinSize         int64
	MaxSize         int64
	NewerThan       time.Time
	OlderThan       time.Time

	SearchKeyword      string
	IncludeLineContent bool

	ComputeInterest bool
	SecurityScan    bool
	MinInterest     float64

	ChangesOnly  bool
	CompareState []FileSignature

	// Concurrency bounds the content-search worker pool (spec §5's "maximum
	// concurrent open descriptors"). Defaults to runtime.NumCPU() if <= 0.
	Concurrency int

	// CancelPoll, when non-nil, is checked before reading each directory
	// entry (spec §4.9 "Cancellation").
	CancelPoll func() bool

	// SymlinkAllowList, when non-nil, gates symlink resolution: a resolved
	// target for which it returns false is skipped entirely, never emitted
	// (spec §8 invariant 8). Typically the Path Gate's allow(path) check.
	SymlinkAllowList func(realPath string) bool
}

// FileSignature is the Signature Store's comparison unit (spec §3, §4.7).
// Defined here rather than in internal/signature so that Config.CompareState
// and Node's change-detection path have no import-cycle back onto the store.
type FileSignature struct {
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	Mtime       time.Time `json:"mtime"`
	Permissions uint16    `json:"perms"`
	ContentHash string    `json:"hash,omitempty"`
}

const (
	// DefaultMaxDepth is the Tool Server's builder default (spec §4.9).
	DefaultMaxDepth = 100
	// MaxSearchMatches caps content-search offsets collected per file (spec §4.3).
	MaxSearchMatches = 100
	// DefaultMaxOpenFiles is a descriptor budget (spec §5). The walker does
	// not read it; the content-search pool is bounded by Config.Concurrency.
	DefaultMaxOpenFiles = 64
)
