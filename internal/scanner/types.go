// Package scanner implements filesystem traversal with filtering,
// categorisation, ignore-rule application, and optional content sampling
// (spec §3, §4.3). Its types are the data backbone shared by the Interest
// Engine, Filters, Signature Store, and the Encoder Family: every later
// pipeline stage enriches or reads a scanner.Node, generalising the role the
// teacher's pipeline.FileDescriptor plays for harvx's own stages.
package scanner

import "time"

// Kind is the filesystem entry variant (spec §3).
type Kind string

const (
	KindDirectory Kind = "directory"
	KindRegular   Kind = "regular"
	KindSymlink   Kind = "symlink"
	KindExecutable Kind = "executable"
	KindSocket    Kind = "socket"
	KindPipe      Kind = "pipe"
	KindBlockDev  Kind = "blockdev"
	KindCharDev   Kind = "chardev"
)

// Category is the content classification tag (spec §3, ≈50 tags). The
// dispatch table that assigns these lives in categorize.go and is grounded
// on original_source/src/scanner.rs's FileCategory match arms.
type Category string

const (
	CategoryRust       Category = "rust"
	CategoryPython     Category = "python"
	CategoryJavaScript Category = "javascript"
	CategoryTypeScript Category = "typescript"
	CategoryJava       Category = "java"
	CategoryC          Category = "c"
	CategoryCpp        Category = "cpp"
	CategoryGo         Category = "go"
	CategoryRuby       Category = "ruby"
	CategoryPHP        Category = "php"
	CategoryShell      Category = "shell"
	CategoryCSharp     Category = "csharp"
	CategoryKotlin     Category = "kotlin"
	CategorySwift      Category = "swift"
	CategoryScala      Category = "scala"
	CategoryLua        Category = "lua"
	CategoryPerl       Category = "perl"
	CategoryHaskell    Category = "haskell"
	CategoryElixir     Category = "elixir"
	CategoryZig        Category = "zig"

	CategoryMarkdown Category = "markdown"
	CategoryHTML     Category = "html"
	CategoryCSS      Category = "css"
	CategoryJSON     Category = "json"
	CategoryYAML     Category = "yaml"
	CategoryXML      Category = "xml"
	CategoryTOML     Category = "toml"
	CategoryCSV      Category = "csv"
	CategorySQL      Category = "sql"
	CategoryText     Category = "text"

	CategoryMakefile   Category = "makefile"
	CategoryDockerfile Category = "dockerfile"
	CategoryGitConfig  Category = "gitconfig"
	CategoryCI         Category = "ci"
	CategoryAIConfig   Category = "aiconfig"
	CategoryLockfile   Category = "lockfile"
	CategoryLicense    Category = "license"

	CategoryArchive Category = "archive"

	CategoryImage Category = "image"
	CategoryVideo Category = "video"
	CategoryAudio Category = "audio"
	CategoryFont  Category = "font"

	CategorySystemFile Category = "system"
	CategoryBinary     Category = "binary"

	CategoryUnknown Category = "unknown"
)

// FilesystemKind identifies the host filesystem an entry lives on (spec §3).
type FilesystemKind string

const (
	FSUnknown FilesystemKind = "unknown"
	FSExt     FilesystemKind = "ext"
	FSBtrfs   FilesystemKind = "btrfs"
	FSXfs     FilesystemKind = "xfs"
	FSZfs     FilesystemKind = "zfs"
	FSTmpfs   FilesystemKind = "tmpfs"
	FSProcfs  FilesystemKind = "procfs"
	FSSysfs   FilesystemKind = "sysfs"
	FSDevfs   FilesystemKind = "devfs"
	FSNtfs    FilesystemKind = "ntfs"
	FSApfs    FilesystemKind = "apfs"
)

// ChangeStatus records how a node differs from a prior scan (spec §4.7).
type ChangeStatus string

const (
	ChangeAdded             ChangeStatus = "Added"
	ChangeModified          ChangeStatus = "Modified"
	ChangeDeleted           ChangeStatus = "Deleted"
	ChangePermissionChanged ChangeStatus = "PermissionChanged"
	ChangeRenamed           ChangeStatus = "Renamed"
	ChangeTypeChanged       ChangeStatus = "TypeChanged"
)

// InterestLevel is the five-level classification of InterestScore.Score
// (spec §3, thresholds in §4.5).
type InterestLevel string

const (
	LevelBoring    InterestLevel = "Boring"
	LevelBackground InterestLevel = "Background"
	LevelNotable   InterestLevel = "Notable"
	LevelImportant InterestLevel = "Important"
	LevelCritical  InterestLevel = "Critical"
)

// LevelFromScore is a pure function of score with thresholds 0.2/0.4/0.6/0.8
// (spec §3). Exported here, next to the type it classifies, so both the
// Interest Engine and its property tests share one implementation.
func LevelFromScore(score float64) InterestLevel {
	switch {
	case score < 0.2:
		return LevelBoring
	case score < 0.4:
		return LevelBackground
	case score < 0.6:
		return LevelNotable
	case score < 0.8:
		return LevelImportant
	default:
		return LevelCritical
	}
}

// InterestFactor is one contribution to an InterestScore, carried verbatim
// for explainability (spec §4.5).
type InterestFactor struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Detail string  `json:"detail,omitempty"`
}

// InterestScore is the per-node scoring result (spec §3).
type InterestScore struct {
	Score       float64          `json:"score"`
	Factors     []InterestFactor `json:"factors"`
	Level       InterestLevel    `json:"level"`
	CalculatedAt time.Time       `json:"calculatedAt"`
}

// RiskLevel is the severity of a SecurityFinding (spec §4.6).
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical"
)

// SecurityFinding is one hit from the Security Scanner collaborator.
type SecurityFinding struct {
	RiskLevel    RiskLevel `json:"riskLevel"`
	Description  string    `json:"description"`
	LocationHint string    `json:"locationHint"`
}

// Node is the unit of the scan stream (spec §3 "FileNode").
type Node struct {
	Path  []string `json:"path"`
	Depth int      `json:"depth"`

	Kind           Kind           `json:"kind"`
	Category       Category       `json:"category"`
	Size           int64          `json:"size"`
	Permissions    uint16         `json:"permissions"`
	Owner          uint32         `json:"owner"`
	Group          uint32         `json:"group"`
	Modified       time.Time      `json:"modified"`
	FilesystemKind FilesystemKind `json:"filesystemKind"`

	IsSymlink        bool `json:"isSymlink"`
	IsHidden         bool `json:"isHidden"`
	IsIgnored        bool `json:"isIgnored"`
	PermissionDenied bool `json:"permissionDenied"`

	SearchMatches    []int64          `json:"searchMatches,omitempty"`
	Interest         *InterestScore   `json:"interest,omitempty"`
	SecurityFindings []SecurityFinding `json:"securityFindings,omitempty"`
	ChangeStatus     ChangeStatus     `json:"changeStatus,omitempty"`
	ContentHash      string           `json:"contentHash,omitempty"`
}

// IsDir reports whether the node is a directory, the one Kind test every
// other package needs repeatedly.
func (n *Node) IsDir() bool { return n.Kind == KindDirectory }

// Name returns the last path segment, or "" for the synthetic root-less node.
func (n *Node) Name() string {
	if len(n.Path) == 0 {
		return ""
	}
	return n.Path[len(n.Path)-1]
}

// JoinedPath renders the path using "/" regardless of host OS, matching the
// spec's "sequence of path segments" model and the wire formats' path text.
func (n *Node) JoinedPath() string {
	out := ""
	for i, seg := range n.Path {
		if i > 0 {
			out += "/"
		}
		out += seg
	}
	return out
}

// TreeStats is the aggregate built during a scan (spec §3).
type TreeStats struct {
	TotalFiles int64 `json:"totalFiles"`
	TotalDirs  int64 `json:"totalDirs"`
	TotalSize  int64 `json:"totalSize"`

	FileTypeHistogram map[string]int64 `json:"fileTypeHistogram"`

	TopBySize   []TopEntry `json:"topBySize"`
	TopByNewest []TopEntry `json:"topByNewest"`
	TopByOldest []TopEntry `json:"topByOldest"`

	// EstimatedTokens holds a token-count estimate over the node names in
	// the stream. Nothing in this module computes it, so it stays 0, and no
	// encoder prints it.
	EstimatedTokens int `json:"estimatedTokens"`

	// Truncated marks a stats snapshot produced from a cancelled scan
	// (spec §5, §7). Nothing in this module sets it: a cancelled Walk or
	// Stream returns an error and no stats.
	Truncated bool `json:"truncated,omitempty"`
}

// TopEntry is one row of a TreeStats top-10 list.
type TopEntry struct {
	Path     string    `json:"path"`
	Size     int64     `json:"size,omitempty"`
	Modified time.Time `json:"modified,omitempty"`
}

const topN = 10

// Update folds node into the running aggregate (grounded on
// original_source/src/scanner.rs's TreeStats::update_file, generalised to
// maintain all three top-10 lists instead of one).
func (s *TreeStats) Update(n *Node) {
	if s.FileTypeHistogram == nil {
		s.FileTypeHistogram = make(map[string]int64)
	}
	if n.IsDir() {
		s.TotalDirs++
		return
	}
	s.TotalFiles++
	s.TotalSize += n.Size

	ext := extOf(n.Name())
	if ext != "" {
		s.FileTypeHistogram[ext]++
	}

	s.TopBySize = insertTop(s.TopBySize, TopEntry{Path: n.JoinedPath(), Size: n.Size}, topN, func(a, b TopEntry) bool {
		return a.Size > b.Size
	})
	s.TopByNewest = insertTop(s.TopByNewest, TopEntry{Path: n.JoinedPath(), Modified: n.Modified}, topN, func(a, b TopEntry) bool {
		return a.Modified.After(b.Modified)
	})
	s.TopByOldest = insertTop(s.TopByOldest, TopEntry{Path: n.JoinedPath(), Modified: n.Modified}, topN, func(a, b TopEntry) bool {
		return a.Modified.Before(b.Modified)
	})
}

func insertTop(list []TopEntry, e TopEntry, cap int, less func(a, b TopEntry) bool) []TopEntry {
	idx := len(list)
	for i, cur := range list {
		if less(e, cur) {
			idx = i
			break
		}
	}
	list = append(list, TopEntry{})
	copy(list[idx+1:], list[idx:])
	list[idx] = e
	if len(list) > cap {
		list = list[:cap]
	}
	return list
}

func extOf(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			if i == 0 {
				return ""
			}
			return name[i+1:]
		}
	}
	return ""
}
