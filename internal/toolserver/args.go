package toolserver

import (
	"github.com/go-playground/validator/v10"

	"github.com/smarttree/smarttree/internal/apperr"
	"github.com/smarttree/smarttree/internal/scanner"
)

// validate is shared process-wide — go-playground/validator's own docs
// recommend a single long-lived instance, since it caches struct
// reflection. Grounded on standardbeagle-lci's internal/config/validator.go
// usage of validator.New()-backed struct-tag validation, adopted here for
// Tool Server argument checking ahead of dispatch (spec §4.9 step 1) in
// place of the teacher's config-only use of it.
var validate = validator.New()

// analyzeArgs is the argument shape for the "analyze" tool group (directory
// analysis / search / statistics / comparison, spec §4.9): a single struct
// covers them since every one of those handlers is the same scan pipeline
// with different fields populated.
type analyzeArgs struct {
	Path            string  `json:"path" validate:"required"`
	MaxDepth        int     `json:"maxDepth"`
	FollowSymlinks  bool    `json:"followSymlinks"`
	ShowHidden      bool    `json:"showHidden"`
	ShowIgnored     bool    `json:"showIgnored"`
	FindPattern     string  `json:"findPattern"`
	FileTypeFilter  string  `json:"fileTypeFilter"`
	EntryType       string  `json:"entryType" validate:"omitempty,oneof=file dir"`
	MinSize         int64   `json:"minSize" validate:"gte=0"`
	MaxSize         int64   `json:"maxSize" validate:"gte=0"`
	SearchKeyword   string  `json:"searchKeyword"`
	ComputeInterest bool    `json:"computeInterest"`
	SecurityScan    bool    `json:"securityScan"`
	MinInterest     float64 `json:"minInterest"`
	ChangesOnly     bool    `json:"changesOnly"`
	Format          string  `json:"format" validate:"omitempty,oneof=quantum quantum-safe claude hextree summary-ai semantic-quantum digest ai ai-json relations context sse markqant"`
}

// validateArgs runs go-playground/validator over a decoded argument struct,
// translating its error into apperr.InvalidInput (spec §7, RPC code
// -32602) so every handler reports schema violations the same way.
func validateArgs(a any) error {
	if err := validate.Struct(a); err != nil {
		return apperr.Wrap(apperr.InvalidInput, err, "validating tool arguments")
	}
	return nil
}

func (a analyzeArgs) toScanRequest() scanRequest {
	req := scanRequest{
		Path:            a.Path,
		MaxDepth:        a.MaxDepth,
		FollowSymlinks:  a.FollowSymlinks,
		RespectGitignore: true,
		ShowHidden:      a.ShowHidden,
		ShowIgnored:     a.ShowIgnored,
		FindPattern:     a.FindPattern,
		FileTypeFilter:  a.FileTypeFilter,
		MinSize:         a.MinSize,
		MaxSize:         a.MaxSize,
		SearchKeyword:   a.SearchKeyword,
		ComputeInterest: a.ComputeInterest,
		SecurityScan:    a.SecurityScan,
		MinInterest:     a.MinInterest,
		ChangesOnly:     a.ChangesOnly,
		Format:          a.Format,
	}
	if req.MaxDepth == 0 {
		req.MaxDepth = 100
	}
	if req.Format == "" {
		req.Format = "hextree"
	}
	switch a.EntryType {
	case "file":
		req.EntryTypeFilter = scanner.EntryTypeFile
	case "dir":
		req.EntryTypeFilter = scanner.EntryTypeDir
	}
	return req
}

// gitStatusArgs is the argument shape for the "git status" handler group.
type gitStatusArgs struct {
	Path string `json:"path" validate:"required"`
}

// operationLogArgs is the argument shape for the operation-log handler
// group (spec §4.10).
type operationLogArgs struct {
	ProjectRoot string `json:"projectRoot" validate:"required"`
	Date        string `json:"date"`
}

// watchArgs is the argument shape for the SSE watch handler group (spec
// §4.8.9, §4.9). Since a single JSON-RPC tool call has no open streaming
// transport back to the caller, the handler instead watches for a bounded
// window and returns the accumulated SSE frames as one text block.
type watchArgs struct {
	Path            string `json:"path" validate:"required"`
	DurationSeconds int    `json:"durationSeconds" validate:"gte=0,lte=60"`
	MaxEvents       int    `json:"maxEvents" validate:"gte=0,lte=1000"`
}

func (a watchArgs) durationOrDefault() int {
	if a.DurationSeconds == 0 {
		return 5
	}
	return a.DurationSeconds
}

func (a watchArgs) maxEventsOrDefault() int {
	if a.MaxEvents == 0 {
		return 100
	}
	return a.MaxEvents
}
