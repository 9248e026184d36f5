package toolserver

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/smarttree/smarttree/internal/apperr"
	"github.com/smarttree/smarttree/internal/oplog"
	"github.com/smarttree/smarttree/internal/pathgate"
	"github.com/smarttree/smarttree/internal/smlog"
)

var logger = smlog.For("toolserver")

// Server wraps an mcp.Server with smarttree's handler groups (spec §4.9:
// "directory analysis, search, statistics, comparison, git status, SSE
// watch, operation log, server info"). Grounded on standardbeagle-lci's
// mcp.Server wrapper, generalized from its code-search domain onto this
// spec's filesystem-analysis domain.
type Server struct {
	mcp       *mcp.Server
	pipeline  *pipeline
	sessionID string
	callCount atomic.Uint64
}

// New builds a Server whose Path Gate is seeded from allowRoots plus
// SMART_TREE_ALLOW, and whose Signature Store state lives under stateRoot.
func New(allowRoots []string, stateRoot string) *Server {
	gate := pathgate.New(allowRoots...)
	s := &Server{
		pipeline:  newPipeline(gate, stateRoot),
		sessionID: oplog.NewSessionID(),
	}
	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "smarttree-mcp-server",
		Version: "1.0.0",
	}, nil)
	s.registerTools()
	logger.Debug("tool server initialised", "session", s.sessionID, "allowRoots", gate.Roots())
	return s
}

// Run serves tools/list and tools/call over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// toolNames lists every registered tool, used by suggestTool for "did you
// mean" hints on an unrecognised name (spec §7).
var toolNames = []string{
	"analyze_directory", "find", "statistics", "compare",
	"git_status", "watch", "operation_log", "server_info",
}

func (s *Server) registerTools() {
	s.mcp.AddTool(&mcp.Tool{
		Name:        "analyze_directory",
		Description: "Scan a directory and render it through one of the Smart Tree encoder formats.",
		InputSchema: analyzeSchema(),
	}, s.handleAnalyze)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "find",
		Description: "Scan and filter a directory by pattern, extension, size, or content keyword.",
		InputSchema: analyzeSchema(),
	}, s.handleAnalyze)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "statistics",
		Description: "Scan a directory and return aggregate file/directory/size statistics.",
		InputSchema: analyzeSchema(),
	}, s.handleStatistics)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "compare",
		Description: "Scan a directory with change detection enabled against its last recorded state.",
		InputSchema: analyzeSchema(),
	}, s.handleCompare)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "git_status",
		Description: "Report the current branch and per-file staging/worktree status codes for a git-controlled directory.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path": {Type: "string", Description: "Directory to inspect"},
			},
			Required: []string{"path"},
		},
	}, s.handleGitStatus)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "watch",
		Description: "Watch a directory for filesystem changes for a bounded window and return the observed events as text lines between SSE start and end frames.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path":            {Type: "string", Description: "Directory to watch"},
				"durationSeconds": {Type: "integer", Description: "How long to watch, in seconds (default 5, max 60)"},
				"maxEvents":       {Type: "integer", Description: "Stop early after this many events (default 100, max 1000)"},
			},
			Required: []string{"path"},
		},
	}, s.handleWatch)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "operation_log",
		Description: "Read back the append-only operation log for a project root and day.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"projectRoot": {Type: "string", Description: "Project root containing .smart-tree/filehistory"},
				"date":        {Type: "string", Description: "Day to read, YYYY-MM-DD; defaults to today"},
			},
			Required: []string{"projectRoot"},
		},
	}, s.handleOperationLog)

	s.mcp.AddTool(&mcp.Tool{
		Name:        "server_info",
		Description: "Report the session id, call count, registered tool names, and path allow-list.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleServerInfo)
}

func analyzeSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"path":            {Type: "string", Description: "Directory to scan"},
			"maxDepth":        {Type: "integer", Description: "Maximum traversal depth"},
			"followSymlinks":  {Type: "boolean", Description: "Follow symlinks within the allow-list"},
			"showHidden":      {Type: "boolean", Description: "Include dotfiles"},
			"showIgnored":     {Type: "boolean", Description: "Surface ignored entries as single nodes"},
			"findPattern":     {Type: "string", Description: "Regex applied to each entry's path"},
			"fileTypeFilter":  {Type: "string", Description: "Extension to keep, e.g. \"rs\""},
			"entryType":       {Type: "string", Description: "\"file\" or \"dir\""},
			"minSize":         {Type: "integer", Description: "Minimum file size in bytes"},
			"maxSize":         {Type: "integer", Description: "Maximum file size in bytes"},
			"searchKeyword":   {Type: "string", Description: "Content keyword to search for"},
			"computeInterest": {Type: "boolean", Description: "Attach InterestScore to each node"},
			"securityScan":    {Type: "boolean", Description: "Accepted but has no effect: the scan pipeline does not run the Security Scanner"},
			"minInterest":     {Type: "number", Description: "Drop nodes scoring below this interest value"},
			"changesOnly":     {Type: "boolean", Description: "Only emit nodes whose signature changed since last scan"},
			"format":          {Type: "string", Description: "Encoder format name"},
		},
		Required: []string{"path"},
	}
}

// decodeArgs unmarshals req's raw arguments into dst and validates it,
// returning an InvalidInput apperr.Error on either failure (spec §4.9 step
// 1, §7).
func decodeArgs(raw json.RawMessage, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperr.Wrap(apperr.InvalidInput, err, "parsing tool arguments")
	}
	return validateArgs(dst)
}
