package toolserver

import (
	"context"
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/smarttree/smarttree/internal/apperr"
	"github.com/smarttree/smarttree/internal/oplog"
)

// recommendNext appends an advisory next-tool hint based on how many calls
// this session has made so far (spec §9's "global mutable state is
// isolated to the tool-call counter" — threaded here as the one piece of
// process-wide mutable state the Tool Server owns). First call nudges
// toward statistics; every call after the fifth nudges toward compare, on
// the assumption that a long session is iterating and will want to know
// what changed.
func (s *Server) recommendNext(text string) string {
	n := s.callCount.Add(1)
	switch {
	case n == 1:
		return text + "\n\n(tip: try \"statistics\" for aggregate counts)"
	case n > 5:
		return text + "\n\n(tip: try \"compare\" to see what changed since the last scan)"
	default:
		return text
	}
}

func (s *Server) handleAnalyze(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args analyzeArgs
	if err := decodeArgs(req.Params.Arguments, &args); err != nil {
		return errorResponse(err)
	}

	out, err := s.pipeline.run(ctx, args.toScanRequest())
	if err != nil {
		return errorResponse(err)
	}
	return textResponse(s.recommendNext(out))
}

func (s *Server) handleStatistics(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args analyzeArgs
	if err := decodeArgs(req.Params.Arguments, &args); err != nil {
		return errorResponse(err)
	}
	sr := args.toScanRequest()
	sr.Format = "digest"

	out, err := s.pipeline.run(ctx, sr)
	if err != nil {
		return errorResponse(err)
	}
	return textResponse(s.recommendNext(out))
}

func (s *Server) handleCompare(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args analyzeArgs
	if err := decodeArgs(req.Params.Arguments, &args); err != nil {
		return errorResponse(err)
	}
	sr := args.toScanRequest()
	sr.ComputeInterest = true
	sr.ChangesOnly = true

	out, err := s.pipeline.run(ctx, sr)
	if err != nil {
		return errorResponse(err)
	}
	return textResponse(s.recommendNext(out))
}

func (s *Server) handleGitStatus(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args gitStatusArgs
	if err := decodeArgs(req.Params.Arguments, &args); err != nil {
		return errorResponse(err)
	}
	if err := s.pipeline.gate.Check(args.Path); err != nil {
		return errorResponse(err)
	}

	repo, err := git.PlainOpenWithOptions(args.Path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return errorResponse(apperr.Wrap(apperr.NotFound, err, "opening git repository at %s", args.Path))
	}
	wt, err := repo.Worktree()
	if err != nil {
		return errorResponse(apperr.Wrap(apperr.IOError, err, "reading worktree at %s", args.Path))
	}
	status, err := wt.Status()
	if err != nil {
		return errorResponse(apperr.Wrap(apperr.IOError, err, "reading git status at %s", args.Path))
	}

	head, err := repo.Head()
	branch := "HEAD"
	if err == nil {
		branch = head.Name().Short()
	}

	text := fmt.Sprintf("Branch: %s\n", branch)
	if status.IsClean() {
		text += "Clean\n"
	} else {
		for path, st := range status {
			text += fmt.Sprintf("%s%s %s\n", st.Staging, st.Worktree, path)
		}
	}
	return textResponse(text)
}

func (s *Server) handleOperationLog(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args operationLogArgs
	if err := decodeArgs(req.Params.Arguments, &args); err != nil {
		return errorResponse(err)
	}
	if err := s.pipeline.gate.Check(args.ProjectRoot); err != nil {
		return errorResponse(err)
	}

	day := time.Now()
	if args.Date != "" {
		parsed, err := time.Parse("2006-01-02", args.Date)
		if err != nil {
			return errorResponse(apperr.Wrap(apperr.InvalidInput, err, "parsing date %q", args.Date))
		}
		day = parsed
	}

	records, err := oplog.Read(args.ProjectRoot, day)
	if err != nil {
		return errorResponse(err)
	}
	if len(records) == 0 {
		return textResponse("no operations recorded for " + day.Format("2006-01-02"))
	}

	text := ""
	for _, r := range records {
		text += fmt.Sprintf("%s %s %s (%+d bytes)\n", r.Timestamp.Format(time.RFC3339), r.Operation, r.Path, r.ByteDelta)
	}
	return textResponse(text)
}

func (s *Server) handleServerInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := fmt.Sprintf(
		"smarttree-mcp-server\nsession: %s\ncalls so far: %d\ntools: %v\nallow-list: %v\n",
		s.sessionID, s.callCount.Load(), toolNames, s.pipeline.gate.Roots(),
	)
	return textResponse(text)
}
