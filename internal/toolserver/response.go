package toolserver

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/smarttree/smarttree/internal/apperr"
)

// textResponse wraps a plain-text encoder result as a successful
// CallToolResult. Grounded on standardbeagle-lci's response.go
// createJSONResponse, simplified since every smarttree encoder already
// produces its own self-describing text framing rather than needing a
// JSON envelope.
func textResponse(text string) (*mcp.CallToolResult, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil
}

// errorResponse turns a smarttree error into a CallToolResult with
// IsError set, per the MCP SDK's own error-reporting convention
// (standardbeagle-lci response.go's createErrorResponse /
// "errors... should be reported inside the result"). The RPC code is
// surfaced in the text body since mcp.CallToolResult has no dedicated code
// field.
func errorResponse(err error) (*mcp.CallToolResult, error) {
	kind := apperr.KindOf(err)
	text := fmt.Sprintf("[%s/%d] %s", kind, kind.RPCCode(), err.Error())
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}, nil
}
