// Package mcptools exposes the note store to MCP clients: listing and saving
// notes, and managing each user's retention window.
//
// Every tool is a struct holding its store, with Definition() returning the
// schema and Handle() serving a call. Failures come back as tool errors,
// never as Go errors, so the client sees the reason.
package mcptools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lazypower/dettato/internal/store"
)

// NewServer builds an MCP server with every dettato tool registered.
func NewServer(db *store.DB, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"dettato",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	list := NewNoteListTool(db)
	s.AddTool(list.Definition(), list.Handle)

	save := NewNoteSaveTool(db)
	s.AddTool(save.Definition(), save.Handle)

	get := NewRetentionGetTool(db)
	s.AddTool(get.Definition(), get.Handle)

	set := NewRetentionSetTool(db)
	s.AddTool(set.Definition(), set.Handle)

	clearRetention := NewRetentionClearTool(db)
	s.AddTool(clearRetention.Definition(), clearRetention.Handle)

	cleanup := NewRetentionCleanupTool(db)
	s.AddTool(cleanup.Definition(), cleanup.Handle)

	return s
}

// intArg extracts an integer argument; JSON numbers arrive as float64.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

func userArg(req mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	userID := req.GetString("user_id", "")
	if userID == "" {
		return "", mcp.NewToolResultError("'user_id' is required")
	}
	return userID, nil
}
