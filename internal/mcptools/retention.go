package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lazypower/dettato/internal/store"
)

// RetentionGetTool handles retention_get.
type RetentionGetTool struct {
	db *store.DB
}

func NewRetentionGetTool(db *store.DB) *RetentionGetTool {
	return &RetentionGetTool{db: db}
}

func (t *RetentionGetTool) Definition() mcp.Tool {
	return mcp.NewTool("retention_get",
		mcp.WithDescription("Show how many days a user's notes are kept."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Voice platform user id")),
	)
}

func (t *RetentionGetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, errResult := userArg(req)
	if errResult != nil {
		return errResult, nil
	}
	days, ok, err := t.db.RetentionDays(userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read retention: %v", err)), nil
	}
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf("%s keeps notes forever.", userID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s keeps notes for %d day(s).", userID, days)), nil
}

// RetentionSetTool handles retention_set.
type RetentionSetTool struct {
	db *store.DB
}

func NewRetentionSetTool(db *store.DB) *RetentionSetTool {
	return &RetentionSetTool{db: db}
}

func (t *RetentionSetTool) Definition() mcp.Tool {
	return mcp.NewTool("retention_set",
		mcp.WithDescription("Set how many days a user's notes are kept. Older notes are deleted at the next cleanup."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Voice platform user id")),
		mcp.WithNumber("days", mcp.Required(), mcp.Description("Retention window in days, at least 1")),
	)
}

func (t *RetentionSetTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, errResult := userArg(req)
	if errResult != nil {
		return errResult, nil
	}
	days := intArg(req, "days", 0)
	if err := t.db.SetRetentionDays(userID, days); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set retention: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s now keeps notes for %d day(s).", userID, days)), nil
}

// RetentionClearTool handles retention_clear.
type RetentionClearTool struct {
	db *store.DB
}

func NewRetentionClearTool(db *store.DB) *RetentionClearTool {
	return &RetentionClearTool{db: db}
}

func (t *RetentionClearTool) Definition() mcp.Tool {
	return mcp.NewTool("retention_clear",
		mcp.WithDescription("Remove a user's retention window so their notes are kept forever."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Voice platform user id")),
	)
}

func (t *RetentionClearTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, errResult := userArg(req)
	if errResult != nil {
		return errResult, nil
	}
	if err := t.db.ClearRetention(userID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to clear retention: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s keeps notes forever.", userID)), nil
}

// RetentionCleanupTool handles retention_cleanup.
type RetentionCleanupTool struct {
	db *store.DB
}

func NewRetentionCleanupTool(db *store.DB) *RetentionCleanupTool {
	return &RetentionCleanupTool{db: db}
}

func (t *RetentionCleanupTool) Definition() mcp.Tool {
	return mcp.NewTool("retention_cleanup",
		mcp.WithDescription("Delete a user's notes older than their retention window now."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Voice platform user id")),
	)
}

func (t *RetentionCleanupTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, errResult := userArg(req)
	if errResult != nil {
		return errResult, nil
	}
	n, err := t.db.CleanupExpired(userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to clean up: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted %d expired note(s) for %s.", n, userID)), nil
}
