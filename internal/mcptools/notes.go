package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/lazypower/dettato/internal/store"
	"github.com/lazypower/dettato/internal/transcript"
)

// NoteListTool handles note_list.
type NoteListTool struct {
	db *store.DB
}

func NewNoteListTool(db *store.DB) *NoteListTool {
	return &NoteListTool{db: db}
}

func (t *NoteListTool) Definition() mcp.Tool {
	return mcp.NewTool("note_list",
		mcp.WithDescription("List a user's dictated notes, newest first."),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Voice platform user id"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum notes to return (default: 5)"),
		),
		mcp.WithBoolean("all",
			mcp.Description("Return every note, ignoring limit"),
		),
	)
}

func (t *NoteListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, errResult := userArg(req)
	if errResult != nil {
		return errResult, nil
	}

	var (
		notes []store.Note
		err   error
	)
	if boolArg(req, "all", false) {
		notes, err = t.db.AllNotes(userID)
	} else {
		notes, err = t.db.RecentNotes(userID, intArg(req, "limit", store.DefaultRecentLimit))
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list notes: %v", err)), nil
	}
	if len(notes) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No notes for %s.", userID)), nil
	}

	lines := transcript.Format(notes, transcript.DefaultDatePattern, "{num}. [{date}] {content}")
	var b strings.Builder
	fmt.Fprintf(&b, "%d note(s) for %s:\n", len(notes), userID)
	b.WriteString(strings.Join(lines, "\n"))
	return mcp.NewToolResultText(b.String()), nil
}

// NoteSaveTool handles note_save.
type NoteSaveTool struct {
	db *store.DB
}

func NewNoteSaveTool(db *store.DB) *NoteSaveTool {
	return &NoteSaveTool{db: db}
}

func (t *NoteSaveTool) Definition() mcp.Tool {
	return mcp.NewTool("note_save",
		mcp.WithDescription("Save a note for a user, as if it had been dictated."),
		mcp.WithString("user_id",
			mcp.Required(),
			mcp.Description("Voice platform user id"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Note text"),
		),
	)
}

func (t *NoteSaveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID, errResult := userArg(req)
	if errResult != nil {
		return errResult, nil
	}
	content := req.GetString("content", "")
	if content == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}

	n, err := t.db.SaveNote(userID, content)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save note: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Note saved (ID: %s, at %s)", n.ID, n.CreatedAt)), nil
}
