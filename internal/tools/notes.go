package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func noteTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("keap_create_note",
				mcp.WithDescription("Create a note for a contact"),
				idArg("contact_id", "Contact ID"),
				mcp.WithString("title", mcp.Description("Note title")),
				mcp.WithString("body", mcp.Required(), mcp.Description("Note content")),
				mcp.WithString("type", mcp.Description("Note type (Appointment, Call, Email, etc.)")),
				mcp.WithNumber("user_id", mcp.Description("User ID who created the note")),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Post(ctx, "/notes", compact(map[string]any{
					"contact_id": args.Get("contact_id"),
					"title":      args.Get("title"),
					"body":       args.Get("body"),
					"type":       args.Get("type"),
					"user_id":    args.Get("user_id"),
				}))
			},
		},
		{
			Definition: mcp.NewTool("keap_get_note",
				mcp.WithDescription("Retrieve a note by ID"),
				idArg("note_id", "Note ID"),
			),
			Handler: getByID("/notes", "note_id"),
		},
		{
			Definition: mcp.NewTool("keap_update_note",
				mcp.WithDescription("Update an existing note"),
				idArg("note_id", "Note ID"),
				mcp.WithString("title", mcp.Description("Note title")),
				mcp.WithString("body", mcp.Description("Note content")),
				mcp.WithString("type", mcp.Description("Note type")),
			),
			Handler: patchByID("/notes", "note_id"),
		},
		{
			Definition: mcp.NewTool("keap_delete_note",
				mcp.WithDescription("Delete a note"),
				idArg("note_id", "Note ID to delete"),
			),
			Handler: deleteByID("/notes", "note_id", "Note deleted successfully"),
		},
		{
			Definition: mcp.NewTool("keap_list_notes",
				mcp.WithDescription("List notes for a contact"),
				mcp.WithNumber("contact_id", mcp.Description("Contact ID")),
				mcp.WithNumber("user_id", mcp.Description("Filter by user who created notes")),
				limitArg("Results per page"),
				offsetArg(),
			),
			Handler: list("/notes"),
		},
		{
			Definition: mcp.NewTool("keap_get_note_model",
				mcp.WithDescription("Get the note model schema"),
			),
			Handler: get("/notes/model"),
		},
	}
}
