package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func fileTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("keap_upload_file",
				mcp.WithDescription("Upload a file to Keap"),
				mcp.WithString("file_name", mcp.Required(), mcp.Description("Name of the file")),
				mcp.WithString("file_data", mcp.Required(), mcp.Description("Base64 encoded file data")),
				mcp.WithNumber("contact_id", mcp.Description("Associate with contact ID")),
				mcp.WithBoolean("is_public", mcp.Description("Make file publicly accessible"), mcp.DefaultBool(false)),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Post(ctx, "/files", compact(map[string]any{
					"file_name":  args.Get("file_name"),
					"file_data":  args.Get("file_data"),
					"contact_id": args.Get("contact_id"),
					"is_public":  args.Or("is_public", false),
				}))
			},
		},
		{
			Definition: mcp.NewTool("keap_get_file",
				mcp.WithDescription("Retrieve file metadata by ID"),
				idArg("file_id", "File ID"),
			),
			Handler: getByID("/files", "file_id"),
		},
		{
			Definition: mcp.NewTool("keap_delete_file",
				mcp.WithDescription("Delete a file from Keap"),
				idArg("file_id", "File ID to delete"),
			),
			Handler: deleteByID("/files", "file_id", "File deleted successfully"),
		},
		{
			Definition: mcp.NewTool("keap_list_files",
				mcp.WithDescription("List files with filtering"),
				mcp.WithNumber("contact_id", mcp.Description("Filter by contact")),
				limitArg("Results per page"),
				offsetArg(),
			),
			Handler: list("/files"),
		},
	}
}
