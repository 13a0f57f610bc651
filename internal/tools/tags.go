package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func tagTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("keap_create_tag",
				mcp.WithDescription("Create a new tag in Keap"),
				mcp.WithString("name", mcp.Required(), mcp.Description("Tag name")),
				mcp.WithString("description", mcp.Description("Tag description")),
				mcp.WithNumber("category_id", mcp.Description("Tag category ID")),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Post(ctx, "/tags", compact(map[string]any{
					"name":        args.Get("name"),
					"description": args.Get("description"),
					"category":    ref(args, "category_id"),
				}))
			},
		},
		{
			Definition: mcp.NewTool("keap_get_tag",
				mcp.WithDescription("Retrieve a tag by ID"),
				idArg("tag_id", "Tag ID"),
			),
			Handler: getByID("/tags", "tag_id"),
		},
		{
			Definition: mcp.NewTool("keap_list_tags",
				mcp.WithDescription("List all tags with pagination"),
				limitArg("Results per page"),
				offsetArg(),
				mcp.WithString("category", mcp.Description("Filter by category name")),
			),
			Handler: list("/tags"),
		},
		{
			Definition: mcp.NewTool("keap_create_tag_category",
				mcp.WithDescription("Create a tag category"),
				mcp.WithString("name", mcp.Required(), mcp.Description("Category name")),
				mcp.WithString("description", mcp.Description("Category description")),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Post(ctx, "/tags/categories", compact(map[string]any{
					"name":        args.Get("name"),
					"description": args.Get("description"),
				}))
			},
		},
		{
			Definition: mcp.NewTool("keap_list_tag_categories",
				mcp.WithDescription("List all tag categories"),
			),
			Handler: get("/tags/categories"),
		},
	}
}
