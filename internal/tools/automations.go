package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// automationTools manage REST hooks. Hook keys are strings, not numeric IDs.
func automationTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("keap_create_hook",
				mcp.WithDescription("Create a REST hook for automation (webhook)"),
				mcp.WithString("eventKey", mcp.Required(), mcp.Description("Event key (e.g., contact.add, opportunity.add)")),
				mcp.WithString("hookUrl", mcp.Required(), mcp.Description("Webhook URL to call")),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Post(ctx, "/hooks", compact(map[string]any{
					"eventKey": args.Get("eventKey"),
					"hookUrl":  args.Get("hookUrl"),
				}))
			},
		},
		{
			Definition: mcp.NewTool("keap_list_hooks",
				mcp.WithDescription("List all REST hooks"),
			),
			Handler: get("/hooks"),
		},
		{
			Definition: mcp.NewTool("keap_delete_hook",
				mcp.WithDescription("Delete a REST hook"),
				mcp.WithString("hook_key", mcp.Required(), mcp.Description("Hook key to delete")),
			),
			Handler: deleteByID("/hooks", "hook_key", "Hook deleted successfully"),
		},
		{
			Definition: mcp.NewTool("keap_verify_hook",
				mcp.WithDescription("Verify a REST hook"),
				mcp.WithString("hook_key", mcp.Required(), mcp.Description("Hook key to verify")),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Post(ctx, "/hooks/"+args.ID("hook_key")+"/verify", map[string]any{})
			},
		},
		{
			Definition: mcp.NewTool("keap_update_hook",
				mcp.WithDescription("Update a REST hook"),
				mcp.WithString("hook_key", mcp.Required(), mcp.Description("Hook key to update")),
				mcp.WithString("hookUrl", mcp.Description("New webhook URL")),
				mcp.WithString("status", mcp.Description("Hook status (Active, Inactive)")),
			),
			Handler: patchByID("/hooks", "hook_key"),
		},
		{
			Definition: mcp.NewTool("keap_list_hook_event_types",
				mcp.WithDescription("List all available hook event types"),
			),
			Handler: get("/hooks/event_keys"),
		},
	}
}
