package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func opportunityTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("keap_create_opportunity",
				mcp.WithDescription("Create a new sales opportunity/deal in Keap"),
				mcp.WithString("opportunity_title", mcp.Required(), mcp.Description("Deal/opportunity title")),
				idArg("contact_id", "Contact ID associated with this opportunity"),
				idArg("stage_id", "Pipeline stage ID"),
				mcp.WithNumber("user_id", mcp.Description("User ID (owner of opportunity)")),
				mcp.WithString("estimated_close_date", mcp.Description("Estimated close date (ISO format)")),
				mcp.WithNumber("projected_revenue_low", mcp.Description("Low revenue estimate")),
				mcp.WithNumber("projected_revenue_high", mcp.Description("High revenue estimate")),
				mcp.WithString("opportunity_notes", mcp.Description("Notes about this opportunity")),
				mcp.WithString("next_action_notes", mcp.Description("Next action notes")),
				mcp.WithString("next_action_date", mcp.Description("Next action date (ISO format)")),
				objectList("custom_fields", "Custom fields"),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Post(ctx, "/opportunities", compact(map[string]any{
					"opportunity_title":      args.Get("opportunity_title"),
					"contact":                map[string]any{"id": args.Get("contact_id")},
					"stage":                  map[string]any{"id": args.Get("stage_id")},
					"user":                   args.Get("user_id"),
					"estimated_close_date":   args.Get("estimated_close_date"),
					"projected_revenue_low":  args.Get("projected_revenue_low"),
					"projected_revenue_high": args.Get("projected_revenue_high"),
					"opportunity_notes":      args.Get("opportunity_notes"),
					"next_action_notes":      args.Get("next_action_notes"),
					"next_action_date":       args.Get("next_action_date"),
					"custom_fields":          args.Get("custom_fields"),
				}))
			},
		},
		{
			Definition: mcp.NewTool("keap_get_opportunity",
				mcp.WithDescription("Retrieve an opportunity by ID"),
				idArg("opportunity_id", "Opportunity ID"),
				stringList("optional_properties", "Additional fields to include"),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Get(ctx, "/opportunities/"+args.ID("opportunity_id"), map[string]any{
					"optional_properties": args.Joined("optional_properties"),
				})
			},
		},
		{
			Definition: mcp.NewTool("keap_update_opportunity",
				mcp.WithDescription("Update an existing opportunity"),
				idArg("opportunity_id", "Opportunity ID"),
				mcp.WithString("opportunity_title", mcp.Description("Deal title")),
				mcp.WithNumber("stage_id", mcp.Description("Pipeline stage ID")),
				mcp.WithNumber("user_id", mcp.Description("User ID (owner)")),
				mcp.WithString("estimated_close_date", mcp.Description("Estimated close date")),
				mcp.WithNumber("projected_revenue_low", mcp.Description("Low revenue estimate")),
				mcp.WithNumber("projected_revenue_high", mcp.Description("High revenue estimate")),
				mcp.WithString("opportunity_notes", mcp.Description("Notes")),
				mcp.WithString("next_action_notes", mcp.Description("Next action notes")),
				mcp.WithString("next_action_date", mcp.Description("Next action date")),
			),
			Handler: patchByID("/opportunities", "opportunity_id"),
		},
		{
			Definition: mcp.NewTool("keap_delete_opportunity",
				mcp.WithDescription("Delete an opportunity"),
				idArg("opportunity_id", "Opportunity ID to delete"),
			),
			Handler: deleteByID("/opportunities", "opportunity_id", "Opportunity deleted successfully"),
		},
		{
			Definition: mcp.NewTool("keap_list_opportunities",
				mcp.WithDescription("List opportunities with filtering and pagination"),
				limitArg("Results per page"),
				offsetArg(),
				mcp.WithNumber("user_id", mcp.Description("Filter by user ID")),
				mcp.WithNumber("stage_id", mcp.Description("Filter by pipeline stage")),
				mcp.WithNumber("contact_id", mcp.Description("Filter by contact ID")),
				mcp.WithString("search_term", mcp.Description("Search in title/notes")),
				mcp.WithString("order", mcp.Description("Order by field")),
			),
			Handler: list("/opportunities"),
		},
		{
			Definition: mcp.NewTool("keap_list_opportunity_stage_pipeline",
				mcp.WithDescription("List all pipeline stages for opportunities"),
			),
			Handler: get("/opportunity/stage_pipeline"),
		},
		{
			Definition: mcp.NewTool("keap_get_opportunity_stage_pipeline",
				mcp.WithDescription("Get details of a specific pipeline stage"),
				idArg("stage_id", "Stage ID"),
			),
			Handler: getByID("/opportunity/stage_pipeline", "stage_id"),
		},
		{
			Definition: mcp.NewTool("keap_update_opportunity_stage",
				mcp.WithDescription("Move an opportunity to a different pipeline stage"),
				idArg("opportunity_id", "Opportunity ID"),
				idArg("stage_id", "New stage ID"),
				mcp.WithString("move_to_stage_reason", mcp.Description("Reason for stage change")),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Patch(ctx, "/opportunities/"+args.ID("opportunity_id"), compact(map[string]any{
					"stage":                map[string]any{"id": args.Get("stage_id")},
					"move_to_stage_reason": args.Get("move_to_stage_reason"),
				}))
			},
		},
		{
			Definition: mcp.NewTool("keap_get_opportunity_model",
				mcp.WithDescription("Get the opportunity model schema with custom fields"),
			),
			Handler: get("/opportunities/model"),
		},
	}
}
