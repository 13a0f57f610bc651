package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func settingsTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("keap_get_account_profile",
				mcp.WithDescription("Get the account profile information"),
			),
			Handler: get("/account/profile"),
		},
		{
			Definition: mcp.NewTool("keap_update_account_profile",
				mcp.WithDescription("Update account profile settings"),
				mcp.WithString("name", mcp.Description("Business name")),
				mcp.WithString("email", mcp.Description("Business email")),
				mcp.WithString("phone", mcp.Description("Business phone")),
				mcp.WithString("address", mcp.Description("Business address")),
				mcp.WithString("website", mcp.Description("Business website")),
				mcp.WithString("time_zone", mcp.Description("Time zone")),
				mcp.WithString("currency_code", mcp.Description("Currency code (e.g., USD)")),
				mcp.WithString("language_tag", mcp.Description("Language tag (e.g., en-US)")),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Patch(ctx, "/account/profile", args.Map())
			},
		},
		{
			Definition: mcp.NewTool("keap_list_users",
				mcp.WithDescription("List all users in the account"),
				mcp.WithBoolean("include_inactive", mcp.Description("Include inactive users"), mcp.DefaultBool(false)),
				limitArg("Results per page"),
			),
			Handler: list("/users"),
		},
		{
			Definition: mcp.NewTool("keap_get_application_configuration",
				mcp.WithDescription("Get application configuration settings"),
			),
			Handler: get("/setting/application/configuration"),
		},
		{
			Definition: mcp.NewTool("keap_list_custom_fields",
				mcp.WithDescription("List all custom fields for a given entity type"),
				mcp.WithString("entity_type", mcp.Required(), mcp.Description("Entity type (Contact, Company, Opportunity, etc.)")),
			),
			Handler: getByID("/customFields", "entity_type"),
		},
	}
}
