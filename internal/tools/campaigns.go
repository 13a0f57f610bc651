package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func campaignTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("keap_list_campaigns",
				mcp.WithDescription("List all campaigns with pagination"),
				limitArg("Results per page"),
				offsetArg(),
				mcp.WithString("order", mcp.Description("Order by field")),
				mcp.WithString("search_text", mcp.Description("Search in campaign name/description")),
			),
			Handler: list("/campaigns"),
		},
		{
			Definition: mcp.NewTool("keap_get_campaign",
				mcp.WithDescription("Get campaign details by ID"),
				idArg("campaign_id", "Campaign ID"),
			),
			Handler: getByID("/campaigns", "campaign_id"),
		},
		{
			Definition: mcp.NewTool("keap_add_contact_to_campaign",
				mcp.WithDescription("Add a contact to a campaign sequence"),
				idArg("contact_id", "Contact ID"),
				idArg("campaign_id", "Campaign ID"),
			),
			Handler: enroll("campaigns", "campaign_id"),
		},
		{
			Definition: mcp.NewTool("keap_remove_contact_from_campaign",
				mcp.WithDescription("Remove a contact from a campaign sequence"),
				idArg("contact_id", "Contact ID"),
				idArg("campaign_id", "Campaign ID"),
			),
			Handler: unenroll("campaigns", "campaign_id", "Contact removed from campaign"),
		},
		{
			Definition: mcp.NewTool("keap_get_campaign_sequences",
				mcp.WithDescription("Get all sequences for a specific campaign"),
				idArg("campaign_id", "Campaign ID"),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Get(ctx, "/campaigns/"+args.ID("campaign_id")+"/sequences", nil)
			},
		},
		{
			Definition: mcp.NewTool("keap_add_contact_to_sequence",
				mcp.WithDescription("Add a contact to a specific campaign sequence"),
				idArg("contact_id", "Contact ID"),
				idArg("sequence_id", "Sequence ID"),
			),
			Handler: enroll("sequences", "sequence_id"),
		},
		{
			Definition: mcp.NewTool("keap_remove_contact_from_sequence",
				mcp.WithDescription("Remove a contact from a campaign sequence"),
				idArg("contact_id", "Contact ID"),
				idArg("sequence_id", "Sequence ID"),
			),
			Handler: unenroll("sequences", "sequence_id", "Contact removed from sequence"),
		},
	}
}

// enroll POSTs an empty body to /contacts/{contact_id}/{collection}/{idKey}.
func enroll(collection, idKey string) HandlerFunc {
	return func(ctx context.Context, api API, args Args) (any, error) {
		return api.Post(ctx, "/contacts/"+args.ID("contact_id")+"/"+collection+"/"+args.ID(idKey), map[string]any{})
	}
}

func unenroll(collection, idKey, message string) HandlerFunc {
	return func(ctx context.Context, api API, args Args) (any, error) {
		return deleted(ctx, api, "/contacts/"+args.ID("contact_id")+"/"+collection+"/"+args.ID(idKey), message)
	}
}
