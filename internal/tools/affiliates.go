package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func affiliateTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("keap_create_affiliate",
				mcp.WithDescription("Create a new affiliate"),
				idArg("contact_id", "Contact ID for this affiliate"),
				mcp.WithString("code", mcp.Required(), mcp.Description("Affiliate code")),
				mcp.WithString("name", mcp.Required(), mcp.Description("Affiliate name")),
				mcp.WithNumber("parent_id", mcp.Description("Parent affiliate ID")),
				mcp.WithNumber("track_leads_for", mcp.Description("Number of days to track leads")),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Post(ctx, "/affiliates", compact(map[string]any{
					"contact_id":      args.Get("contact_id"),
					"code":            args.Get("code"),
					"name":            args.Get("name"),
					"parent_id":       args.Get("parent_id"),
					"track_leads_for": args.Get("track_leads_for"),
				}))
			},
		},
		{
			Definition: mcp.NewTool("keap_get_affiliate",
				mcp.WithDescription("Retrieve an affiliate by ID"),
				idArg("affiliate_id", "Affiliate ID"),
			),
			Handler: getByID("/affiliates", "affiliate_id"),
		},
		{
			Definition: mcp.NewTool("keap_list_affiliates",
				mcp.WithDescription("List all affiliates with filtering"),
				limitArg("Results per page"),
				offsetArg(),
				mcp.WithNumber("status", mcp.Description("Filter by status (0=inactive, 1=active)")),
			),
			Handler: list("/affiliates"),
		},
		{
			Definition: mcp.NewTool("keap_get_affiliate_clawbacks",
				mcp.WithDescription("Get all clawbacks for an affiliate"),
				idArg("affiliate_id", "Affiliate ID"),
			),
			Handler: affiliateResource("clawbacks"),
		},
		{
			Definition: mcp.NewTool("keap_get_affiliate_commissions",
				mcp.WithDescription("Get all commissions for an affiliate"),
				idArg("affiliate_id", "Affiliate ID"),
				mcp.WithString("since", mcp.Description("Commissions after this date")),
				mcp.WithString("until", mcp.Description("Commissions before this date")),
				limitArg("Results per page"),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Get(ctx, "/affiliates/"+args.ID("affiliate_id")+"/commissions", map[string]any{
					"since": args.Get("since"),
					"until": args.Get("until"),
					"limit": args.Get("limit"),
				})
			},
		},
		{
			Definition: mcp.NewTool("keap_get_affiliate_payments",
				mcp.WithDescription("Get all payments for an affiliate"),
				idArg("affiliate_id", "Affiliate ID"),
			),
			Handler: affiliateResource("payments"),
		},
		{
			Definition: mcp.NewTool("keap_get_affiliate_redirect_links",
				mcp.WithDescription("Get redirect links for an affiliate"),
				idArg("affiliate_id", "Affiliate ID"),
			),
			Handler: affiliateResource("redirectLinks"),
		},
		{
			Definition: mcp.NewTool("keap_get_affiliate_summary",
				mcp.WithDescription("Get summary stats for an affiliate"),
				idArg("affiliate_id", "Affiliate ID"),
			),
			Handler: affiliateResource("summaries"),
		},
		{
			Definition: mcp.NewTool("keap_list_commissions",
				mcp.WithDescription("List all commissions with filtering"),
				mcp.WithNumber("affiliate_id", mcp.Description("Filter by affiliate")),
				mcp.WithNumber("contact_id", mcp.Description("Filter by contact")),
				limitArg("Results per page"),
				offsetArg(),
				mcp.WithString("since", mcp.Description("Commissions after this date")),
				mcp.WithString("until", mcp.Description("Commissions before this date")),
			),
			Handler: list("/commissions"),
		},
	}
}

func affiliateResource(sub string) HandlerFunc {
	return func(ctx context.Context, api API, args Args) (any, error) {
		return api.Get(ctx, "/affiliates/"+args.ID("affiliate_id")+"/"+sub, nil)
	}
}
