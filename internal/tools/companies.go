package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func companyTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("keap_create_company",
				mcp.WithDescription("Create a new company in Keap"),
				mcp.WithString("company_name", mcp.Required(), mcp.Description("Company name")),
				mcp.WithString("email", mcp.Description("Company email")),
				mcp.WithString("phone", mcp.Description("Company phone")),
				mcp.WithString("address_line1", mcp.Description("Street address")),
				mcp.WithString("city", mcp.Description("City")),
				mcp.WithString("state", mcp.Description("State/Region")),
				mcp.WithString("postal_code", mcp.Description("Postal code")),
				mcp.WithString("country", mcp.Description("Country code")),
				mcp.WithString("website", mcp.Description("Company website")),
				mcp.WithString("notes", mcp.Description("Notes about the company")),
			),
			Handler: createCompany,
		},
		{
			Definition: mcp.NewTool("keap_get_company",
				mcp.WithDescription("Retrieve a company by ID"),
				idArg("company_id", "Company ID"),
			),
			Handler: getByID("/companies", "company_id"),
		},
		{
			Definition: mcp.NewTool("keap_update_company",
				mcp.WithDescription("Update an existing company"),
				idArg("company_id", "Company ID"),
				mcp.WithString("company_name", mcp.Description("Company name")),
				mcp.WithString("email", mcp.Description("Company email")),
				mcp.WithString("phone", mcp.Description("Company phone")),
				mcp.WithString("website", mcp.Description("Company website")),
				mcp.WithString("notes", mcp.Description("Notes")),
			),
			Handler: patchByID("/companies", "company_id"),
		},
		{
			Definition: mcp.NewTool("keap_list_companies",
				mcp.WithDescription("List all companies with pagination"),
				limitArg("Results per page"),
				offsetArg(),
				mcp.WithString("company_name", mcp.Description("Filter by company name")),
				mcp.WithString("order", mcp.Description("Order by field")),
			),
			Handler: list("/companies"),
		},
		{
			Definition: mcp.NewTool("keap_get_company_contacts",
				mcp.WithDescription("Get all contacts associated with a company"),
				idArg("company_id", "Company ID"),
				limitArg("Max results"),
				offsetArg(),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Get(ctx, "/companies/"+args.ID("company_id")+"/contacts", map[string]any{
					"limit":  args.Get("limit"),
					"offset": args.Get("offset"),
				})
			},
		},
	}
}

func createCompany(ctx context.Context, api API, args Args) (any, error) {
	body := compact(map[string]any{
		"company_name": args.Get("company_name"),
		"website":      args.Get("website"),
		"notes":        args.Get("notes"),
	})
	if args.Has("email") {
		body["email_address"] = map[string]any{"email": args.Get("email")}
	}
	if args.Has("phone") {
		body["phone_number"] = map[string]any{"number": args.Get("phone")}
	}
	if args.Has("address_line1") {
		body["address"] = compact(map[string]any{
			"line1":        args.Get("address_line1"),
			"locality":     args.Get("city"),
			"region":       args.Get("state"),
			"postal_code":  args.Get("postal_code"),
			"country_code": args.Get("country"),
		})
	}
	return api.Post(ctx, "/companies", body)
}
