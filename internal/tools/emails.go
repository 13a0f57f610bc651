package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func emailTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("keap_send_email",
				mcp.WithDescription("Send an email to one or more contacts"),
				numberList("contacts", "Array of contact IDs", mcp.Required()),
				mcp.WithString("subject", mcp.Required(), mcp.Description("Email subject")),
				mcp.WithString("html_content", mcp.Description("HTML content of email")),
				mcp.WithString("text_content", mcp.Description("Plain text content of email")),
				mcp.WithString("from_address", mcp.Description("From email address")),
				mcp.WithString("reply_to_address", mcp.Description("Reply-to email address")),
				objectList("attachments", "Email attachments"),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Post(ctx, "/emails", compact(map[string]any{
					"contacts":                args.Get("contacts"),
					"subject":                 args.Get("subject"),
					"html_content":            args.Get("html_content"),
					"text_content":            args.Get("text_content"),
					"sent_from_address":       args.Get("from_address"),
					"sent_from_reply_address": args.Get("reply_to_address"),
					"attachments":             args.Get("attachments"),
				}))
			},
		},
		{
			Definition: mcp.NewTool("keap_get_email",
				mcp.WithDescription("Retrieve an email by ID"),
				idArg("email_id", "Email ID"),
			),
			Handler: getByID("/emails", "email_id"),
		},
		{
			Definition: mcp.NewTool("keap_list_emails",
				mcp.WithDescription("List emails with filtering"),
				mcp.WithNumber("contact_id", mcp.Description("Filter by contact")),
				limitArg("Results per page"),
				offsetArg(),
				mcp.WithString("since", mcp.Description("Emails sent after this date")),
				mcp.WithString("until", mcp.Description("Emails sent before this date")),
			),
			Handler: list("/emails"),
		},
		{
			Definition: mcp.NewTool("keap_create_email_template",
				mcp.WithDescription("Create an email template"),
				mcp.WithString("name", mcp.Required(), mcp.Description("Template name")),
				mcp.WithString("subject", mcp.Required(), mcp.Description("Email subject")),
				mcp.WithString("html_content", mcp.Description("HTML content")),
				mcp.WithString("text_content", mcp.Description("Plain text content")),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Post(ctx, "/emails/templates", compact(map[string]any{
					"name":         args.Get("name"),
					"subject":      args.Get("subject"),
					"html_content": args.Get("html_content"),
					"text_content": args.Get("text_content"),
				}))
			},
		},
		{
			Definition: mcp.NewTool("keap_list_email_templates",
				mcp.WithDescription("List all email templates"),
				limitArg("Results per page"),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Get(ctx, "/emails/templates", map[string]any{"limit": args.Get("limit")})
			},
		},
		{
			Definition: mcp.NewTool("keap_opt_in_contact",
				mcp.WithDescription("Opt in a contact to email communications"),
				mcp.WithString("email", mcp.Required(), mcp.Description("Email address")),
				mcp.WithString("opt_in_reason", mcp.Required(), mcp.Description("Reason for opt-in")),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Post(ctx, "/emails/optIn", compact(map[string]any{
					"email":         args.Get("email"),
					"opt_in_reason": args.Get("opt_in_reason"),
				}))
			},
		},
		{
			Definition: mcp.NewTool("keap_opt_out_contact",
				mcp.WithDescription("Opt out a contact from email communications"),
				mcp.WithString("email", mcp.Required(), mcp.Description("Email address")),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Post(ctx, "/emails/optOut", compact(map[string]any{
					"email": args.Get("email"),
				}))
			},
		},
	}
}
