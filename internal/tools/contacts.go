package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/keapmcp/keap-mcp/internal/keap"
)

func contactTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("keap_create_contact",
				mcp.WithDescription("Create a new contact in Keap with email, name, phone, address, tags, and custom fields"),
				mcp.WithString("given_name", mcp.Description("First name")),
				mcp.WithString("family_name", mcp.Description("Last name")),
				mcp.WithString("email", mcp.Description("Primary email address")),
				mcp.WithString("phone", mcp.Description("Primary phone number")),
				mcp.WithString("company_name", mcp.Description("Company name")),
				mcp.WithString("job_title", mcp.Description("Job title")),
				numberList("tag_ids", "Array of tag IDs to apply"),
				objectList("custom_fields", "Custom field values [{id, content}]"),
				mcp.WithString("address_line1", mcp.Description("Street address line 1")),
				mcp.WithString("address_line2", mcp.Description("Street address line 2")),
				mcp.WithString("city", mcp.Description("City")),
				mcp.WithString("state", mcp.Description("State/Region")),
				mcp.WithString("postal_code", mcp.Description("Postal/ZIP code")),
				mcp.WithString("country", mcp.Description("Country code (e.g., US)")),
				mcp.WithString("opt_in_reason", mcp.Description("Reason for opt-in (required for GDPR)")),
				mcp.WithNumber("owner_id", mcp.Description("User ID of contact owner")),
			),
			Handler: createContact,
		},
		{
			Definition: mcp.NewTool("keap_get_contact",
				mcp.WithDescription("Retrieve a contact by ID with all details including tags, custom fields, and company"),
				idArg("contact_id", "Contact ID"),
				stringList("optional_properties", "Additional fields to include"),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Get(ctx, "/contacts/"+args.ID("contact_id"), map[string]any{
					"optional_properties": args.Joined("optional_properties"),
				})
			},
		},
		{
			Definition: mcp.NewTool("keap_update_contact",
				mcp.WithDescription("Update an existing contact with new information"),
				idArg("contact_id", "Contact ID"),
				mcp.WithString("given_name", mcp.Description("First name")),
				mcp.WithString("family_name", mcp.Description("Last name")),
				mcp.WithString("email", mcp.Description("Primary email address")),
				mcp.WithString("phone", mcp.Description("Primary phone number")),
				mcp.WithString("company_name", mcp.Description("Company name")),
				mcp.WithString("job_title", mcp.Description("Job title")),
				numberList("tag_ids", "Array of tag IDs"),
				objectList("custom_fields", "Custom field values"),
				mcp.WithNumber("owner_id", mcp.Description("User ID of contact owner")),
			),
			Handler: patchByID("/contacts", "contact_id"),
		},
		{
			Definition: mcp.NewTool("keap_delete_contact",
				mcp.WithDescription("Permanently delete a contact from Keap"),
				idArg("contact_id", "Contact ID to delete"),
			),
			Handler: deleteByID("/contacts", "contact_id", "Contact deleted successfully"),
		},
		{
			Definition: mcp.NewTool("keap_list_contacts",
				mcp.WithDescription("List contacts with pagination, filtering, and sorting options"),
				limitArg("Number of results per page (max 200)"),
				offsetArg(),
				mcp.WithString("email", mcp.Description("Filter by email address")),
				mcp.WithString("given_name", mcp.Description("Filter by first name")),
				mcp.WithString("family_name", mcp.Description("Filter by last name")),
				mcp.WithString("order", mcp.Description("Field to order by (e.g., date_created, email)"), mcp.DefaultString("date_created")),
				mcp.WithString("order_direction", mcp.Description("Sort direction"), mcp.Enum("ascending", "descending")),
				mcp.WithString("since", mcp.Description("Filter contacts created/updated after this ISO date")),
				mcp.WithString("until", mcp.Description("Filter contacts created/updated before this ISO date")),
			),
			Handler: list("/contacts"),
		},
		{
			Definition: mcp.NewTool("keap_list_all_contacts",
				mcp.WithDescription("Fetch every contact matching the filters by walking all result pages"),
				mcp.WithNumber("limit", mcp.Description("Page size used while walking (max 200)"), mcp.DefaultNumber(200)),
				mcp.WithString("email", mcp.Description("Filter by email address")),
				mcp.WithString("given_name", mcp.Description("Filter by first name")),
				mcp.WithString("family_name", mcp.Description("Filter by last name")),
				mcp.WithString("since", mcp.Description("Filter contacts created/updated after this ISO date")),
				mcp.WithString("until", mcp.Description("Filter contacts created/updated before this ISO date")),
			),
			Handler: listAllContacts,
		},
		{
			Definition: mcp.NewTool("keap_search_contacts",
				mcp.WithDescription("Search contacts by email, name, phone, or other criteria"),
				mcp.WithString("email", mcp.Description("Search by email address")),
				mcp.WithString("given_name", mcp.Description("Search by first name")),
				mcp.WithString("family_name", mcp.Description("Search by last name")),
				limitArg("Max results"),
			),
			Handler: list("/contacts"),
		},
		{
			Definition: mcp.NewTool("keap_merge_contacts",
				mcp.WithDescription("Merge two contacts together, combining all data into one contact"),
				idArg("source_contact_id", "Contact ID to merge from (will be deleted)"),
				idArg("target_contact_id", "Contact ID to merge into (will be kept)"),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Post(ctx, "/contacts/"+args.ID("target_contact_id")+"/merge", map[string]any{
					"duplicate_contact_id": args.Get("source_contact_id"),
				})
			},
		},
		{
			Definition: mcp.NewTool("keap_apply_tag_to_contact",
				mcp.WithDescription("Apply one or more tags to a contact"),
				idArg("contact_id", "Contact ID"),
				numberList("tag_ids", "Array of tag IDs to apply", mcp.Required()),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Post(ctx, "/contacts/"+args.ID("contact_id")+"/tags", map[string]any{
					"tagIds": args.Get("tag_ids"),
				})
			},
		},
		{
			Definition: mcp.NewTool("keap_remove_tag_from_contact",
				mcp.WithDescription("Remove one or more tags from a contact"),
				idArg("contact_id", "Contact ID"),
				numberList("tag_ids", "Array of tag IDs to remove", mcp.Required()),
			),
			Handler: removeTagsFromContact,
		},
		{
			Definition: mcp.NewTool("keap_get_contact_tags",
				mcp.WithDescription("Get all tags applied to a specific contact"),
				idArg("contact_id", "Contact ID"),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Get(ctx, "/contacts/"+args.ID("contact_id")+"/tags", nil)
			},
		},
		{
			Definition: mcp.NewTool("keap_get_contact_emails",
				mcp.WithDescription("Get all email addresses associated with a contact"),
				idArg("contact_id", "Contact ID"),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Get(ctx, "/contacts/"+args.ID("contact_id")+"/emails", nil)
			},
		},
		{
			Definition: mcp.NewTool("keap_create_contact_email",
				mcp.WithDescription("Add a new email address to a contact"),
				idArg("contact_id", "Contact ID"),
				mcp.WithString("email", mcp.Required(), mcp.Description("Email address")),
				mcp.WithString("field", mcp.Description("Field type (EMAIL1, EMAIL2, EMAIL3)"), mcp.DefaultString("EMAIL1")),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Post(ctx, "/contacts/"+args.ID("contact_id")+"/emails", map[string]any{
					"email": args.Get("email"),
					"field": args.Or("field", "EMAIL1"),
				})
			},
		},
		{
			Definition: mcp.NewTool("keap_delete_contact_email",
				mcp.WithDescription("Remove an email address from a contact"),
				idArg("contact_id", "Contact ID"),
				idArg("email_id", "Email ID to remove"),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				path := "/contacts/" + args.ID("contact_id") + "/emails/" + args.ID("email_id")
				return deleted(ctx, api, path, "Email deleted successfully")
			},
		},
		{
			Definition: mcp.NewTool("keap_get_contact_credit_cards",
				mcp.WithDescription("Get all credit cards on file for a contact"),
				idArg("contact_id", "Contact ID"),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Get(ctx, "/contacts/"+args.ID("contact_id")+"/creditCards", nil)
			},
		},
		{
			Definition: mcp.NewTool("keap_create_contact_credit_card",
				mcp.WithDescription("Add a new credit card to a contact"),
				idArg("contact_id", "Contact ID"),
				mcp.WithString("card_number", mcp.Required(), mcp.Description("Credit card number")),
				mcp.WithString("expiration_month", mcp.Required(), mcp.Description("Expiration month (MM)")),
				mcp.WithString("expiration_year", mcp.Required(), mcp.Description("Expiration year (YYYY)")),
				mcp.WithString("card_type", mcp.Description("Card type (Visa, Mastercard, etc.)")),
				mcp.WithString("name_on_card", mcp.Description("Name as shown on card")),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Post(ctx, "/contacts/"+args.ID("contact_id")+"/creditCards", compact(map[string]any{
					"card_number":      args.Get("card_number"),
					"expiration_month": args.Get("expiration_month"),
					"expiration_year":  args.Get("expiration_year"),
					"card_type":        args.Get("card_type"),
					"name_on_card":     args.Get("name_on_card"),
				}))
			},
		},
		{
			Definition: mcp.NewTool("keap_get_contact_custom_fields",
				mcp.WithDescription("Retrieve custom field values for a contact"),
				idArg("contact_id", "Contact ID"),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Get(ctx, "/contacts/"+args.ID("contact_id"), map[string]any{
					"optional_properties": "custom_fields",
				})
			},
		},
		{
			Definition: mcp.NewTool("keap_update_contact_custom_field",
				mcp.WithDescription("Update a specific custom field value for a contact"),
				idArg("contact_id", "Contact ID"),
				idArg("custom_field_id", "Custom field ID"),
				mcp.WithString("content", mcp.Required(), mcp.Description("New value for the custom field")),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Patch(ctx, "/contacts/"+args.ID("contact_id"), map[string]any{
					"custom_fields": []any{
						map[string]any{
							"id":      args.Get("custom_field_id"),
							"content": args.Get("content"),
						},
					},
				})
			},
		},
		{
			Definition: mcp.NewTool("keap_list_contact_notes",
				mcp.WithDescription("Get all notes for a specific contact"),
				idArg("contact_id", "Contact ID"),
				limitArg("Max results"),
				offsetArg(),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Get(ctx, "/contacts/"+args.ID("contact_id")+"/notes", map[string]any{
					"limit":  args.Get("limit"),
					"offset": args.Get("offset"),
				})
			},
		},
		{
			Definition: mcp.NewTool("keap_get_contact_model",
				mcp.WithDescription("Retrieve the contact model schema including all available custom fields"),
			),
			Handler: get("/contacts/model"),
		},
	}
}

func createContact(ctx context.Context, api API, args Args) (any, error) {
	body := compact(map[string]any{
		"given_name":    args.Get("given_name"),
		"family_name":   args.Get("family_name"),
		"opt_in_reason": args.Get("opt_in_reason"),
	})

	if args.Has("email") {
		body["email_addresses"] = []any{
			map[string]any{"email": args.Get("email"), "field": "EMAIL1"},
		}
	}
	if args.Has("phone") {
		body["phone_numbers"] = []any{
			map[string]any{"number": args.Get("phone"), "field": "PHONE1"},
		}
	}
	if args.Has("address_line1") || args.Has("city") {
		body["addresses"] = []any{
			compact(map[string]any{
				"line1":        args.Get("address_line1"),
				"line2":        args.Get("address_line2"),
				"locality":     args.Get("city"),
				"region":       args.Get("state"),
				"postal_code":  args.Get("postal_code"),
				"country_code": args.Or("country", "US"),
			}),
		}
	}
	if args.Has("company_name") {
		body["company"] = map[string]any{"company_name": args.Get("company_name")}
	}
	for _, key := range []string{"job_title", "tag_ids", "custom_fields", "owner_id"} {
		if args.Has(key) {
			body[key] = args.Get(key)
		}
	}

	return api.Post(ctx, "/contacts", body)
}

func listAllContacts(ctx context.Context, api API, args Args) (any, error) {
	pager, ok := api.(Pager)
	if !ok {
		return nil, errors.New("keap client does not support pagination")
	}
	contacts, err := pager.GetAllPagesByKey(ctx, "/contacts", "contacts", args.Map())
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"contacts": contacts,
		"count":    len(contacts),
	}, nil
}

// removeTagsFromContact issues one DELETE per tag and reports every
// failure rather than stopping at the first.
func removeTagsFromContact(ctx context.Context, api API, args Args) (any, error) {
	contactID := args.ID("contact_id")
	tagIDs := args.List("tag_ids")

	var result *multierror.Error
	removed := make([]any, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		path := fmt.Sprintf("/contacts/%s/tags/%s", contactID, keap.PathID(tagID))
		if _, err := api.Delete(ctx, path); err != nil {
			result = multierror.Append(result, fmt.Errorf("tag %v: %w", tagID, err))
			continue
		}
		removed = append(removed, tagID)
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, &PartialError{Succeeded: removed, Err: err}
	}
	return map[string]any{"success": true, "message": "Tags removed successfully"}, nil
}

// PartialError reports a batch where some items failed.
type PartialError struct {
	Succeeded []any
	Err       error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("removed %d tag(s); %s", len(e.Succeeded), e.Err.Error())
}

func (e *PartialError) Unwrap() error {
	return e.Err
}
