package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func appointmentTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("keap_create_appointment",
				mcp.WithDescription("Create a new appointment in Keap"),
				mcp.WithString("title", mcp.Required(), mcp.Description("Appointment title")),
				mcp.WithString("start_date", mcp.Required(), mcp.Description("Start date/time (ISO format)")),
				mcp.WithString("end_date", mcp.Required(), mcp.Description("End date/time (ISO format)")),
				mcp.WithString("description", mcp.Description("Appointment description")),
				mcp.WithString("location", mcp.Description("Location")),
				mcp.WithNumber("contact_id", mcp.Description("Associated contact ID")),
				mcp.WithNumber("user_id", mcp.Description("Assigned user ID")),
				mcp.WithNumber("remind_time", mcp.Description("Reminder time in minutes before appointment")),
				mcp.WithBoolean("all_day", mcp.Description("Is this an all-day event?"), mcp.DefaultBool(false)),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Post(ctx, "/appointments", compact(map[string]any{
					"title":       args.Get("title"),
					"start_date":  args.Get("start_date"),
					"end_date":    args.Get("end_date"),
					"description": args.Get("description"),
					"location":    args.Get("location"),
					"contact":     ref(args, "contact_id"),
					"user":        args.Get("user_id"),
					"remind_time": args.Get("remind_time"),
					"all_day":     args.Or("all_day", false),
				}))
			},
		},
		{
			Definition: mcp.NewTool("keap_get_appointment",
				mcp.WithDescription("Retrieve an appointment by ID"),
				idArg("appointment_id", "Appointment ID"),
			),
			Handler: getByID("/appointments", "appointment_id"),
		},
		{
			Definition: mcp.NewTool("keap_update_appointment",
				mcp.WithDescription("Update an existing appointment"),
				idArg("appointment_id", "Appointment ID"),
				mcp.WithString("title", mcp.Description("Appointment title")),
				mcp.WithString("start_date", mcp.Description("Start date/time")),
				mcp.WithString("end_date", mcp.Description("End date/time")),
				mcp.WithString("description", mcp.Description("Description")),
				mcp.WithString("location", mcp.Description("Location")),
			),
			Handler: patchByID("/appointments", "appointment_id"),
		},
		{
			Definition: mcp.NewTool("keap_delete_appointment",
				mcp.WithDescription("Delete an appointment"),
				idArg("appointment_id", "Appointment ID to delete"),
			),
			Handler: deleteByID("/appointments", "appointment_id", "Appointment deleted successfully"),
		},
		{
			Definition: mcp.NewTool("keap_list_appointments",
				mcp.WithDescription("List appointments with filtering and pagination"),
				limitArg("Results per page"),
				offsetArg(),
				mcp.WithNumber("user_id", mcp.Description("Filter by user")),
				mcp.WithNumber("contact_id", mcp.Description("Filter by contact")),
				mcp.WithString("since", mcp.Description("Appointments after this date")),
				mcp.WithString("until", mcp.Description("Appointments before this date")),
			),
			Handler: list("/appointments"),
		},
		{
			Definition: mcp.NewTool("keap_get_appointment_model",
				mcp.WithDescription("Get the appointment model schema"),
			),
			Handler: get("/appointments/model"),
		},
	}
}
