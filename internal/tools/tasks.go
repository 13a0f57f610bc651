package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func taskTools() []Tool {
	return []Tool{
		{
			Definition: mcp.NewTool("keap_create_task",
				mcp.WithDescription("Create a new task in Keap"),
				mcp.WithString("title", mcp.Required(), mcp.Description("Task title")),
				mcp.WithString("description", mcp.Description("Task description")),
				mcp.WithNumber("contact_id", mcp.Description("Associated contact ID")),
				mcp.WithString("due_date", mcp.Description("Due date (ISO format)")),
				mcp.WithNumber("remind_time", mcp.Description("Reminder time in minutes before due date")),
				mcp.WithNumber("user_id", mcp.Description("Assigned user ID")),
				mcp.WithNumber("priority", mcp.Description("Priority (1-5)"), mcp.DefaultNumber(3)),
				mcp.WithString("type", mcp.Description("Task type")),
			),
			Handler: func(ctx context.Context, api API, args Args) (any, error) {
				return api.Post(ctx, "/tasks", compact(map[string]any{
					"title":       args.Get("title"),
					"description": args.Get("description"),
					"contact":     ref(args, "contact_id"),
					"due_date":    args.Get("due_date"),
					"remind_time": args.Get("remind_time"),
					"user_id":     args.Get("user_id"),
					"priority":    args.Or("priority", 3),
					"type":        args.Get("type"),
				}))
			},
		},
		{
			Definition: mcp.NewTool("keap_get_task",
				mcp.WithDescription("Retrieve a task by ID"),
				idArg("task_id", "Task ID"),
			),
			Handler: getByID("/tasks", "task_id"),
		},
		{
			Definition: mcp.NewTool("keap_update_task",
				mcp.WithDescription("Update an existing task"),
				idArg("task_id", "Task ID"),
				mcp.WithString("title", mcp.Description("Task title")),
				mcp.WithString("description", mcp.Description("Task description")),
				mcp.WithString("due_date", mcp.Description("Due date")),
				mcp.WithBoolean("completed", mcp.Description("Mark as completed")),
				mcp.WithNumber("priority", mcp.Description("Priority")),
			),
			Handler: patchByID("/tasks", "task_id"),
		},
		{
			Definition: mcp.NewTool("keap_delete_task",
				mcp.WithDescription("Delete a task"),
				idArg("task_id", "Task ID to delete"),
			),
			Handler: deleteByID("/tasks", "task_id", "Task deleted successfully"),
		},
		{
			Definition: mcp.NewTool("keap_list_tasks",
				mcp.WithDescription("List tasks with filtering and pagination"),
				limitArg("Results per page"),
				offsetArg(),
				mcp.WithNumber("user_id", mcp.Description("Filter by assigned user")),
				mcp.WithNumber("contact_id", mcp.Description("Filter by contact")),
				mcp.WithBoolean("completed", mcp.Description("Filter by completion status")),
				mcp.WithString("since", mcp.Description("Tasks created after this date")),
				mcp.WithString("until", mcp.Description("Tasks created before this date")),
			),
			Handler: list("/tasks"),
		},
		{
			Definition: mcp.NewTool("keap_search_tasks",
				mcp.WithDescription("Search tasks by title, description, or other criteria"),
				mcp.WithString("query", mcp.Description("Search query")),
				limitArg("Max results"),
			),
			Handler: list("/tasks/search"),
		},
		{
			Definition: mcp.NewTool("keap_complete_task",
				mcp.WithDescription("Mark a task as completed"),
				idArg("task_id", "Task ID"),
				mcp.WithString("completion_date", mcp.Description("Completion date (ISO format)")),
			),
			Handler: completeTask(time.Now),
		},
		{
			Definition: mcp.NewTool("keap_get_task_model",
				mcp.WithDescription("Get the task model schema"),
			),
			Handler: get("/tasks/model"),
		},
	}
}

func completeTask(now func() time.Time) HandlerFunc {
	return func(ctx context.Context, api API, args Args) (any, error) {
		completedAt := args.Or("completion_date", nil)
		if completedAt == nil {
			completedAt = now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
		}
		return api.Patch(ctx, "/tasks/"+args.ID("task_id"), map[string]any{
			"completed":       true,
			"completion_date": completedAt,
		})
	}
}
