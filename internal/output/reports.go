package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/keapmcp/keap-mcp/internal/store"
	"github.com/keapmcp/keap-mcp/internal/tools"
)

const descriptionWidth = 60

// ToolInfo is the listing view of one registered tool.
type ToolInfo struct {
	Name        string   `json:"name"`
	Domain      string   `json:"domain"`
	Description string   `json:"description"`
	Required    []string `json:"required,omitempty"`
}

// ToolsReport lists tools, optionally restricted to one domain.
func ToolsReport(list []tools.Tool, domain string) Report {
	domain = strings.TrimSpace(domain)
	infos := make([]ToolInfo, 0, len(list))
	rows := make([]table.Row, 0, len(list))
	for _, t := range list {
		if domain != "" && !strings.EqualFold(t.Domain, domain) {
			continue
		}
		info := ToolInfo{
			Name:        t.Name(),
			Domain:      t.Domain,
			Description: t.Definition.Description,
			Required:    t.Required(),
		}
		infos = append(infos, info)
		rows = append(rows, table.Row{
			info.Name,
			info.Domain,
			strings.Join(info.Required, ", "),
			truncate(info.Description, descriptionWidth),
		})
	}

	return Report{
		Title:  "Keap Tools",
		Header: table.Row{"Tool", "Domain", "Required", "Description"},
		Rows:   rows,
		Footer: table.Row{fmt.Sprintf("%d tools", len(rows)), "", "", ""},
		Empty:  "(no tools match)",
		Data:   infos,
	}
}

// HistoryReport lists audited tool calls, newest first.
func HistoryReport(calls []store.ToolCall) Report {
	rows := make([]table.Row, 0, len(calls))
	for _, c := range calls {
		detail := c.ErrorKind
		if c.ErrorMessage != "" {
			detail = strings.TrimSpace(detail + ": " + c.ErrorMessage)
		}
		rows = append(rows, table.Row{
			c.CalledAt.UTC().Format(time.RFC3339),
			c.Tool,
			c.Status,
			fmt.Sprintf("%dms", c.DurationMs),
			truncate(detail, descriptionWidth),
		})
	}
	if calls == nil {
		calls = []store.ToolCall{}
	}

	return Report{
		Title:  "Tool Call History",
		Header: table.Row{"Called At", "Tool", "Status", "Duration", "Error"},
		Rows:   rows,
		Empty:  "(no recorded tool calls)",
		Data:   calls,
	}
}

// StatsReport summarizes calls per tool.
func StatsReport(stats []store.ToolStats, since time.Time) Report {
	rows := make([]table.Row, 0, len(stats))
	var calls, errs int
	for _, s := range stats {
		calls += s.Calls
		errs += s.Errors
		rows = append(rows, table.Row{
			s.Tool,
			s.Calls,
			s.Errors,
			fmt.Sprintf("%.1fms", s.AvgDurationMs),
			fmt.Sprintf("%dms", s.MaxDurationMs),
		})
	}
	if stats == nil {
		stats = []store.ToolStats{}
	}

	return Report{
		Title:  "Tool Call Stats since " + since.UTC().Format(time.RFC3339),
		Header: table.Row{"Tool", "Calls", "Errors", "Avg Duration", "Max Duration"},
		Rows:   rows,
		Footer: table.Row{"total", calls, errs, "", ""},
		Empty:  "(no recorded tool calls)",
		Data:   stats,
	}
}

func truncate(value string, width int) string {
	value = strings.Join(strings.Fields(value), " ")
	runes := []rune(value)
	if width <= 3 || len(runes) <= width {
		return value
	}
	return string(runes[:width-3]) + "..."
}
