package output

import (
	"strings"
)

// MarkdownFormatter renders reports as a markdown table.
type MarkdownFormatter struct{}

// Format renders report as Markdown.
func (f *MarkdownFormatter) Format(report Report) (string, error) {
	var sb strings.Builder
	if report.Title != "" {
		sb.WriteString("## " + escapeMarkdownCell(report.Title) + "\n\n")
	}
	if len(report.Rows) == 0 && report.Empty != "" {
		sb.WriteString("_" + report.Empty + "_\n")
		return sb.String(), nil
	}

	untitled := report
	untitled.Title = ""
	sb.WriteString(newWriter(untitled).RenderMarkdown())
	sb.WriteString("\n")
	return sb.String(), nil
}

func escapeMarkdownCell(value string) string {
	return strings.ReplaceAll(value, "|", "\\|")
}
