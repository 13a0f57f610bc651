package output

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// TableFormatter renders reports as a rounded ASCII table.
type TableFormatter struct{}

// Format renders report as a table.
func (f *TableFormatter) Format(report Report) (string, error) {
	if len(report.Rows) == 0 && report.Empty != "" {
		return report.Empty, nil
	}
	t := newWriter(report)
	t.SetStyle(table.StyleRounded)
	return t.Render(), nil
}

func newWriter(report Report) table.Writer {
	t := table.NewWriter()
	if report.Title != "" {
		t.SetTitle(report.Title)
	}
	if len(report.Header) > 0 {
		t.AppendHeader(report.Header)
	}
	t.AppendRows(report.Rows)
	if len(report.Footer) > 0 {
		t.AppendFooter(report.Footer)
	}
	return t
}
