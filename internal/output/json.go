package output

import (
	"bytes"
	"encoding/json"
	"strings"
)

// JSONFormatter renders report data as JSON.
type JSONFormatter struct {
	Indent bool
}

// Format renders report.Data as JSON.
func (f *JSONFormatter) Format(report Report) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report.Data); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
