package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keapmcp/keap-mcp/internal/output"
)

var nonFilename = regexp.MustCompile(`[^a-z0-9._-]+`)

func sanitizeFilename(value string) string {
	clean := nonFilename.ReplaceAllString(strings.ToLower(strings.TrimSpace(value)), "-")
	if clean = strings.Trim(clean, "-."); clean == "" {
		return "output"
	}
	return clean
}

// addOutputFlags registers --output-format, --out and --out-dir.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output-format", "o", string(output.FormatTable), "Output format: table|markdown|json|yaml")
	cmd.Flags().String("out", "", "Write output to a file (default stdout)")
	cmd.Flags().String("out-dir", "", "Write output to a directory")
}

// outputTarget is where and how a report is written.
type outputTarget struct {
	format output.Format
	path   string // empty or "-" means stdout
}

func outputTargetFor(cmd *cobra.Command, name string) (outputTarget, error) {
	formatFlag, _ := cmd.Flags().GetString("output-format")
	format, err := output.ParseFormat(formatFlag)
	if err != nil {
		return outputTarget{}, err
	}

	outPath, _ := cmd.Flags().GetString("out")
	outDir, _ := cmd.Flags().GetString("out-dir")
	outPath, outDir = strings.TrimSpace(outPath), strings.TrimSpace(outDir)

	switch {
	case outPath != "" && outDir != "":
		return outputTarget{}, fmt.Errorf("--out and --out-dir are mutually exclusive")
	case outDir != "":
		if abs, err := filepath.Abs(outDir); err == nil {
			outDir = abs
		}
		outPath = filepath.Join(outDir, sanitizeFilename(name)+"."+format.Extension())
	}
	return outputTarget{format: format, path: outPath}, nil
}

// writeReport renders report in the requested format to stdout or a file.
// With --out-dir the file is named <name>.<ext>.
func writeReport(cmd *cobra.Command, name string, report output.Report) error {
	target, err := outputTargetFor(cmd, name)
	if err != nil {
		return err
	}
	rendered, err := output.Render(target.format, report)
	if err != nil {
		return err
	}

	if target.path == "" || target.path == "-" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return err
	}

	// #nosec G301 -- report directories are user-chosen
	if err := os.MkdirAll(filepath.Dir(target.path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	// #nosec G306 -- reports hold no credentials
	if err := os.WriteFile(target.path, []byte(rendered+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", target.path, err)
	}
	return nil
}
