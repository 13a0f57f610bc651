package cmd

import (
	"github.com/spf13/cobra"

	"github.com/keapmcp/keap-mcp/internal/output"
	"github.com/keapmcp/keap-mcp/internal/tools"
)

var toolsDomain string

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the Keap tools exposed over MCP",
	Long: `List every tool the MCP server registers, with its domain and required
arguments. No Keap credentials are needed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := tools.NewRegistry(nil)
		return writeReport(cmd, "tools", output.ToolsReport(reg.Tools(), toolsDomain))
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
	toolsCmd.Flags().StringVar(&toolsDomain, "domain", "", "only list tools in this domain (contacts, tags, ...)")
	addOutputFlags(toolsCmd)
}
