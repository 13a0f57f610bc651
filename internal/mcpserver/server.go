// Package mcpserver exposes the Keap tool registry over the Model Context
// Protocol.
package mcpserver

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/keapmcp/keap-mcp/internal/tools"
)

// Name is the server name reported during MCP initialization.
const Name = "keap-mcp-server"

// New returns an MCP server with every registry tool attached.
func New(reg *tools.Registry, version string) *server.MCPServer {
	s := server.NewMCPServer(
		Name,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions(reg)),
	)

	for _, tool := range reg.Tools() {
		s.AddTool(tool.Definition, Handler(reg, tool.Name()))
	}
	return s
}

// Handler adapts one registry tool to an MCP handler. Failures come back as
// results with IsError set, never as a protocol error.
func Handler(reg *tools.Registry, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := reg.Call(ctx, name, req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(tools.ErrorText(name, err)), nil
		}

		text, err := tools.FormatResult(result)
		if err != nil {
			return mcp.NewToolResultError(tools.ErrorText(name, err)), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func instructions(reg *tools.Registry) string {
	var b strings.Builder
	b.WriteString("Tools for the Keap CRM REST API. Every tool name starts with keap_.\n")
	b.WriteString("Domains: ")
	b.WriteString(strings.Join(reg.Domains(), ", "))
	b.WriteString(".\n")
	b.WriteString("List tools page with limit and offset; keap_list_all_contacts walks every page. ")
	b.WriteString("Failed calls return text starting with \"Error executing\".")
	return b.String()
}
