package main

import (
	"github.com/joho/godotenv"

	"github.com/keapmcp/keap-mcp/internal/cmd"
	"github.com/keapmcp/keap-mcp/internal/server/handlers"
)

// Version information set via ldflags during build
// Example: go build -ldflags="-X main.version=1.0.0 -X main.commit=abc123 -X main.buildDate=2025-10-28"
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	// A .env in the working directory may carry KEAP_ACCESS_TOKEN and
	// friends; real environment variables win.
	_ = godotenv.Load()

	cmd.SetVersionInfo(version, commit, buildDate)
	handlers.SetVersionInfo(version, commit, buildDate)

	if err := cmd.Execute(); err != nil {
		cmd.ExitWithCodeStderr(cmd.ExitCodeFor(err), "Command execution failed", err)
	}
}
