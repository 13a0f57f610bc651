package cmd

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/keapmcp/keap-mcp/internal/config"
	apperrors "github.com/keapmcp/keap-mcp/internal/errors"
	"github.com/keapmcp/keap-mcp/internal/observability"
	"github.com/keapmcp/keap-mcp/internal/server/handlers"
)

var healthURL string

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long: `Run a self-health check. Without --url this verifies the binary can
load its configuration; with --url (or a running http transport on the
configured host and port) it queries /health.`,
	Run: func(cmd *cobra.Command, args []string) {
		observability.CLILogger.Info("Running health check...")

		if versionInfo.Version == "" {
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Version information missing", apperrors.NewConfigInvalidError("Version information missing"))
			return
		}
		observability.CLILogger.Info("✅ Version information available", zap.String("version", versionInfo.Version))

		cfg, err := config.Load(cmd.Context())
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Configuration invalid", apperrors.WrapConfigInvalid(cmd.Context(), err, "configuration invalid"))
			return
		}
		observability.CLILogger.Info("✅ Configuration loaded")

		if !cfg.Keap.HasCredentials() {
			observability.CLILogger.Warn("⚠️  No Keap credentials in config (environment fallback may still apply)")
		} else {
			observability.CLILogger.Info("✅ Keap credentials configured")
		}

		target := healthURL
		if target == "" {
			if cfg.MCP.Transport != config.TransportHTTP {
				observability.CLILogger.Info("")
				observability.CLILogger.Info("✅ All health checks passed")
				return
			}
			target = "http://" + net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)) + "/health"
		}

		resp, err := fetchHealth(target)
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitExternalServiceUnavailable, "Server health check failed", err)
			return
		}
		for name, status := range resp.Checks {
			observability.CLILogger.Info(fmt.Sprintf("  %s: %s", name, status))
		}
		observability.CLILogger.Info("")
		observability.CLILogger.Info(fmt.Sprintf("✅ Server is %s", resp.Status), zap.String("url", target))
	},
}

func fetchHealth(url string) (*handlers.HealthResponse, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	res, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close() // nolint:errcheck // best-effort cleanup

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", url, res.Status)
	}
	var body handlers.HealthResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}
	return &body, nil
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().StringVar(&healthURL, "url", "", "health endpoint of a running server (e.g. http://localhost:8080/health)")
}
