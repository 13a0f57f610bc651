package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/keapmcp/keap-mcp/internal/config"
	"github.com/keapmcp/keap-mcp/internal/observability"
)

var envInfoCmd = &cobra.Command{
	Use:   "envinfo",
	Short: "Display environment information",
	Long:  "Display environment, configuration, and version information. Secrets are reported as set or not set.",
	Run: func(cmd *cobra.Command, args []string) {
		version := crucible.GetVersion()
		log := observability.CLILogger

		log.Info("=== keap-mcp Environment Information ===")
		log.Info("")

		identity := GetAppIdentity()
		log.Info("Application:")
		log.Info("  Name:       " + identity.BinaryName)
		log.Info("  Version:    " + versionInfo.Version)
		log.Info("  Commit:     " + versionInfo.Commit)
		log.Info("  Built:      " + versionInfo.BuildDate)
		log.Info("  Env Prefix: " + identity.EnvPrefix)
		log.Info("")

		log.Info("SSOT:")
		log.Info("  Gofulmen:   "+version.Gofulmen, zap.String("gofulmen_version", version.Gofulmen))
		log.Info("  Crucible:   "+version.Crucible, zap.String("crucible_version", version.Crucible))
		log.Info("")

		log.Info("Runtime:")
		log.Info("  Go Version: "+runtime.Version(), zap.String("go_version", runtime.Version()))
		log.Info("  GOOS:       "+runtime.GOOS, zap.String("goos", runtime.GOOS))
		log.Info("  GOARCH:     "+runtime.GOARCH, zap.String("goarch", runtime.GOARCH))
		log.Info(fmt.Sprintf("  NumCPU:     %d", runtime.NumCPU()), zap.Int("num_cpu", runtime.NumCPU()))
		log.Info("")

		cfg, err := config.Load(cmd.Context())
		if err != nil {
			log.Warn("Config load failed", zap.Error(err))
			return
		}

		log.Info("Keap:")
		log.Info("  Base URL:       "+cfg.Keap.BaseURL, zap.String("base_url", cfg.Keap.BaseURL))
		log.Info("  Base URL v2:    "+cfg.Keap.BaseURLV2, zap.String("base_url_v2", cfg.Keap.BaseURLV2))
		log.Info("  Access Token:   " + secretStatus(cfg.Keap.AccessToken))
		log.Info("  API Key:        " + secretStatus(cfg.Keap.APIKey))
		log.Info("  Timeout:        " + cfg.Keap.Timeout.String())
		log.Info(fmt.Sprintf("  Requests/sec:   %g", cfg.Keap.RequestsPerSecond))
		log.Info(fmt.Sprintf("  Page Limit:     %d", cfg.Keap.PageLimit))
		log.Info(fmt.Sprintf("  Max Retries:    %d", cfg.Keap.Retry.MaxRetries))
		log.Info("")

		log.Info("MCP:")
		log.Info("  Transport:      "+cfg.MCP.Transport, zap.String("transport", cfg.MCP.Transport))
		log.Info("  Path:           " + cfg.MCP.Path)
		log.Info(fmt.Sprintf("  HTTP Address:   %s:%d", cfg.Server.Host, cfg.Server.Port))
		log.Info("")

		log.Info("Audit:")
		log.Info(fmt.Sprintf("  Enabled:        %t", cfg.Audit.Enabled), zap.Bool("audit_enabled", cfg.Audit.Enabled))
		log.Info("  Driver:         " + cfg.Audit.Driver)
		if strings.TrimSpace(cfg.Audit.URL) != "" {
			log.Info("  URL:            " + cfg.Audit.URL)
			log.Info("  Auth Token:     " + secretStatus(cfg.Audit.AuthToken))
		} else {
			log.Info("  Path:           " + cfg.Audit.Path)
		}
		log.Info("  Retention:      " + cfg.Audit.Retention.String())
		log.Info("")

		log.Info("Observability:")
		log.Info("  Log Level:      "+cfg.Logging.Level, zap.String("log_level", cfg.Logging.Level))
		log.Info("  Log Profile:    "+cfg.Logging.Profile, zap.String("log_profile", cfg.Logging.Profile))
		log.Info(fmt.Sprintf("  Metrics:        %t (port %d)", cfg.Metrics.Enabled, cfg.Metrics.Port))
		log.Info("  Config File:    "+config.DefaultConfigPath(), zap.String("config_file", config.DefaultConfigPath()))
		log.Info("")

		log.Info("=== End Environment Information ===")
	},
}

func secretStatus(value string) string {
	if strings.TrimSpace(value) != "" {
		return "(set)"
	}
	return "(not set)"
}

func init() {
	rootCmd.AddCommand(envInfoCmd)
}
