package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/ascii"
	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/keapmcp/keap-mcp/internal/config"
	apperrors "github.com/keapmcp/keap-mcp/internal/errors"
	"github.com/keapmcp/keap-mcp/internal/keap"
	"github.com/keapmcp/keap-mcp/internal/observability"
	"github.com/keapmcp/keap-mcp/internal/store"
)

const doctorTotalChecks = 7

var doctorOffline bool

// doctorReport prints numbered check lines.
type doctorReport struct {
	total  int
	failed bool
}

func (d *doctorReport) pass(n int, label, detail string, fields ...zap.Field) {
	observability.CLILogger.Info(fmt.Sprintf("[%d/%d] Checking %s... ✅ %s", n, d.total, label, detail), fields...)
}

func (d *doctorReport) warn(n int, label, detail string, fields ...zap.Field) {
	observability.CLILogger.Warn(fmt.Sprintf("[%d/%d] Checking %s... ⚠️  %s", n, d.total, label, detail), fields...)
}

func (d *doctorReport) fail(n int, label, detail string, fields ...zap.Field) {
	d.failed = true
	observability.CLILogger.Error(fmt.Sprintf("[%d/%d] Checking %s... ❌ %s", n, d.total, label, detail), fields...)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run diagnostic checks",
	Long: `Run diagnostic checks on the installation, configuration, audit store
and Keap connectivity. Use --offline to skip the live Keap request.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		identity := GetAppIdentity()
		observability.CLILogger.Info("=== " + identity.BinaryName + " doctor ===")
		observability.CLILogger.Info("")
		observability.CLILogger.Info("Running diagnostic checks...")
		observability.CLILogger.Info("")

		report := &doctorReport{total: doctorTotalChecks}

		goVersion := runtime.Version()
		if goVersion >= "go1.23" {
			report.pass(1, "Go version", goVersion, zap.String("go_version", goVersion))
		} else {
			report.warn(1, "Go version", goVersion+" (recommended: go1.23+)", zap.String("go_version", goVersion))
		}

		version := crucible.GetVersion()
		if version.Crucible != "" && version.Gofulmen != "" {
			report.pass(2, "Gofulmen/Crucible", fmt.Sprintf("v%s / v%s", version.Gofulmen, version.Crucible),
				zap.String("gofulmen_version", version.Gofulmen),
				zap.String("crucible_version", version.Crucible))
		} else {
			report.fail(2, "Gofulmen/Crucible", "version metadata unavailable")
		}

		configPath := config.DefaultConfigPath()
		switch {
		case cfgFile != "":
			report.pass(3, "config file", cfgFile+" (--config)")
		case configPath == "":
			report.warn(3, "config file", "cannot resolve config directory")
		case fileExists(configPath):
			report.pass(3, "config file", configPath, zap.String("config_path", configPath))
		default:
			report.warn(3, "config file", configPath+" (not created; run 'doctor init')", zap.String("config_path", configPath))
		}

		cfg, cfgErr := config.Load(ctx)
		if cfgErr != nil {
			report.fail(4, "configuration", "invalid", zap.Error(cfgErr))
		} else {
			report.pass(4, "configuration", fmt.Sprintf("transport=%s", cfg.MCP.Transport))
		}

		if cfgErr != nil {
			report.warn(5, "Keap credentials", "skipped (config not loaded)")
			report.warn(6, "audit store", "skipped (config not loaded)")
			report.warn(7, "Keap connectivity", "skipped (config not loaded)")
			finishDoctor(report, identity.BinaryName)
			return
		}

		client, clientErr := newKeapClient(cfg.Keap, observability.CLILogger)
		if clientErr != nil {
			report.fail(5, "Keap credentials", clientErr.Error())
		} else {
			report.pass(5, "Keap credentials", credentialKind(cfg.Keap))
		}

		snapshot := checkAuditStore(ctx, report, cfg.Audit)

		switch {
		case doctorOffline:
			report.warn(7, "Keap connectivity", "skipped (--offline)")
		case clientErr != nil:
			report.warn(7, "Keap connectivity", "skipped (no credentials)")
		default:
			checkKeapConnectivity(ctx, report, client)
		}

		if snapshot != nil {
			printRateLimitBox(cmd.OutOrStdout(), snapshot)
		}
		finishDoctor(report, identity.BinaryName)
	},
}

func credentialKind(cfg config.KeapConfig) string {
	token := cfg.AccessToken != "" || os.Getenv(keap.EnvAccessToken) != ""
	key := cfg.APIKey != "" || os.Getenv(keap.EnvAPIKey) != ""
	switch {
	case token && key:
		return "access token + API key"
	case token:
		return "access token"
	default:
		return "API key"
	}
}

func checkAuditStore(ctx context.Context, report *doctorReport, cfg config.AuditConfig) *store.RateLimitSnapshot {
	location := cfg.URL
	if location == "" {
		location, _ = filepath.Abs(cfg.Path)
	}
	if !cfg.Enabled {
		report.warn(6, "audit store", "disabled (set audit.enabled to record tool calls)")
		return nil
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		report.fail(6, "audit store", location, zap.Error(err))
		return nil
	}
	defer db.Close() // nolint:errcheck // best-effort cleanup

	if err := db.CheckHealth(ctx); err != nil {
		report.fail(6, "audit store", location, zap.Error(err))
		return nil
	}

	detail := fmt.Sprintf("%s (%s)", location, db.Driver())
	if cfg.URL == "" {
		if info, statErr := os.Stat(location); statErr == nil {
			detail = fmt.Sprintf("%s (%s)", location, formatFileSize(info.Size()))
		}
	}
	report.pass(6, "audit store", detail, zap.String("audit_location", location))

	snapshot, err := db.GetRateLimitSnapshot(ctx, "v1")
	if err != nil {
		observability.CLILogger.Warn("Cannot read rate limit snapshot", zap.Error(err))
		return nil
	}
	return snapshot
}

func checkKeapConnectivity(ctx context.Context, report *doctorReport, client *keap.Client) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	start := time.Now()
	_, err := client.Get(ctx, "/account/profile", nil)
	elapsed := time.Since(start).Round(time.Millisecond)
	if err != nil {
		env := apperrors.FromToolError(ctx, err)
		report.fail(7, "Keap connectivity", env.Code+": "+err.Error(),
			zap.String("error_code", env.Code),
			zap.Duration("elapsed", elapsed))
		return
	}

	rl := client.RateLimit()
	report.pass(7, "Keap connectivity", fmt.Sprintf("account profile in %s, %d requests remaining", elapsed, rl.Remaining),
		zap.Duration("elapsed", elapsed),
		zap.Int("rate_limit_remaining", rl.Remaining))
}

func printRateLimitBox(w io.Writer, snap *store.RateLimitSnapshot) {
	lines := []string{
		"Last observed Keap quota",
		"",
		fmt.Sprintf("api:        %s", snap.API),
		fmt.Sprintf("remaining:  %d", snap.Remaining),
		fmt.Sprintf("resets at:  %s", snap.ResetAt.UTC().Format(time.RFC3339)),
		fmt.Sprintf("observed:   %s", formatTimeAgo(snap.ObservedAt)),
	}
	_, _ = fmt.Fprint(w, ascii.DrawBox(strings.Join(lines, "\n"), 0))
}

func finishDoctor(report *doctorReport, appName string) {
	observability.CLILogger.Info("")
	if report.failed {
		observability.CLILogger.Warn("⚠️  Some checks failed. Review the output above for details.")
		observability.CLILogger.Info("")
		observability.CLILogger.Info("=== End Diagnostics ===")
		ExitWithCode(observability.CLILogger, foundry.ExitFailure, "doctor found problems", nil)
		return
	}
	observability.CLILogger.Info(fmt.Sprintf("✅ All checks passed! Your %s installation is healthy.", appName))
	observability.CLILogger.Info("")
	observability.CLILogger.Info("=== End Diagnostics ===")
}

var (
	doctorInitForce       bool
	doctorInitAccessToken string
	doctorInitAudit       bool
	doctorResetConfig     bool
	doctorResetData       bool
	doctorResetAll        bool
)

var doctorInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.DefaultConfigPath()
		if configPath == "" {
			return fmt.Errorf("config path not resolved")
		}

		if _, err := os.Stat(configPath); err == nil && !doctorInitForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
		}

		token := strings.TrimSpace(doctorInitAccessToken)
		if strings.EqualFold(token, "prompt") {
			value, err := promptForValue(cmd.OutOrStdout(), cmd.InOrStdin(), "Enter Keap access token (leave blank to skip): ")
			if err != nil {
				return err
			}
			token = value
		}

		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}

		mode := os.FileMode(0644)
		if token != "" {
			mode = 0600
		}

		if err := os.WriteFile(configPath, []byte(buildInitConfig(token, doctorInitAudit)), mode); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}

		observability.CLILogger.Info("Config initialized", zap.String("path", configPath))
		return nil
	},
}

var doctorConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration status and paths",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.DefaultConfigPath()
		dataDir := config.DefaultDataDir()

		observability.CLILogger.Info("Configuration:")
		observability.CLILogger.Info(fmt.Sprintf("  Config file:    %s (%s)", configPath, existenceStatus(fileExists(configPath))))
		if dataDir != "" {
			observability.CLILogger.Info(fmt.Sprintf("  Data directory: %s (%s)", dataDir, existenceStatus(fileExists(dataDir))))
		} else {
			observability.CLILogger.Info("  Data directory: (not resolved)")
		}

		cfg, err := config.Load(cmd.Context())
		if err != nil {
			observability.CLILogger.Warn("Config load failed", zap.Error(err))
			return nil
		}

		if cfg.Audit.URL != "" {
			observability.CLILogger.Info(fmt.Sprintf("  Audit store:    %s (remote)", cfg.Audit.URL))
		} else {
			absPath, _ := filepath.Abs(cfg.Audit.Path)
			if info, statErr := os.Stat(absPath); statErr == nil {
				observability.CLILogger.Info(fmt.Sprintf("  Audit store:    %s (%s)", absPath, formatFileSize(info.Size())))
			} else {
				observability.CLILogger.Info(fmt.Sprintf("  Audit store:    %s (not created yet)", absPath))
			}
		}

		observability.CLILogger.Info("")
		observability.CLILogger.Info("Environment:")
		for _, name := range []string{keap.EnvAccessToken, keap.EnvAPIKey, config.EnvPrefix + "_KEAP_ACCESS_TOKEN", GetAppIdentity().EnvPrefix + "ADMIN_TOKEN"} {
			observability.CLILogger.Info(fmt.Sprintf("  %s: %s", name, envStatus(name)))
		}

		observability.CLILogger.Info("")
		observability.CLILogger.Info("Effective Settings:")
		observability.CLILogger.Info(fmt.Sprintf("  keap.base_url: %s", cfg.Keap.BaseURL))
		observability.CLILogger.Info(fmt.Sprintf("  keap.timeout: %s", cfg.Keap.Timeout))
		observability.CLILogger.Info(fmt.Sprintf("  keap.retry.max_retries: %d", cfg.Keap.Retry.MaxRetries))
		observability.CLILogger.Info(fmt.Sprintf("  mcp.transport: %s", cfg.MCP.Transport))
		observability.CLILogger.Info(fmt.Sprintf("  audit.enabled: %t", cfg.Audit.Enabled))
		observability.CLILogger.Info(fmt.Sprintf("  metrics.enabled: %t", cfg.Metrics.Enabled))
		return nil
	},
}

var doctorResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset user configuration and/or data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if doctorResetAll {
			doctorResetConfig = true
			doctorResetData = true
		}

		if !doctorResetConfig && !doctorResetData {
			return fmt.Errorf("specify --config, --data, or --all")
		}

		if doctorResetConfig {
			configPath := config.DefaultConfigPath()
			if configPath == "" {
				observability.CLILogger.Warn("Config path not resolved; skipping config reset")
			} else if err := os.Remove(configPath); err == nil {
				observability.CLILogger.Info("Config removed", zap.String("path", configPath))
			} else if os.IsNotExist(err) {
				observability.CLILogger.Info("Config already removed", zap.String("path", configPath))
			} else {
				return fmt.Errorf("remove config file: %w", err)
			}
		}

		if doctorResetData {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Audit.URL != "" {
				return fmt.Errorf("remote audit store configured; database reset is not supported")
			}

			absPath, _ := filepath.Abs(cfg.Audit.Path)
			if err := os.Remove(absPath); err == nil {
				observability.CLILogger.Info("Audit store removed", zap.String("path", absPath))
			} else if os.IsNotExist(err) {
				observability.CLILogger.Info("Audit store already removed", zap.String("path", absPath))
			} else {
				return fmt.Errorf("remove audit store: %w", err)
			}
		}

		return nil
	},
}

var doctorValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the current config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := cfgFile
		if configPath == "" {
			configPath = config.DefaultConfigPath()
		}
		if configPath == "" {
			return fmt.Errorf("config path not resolved")
		}
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return fmt.Errorf("config file not found: %s", configPath)
		}

		if _, err := config.Load(cmd.Context()); err != nil {
			return err
		}

		observability.CLILogger.Info("Config is valid", zap.String("path", configPath))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.AddCommand(doctorInitCmd)
	doctorCmd.AddCommand(doctorConfigCmd)
	doctorCmd.AddCommand(doctorResetCmd)
	doctorCmd.AddCommand(doctorValidateCmd)

	doctorCmd.Flags().BoolVar(&doctorOffline, "offline", false, "skip the live Keap connectivity check")

	doctorInitCmd.Flags().BoolVar(&doctorInitForce, "force", false, "overwrite existing config file")
	doctorInitCmd.Flags().StringVar(&doctorInitAccessToken, "access-token", "", "set the Keap access token or use 'prompt' to enter")
	doctorInitCmd.Flags().BoolVar(&doctorInitAudit, "audit", false, "enable the tool call audit store")

	doctorResetCmd.Flags().BoolVar(&doctorResetConfig, "config", false, "remove user config file")
	doctorResetCmd.Flags().BoolVar(&doctorResetData, "data", false, "remove local audit store")
	doctorResetCmd.Flags().BoolVar(&doctorResetAll, "all", false, "remove config and data")
}

// formatFileSize returns a human-readable file size
func formatFileSize(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(GB))
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d bytes", bytes)
	}
}

// formatTimeAgo returns a human-readable relative time
func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", mins)
	case d < 24*time.Hour:
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

func buildInitConfig(accessToken string, audit bool) string {
	lines := []string{
		"# keap-mcp config - created by 'keap-mcp doctor init'",
		"keap:",
	}

	if strings.TrimSpace(accessToken) != "" {
		lines = append(lines, fmt.Sprintf("  access_token: %q", accessToken))
	} else {
		lines = append(lines, "  # access_token: \"\"  # Set via KEAP_ACCESS_TOKEN or uncomment")
	}

	lines = append(lines,
		"  timeout: 30s",
		"  retry:",
		"    max_retries: 2",
		"mcp:",
		"  transport: stdio",
		"  path: /mcp",
		"audit:",
		fmt.Sprintf("  enabled: %t", audit),
		"  retention: 720h",
		"logging:",
		"  level: info",
	)

	return strings.Join(lines, "\n") + "\n"
}

func promptForValue(w io.Writer, r io.Reader, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}
	reader := bufio.NewReader(r)
	value, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func existenceStatus(exists bool) string {
	if exists {
		return "exists"
	}
	return "missing"
}

func envStatus(name string) string {
	if strings.TrimSpace(os.Getenv(name)) != "" {
		return "(set)"
	}
	return "(not set)"
}
