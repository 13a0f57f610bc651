package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/fulmenhq/gofulmen/signals"
	mcpgo "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/keapmcp/keap-mcp/internal/config"
	apperrors "github.com/keapmcp/keap-mcp/internal/errors"
	"github.com/keapmcp/keap-mcp/internal/keap"
	"github.com/keapmcp/keap-mcp/internal/mcpserver"
	"github.com/keapmcp/keap-mcp/internal/metrics"
	"github.com/keapmcp/keap-mcp/internal/observability"
	"github.com/keapmcp/keap-mcp/internal/server"
	"github.com/keapmcp/keap-mcp/internal/server/handlers"
	"github.com/keapmcp/keap-mcp/internal/store"
	"github.com/keapmcp/keap-mcp/internal/tools"
)

var (
	serveTransport string
	serveHost      string
	servePort      int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Keap MCP server.

Transports:
  • stdio (default): JSON-RPC over stdin/stdout for local MCP clients
  • http: streamable HTTP at mcp.path, plus /health, /version and /metrics

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Config file re-read (restart to apply client settings)

Logs always go to stderr so stdout stays reserved for the stdio transport.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		cfg, err := config.Load(ctx, serveOverrides(cmd))
		if err != nil {
			return apperrors.WrapConfigInvalid(ctx, err, "invalid configuration")
		}

		identity := GetAppIdentity()
		namespace := identity.TelemetryNamespace()

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		observability.InitServerLogger(identity.BinaryName, level, cfg.Logging.Profile, namespace)
		logger := observability.ServerLogger

		if cfg.Metrics.Enabled {
			if err := observability.InitMetrics(identity.BinaryName, cfg.Metrics.Port, namespace); err != nil {
				logger.Error("Failed to initialize metrics", zap.Error(err))
				return apperrors.Wrap(ctx, apperrors.CodeInternal, err, "metrics initialization failed")
			}
		}
		metrics.SetServerStartTime(time.Now())

		client, err := newKeapClient(cfg.Keap, logger)
		if err != nil {
			return apperrors.FromToolError(ctx, err)
		}

		var (
			db       *store.Store
			recorder tools.Recorder
		)
		if cfg.Audit.Enabled {
			db, err = openStore(ctx, cfg.Audit)
			if err != nil {
				return apperrors.WrapDatabaseError(ctx, err, "failed to open audit store")
			}
			pruneAudit(ctx, db, cfg.Audit.Retention, logger)
			recorder = db
		}

		reg := newRegistry(client, recorder, logger)
		mcpSrv := mcpserver.New(reg, versionInfo.Version)

		logger.Info("Initializing MCP server",
			zap.String("service", identity.BinaryName),
			zap.String("namespace", namespace),
			zap.String("version", versionInfo.Version),
			zap.String("transport", cfg.MCP.Transport),
			zap.Int("tools", reg.Len()),
			zap.Bool("audit", db != nil),
			zap.Bool("metrics", cfg.Metrics.Enabled))

		// Runs on SIGTERM through the shutdown handler and again on a
		// normal return; only the first call does anything.
		release := sync.OnceFunc(func() {
			releaseResources(context.Background(), logger, client, db)
		})
		defer release()

		// Shutdown handlers run LIFO: the transport stops first, then
		// resources are released.
		signals.OnShutdown(func(ctx context.Context) error {
			release()
			return nil
		})
		registerReloadHandler(logger)

		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
		}

		switch cfg.MCP.Transport {
		case config.TransportHTTP:
			return serveHTTP(ctx, cfg, mcpSrv, reg, client, db, logger)
		default:
			return serveStdio(ctx, cancel, mcpSrv, logger)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveTransport, "transport", "t", config.TransportStdio, "MCP transport: stdio|http")
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "HTTP listen host (http transport)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "HTTP listen port (http transport)")
}

// serveOverrides returns the flags the user actually set, keyed by config
// path, so unset flags never mask the config file.
func serveOverrides(cmd *cobra.Command) map[string]any {
	overrides := map[string]any{}
	if cmd.Flags().Changed("transport") {
		overrides["mcp.transport"] = serveTransport
	}
	if cmd.Flags().Changed("host") {
		overrides["server.host"] = serveHost
	}
	if cmd.Flags().Changed("port") {
		overrides["server.port"] = servePort
	}
	return overrides
}

func serveStdio(ctx context.Context, cancel context.CancelFunc, mcpSrv *mcpgo.MCPServer, logger *logging.Logger) error {
	signals.OnShutdown(func(context.Context) error {
		logger.Info("Stopping stdio transport...")
		cancel()
		return nil
	})

	errChan := make(chan error, 2)
	go func() {
		if err := signals.Listen(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Signal handler error", zap.Error(err))
			errChan <- err
		}
	}()
	go func() {
		logger.Info("Serving MCP over stdio")
		errChan <- mcpgo.NewStdioServer(mcpSrv).Listen(ctx, os.Stdin, os.Stdout)
	}()

	err := <-errChan
	if err != nil && ctx.Err() == nil {
		return apperrors.Wrap(ctx, apperrors.CodeInternal, err, "stdio transport failed")
	}
	logger.Info("Stdio transport stopped")
	return nil
}

func serveHTTP(ctx context.Context, cfg *config.Config, mcpSrv *mcpgo.MCPServer, reg *tools.Registry, client *keap.Client, db *store.Store, logger *logging.Logger) error {
	identity := GetAppIdentity()

	hm := handlers.NewHealthManager(versionInfo.Version)
	if cfg.Health.Enabled {
		registerHealthCheckers(hm, cfg, client, db)
	}

	handlers.SetAppIdentity(identity)
	handlers.SetMCPInfo(handlers.MCPInfo{
		ServerName: mcpserver.Name,
		Path:       cfg.MCP.Path,
		Tools:      reg.Len(),
	})

	streamable := mcpgo.NewStreamableHTTPServer(mcpSrv,
		mcpgo.WithEndpointPath(cfg.MCP.Path),
		mcpgo.WithStateLess(true),
	)
	srv := server.New(cfg.Server,
		server.WithMCPHandler(cfg.MCP.Path, streamable),
		server.WithHealthManager(hm),
		server.WithAdminToken(strings.TrimSpace(os.Getenv(identity.EnvPrefix+"ADMIN_TOKEN"))),
		server.WithProfiler(cfg.Debug.Enabled && cfg.Debug.PprofEnabled),
	)

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	signals.OnShutdown(func(ctx context.Context) error {
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return apperrors.Wrap(ctx, apperrors.CodeInternal, err, "server shutdown failed")
		}
		logger.Info("HTTP server stopped gracefully")
		return nil
	})

	errChan := make(chan error, 2)
	go func() {
		errChan <- srv.Start()
	}()
	go func() {
		if err := signals.Listen(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Signal handler error", zap.Error(err))
			errChan <- err
		}
	}()

	if err := <-errChan; err != nil {
		return apperrors.Wrap(ctx, apperrors.CodeInternal, err, "server error")
	}
	return nil
}

func registerReloadHandler(logger *logging.Logger) {
	signals.OnReload(func(ctx context.Context) error {
		return reloadConfig(ctx, viper.GetViper(), logger)
	})
}

// reloadConfig re-reads and validates the config file. The running Keap
// client, audit store and logger keep their startup settings; picking up
// changes still requires a restart.
func reloadConfig(ctx context.Context, v *viper.Viper, logger *logging.Logger) error {
	logger.Info("Received SIGHUP: re-reading config file")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			logger.Info("No config file found - using defaults and environment variables")
			return nil
		}
		logger.Error("Failed to reload config file",
			zap.String("file", v.ConfigFileUsed()),
			zap.Error(err))
		return apperrors.WrapConfigInvalid(ctx, err, "config reload failed")
	}
	if _, err := config.LoadFrom(ctx, v); err != nil {
		logger.Error("Reloaded config is invalid", zap.Error(err))
		return apperrors.WrapConfigInvalid(ctx, err, "config reload failed")
	}

	// TODO: rebuild the Keap client when keap.* settings change.
	logger.Info("Configuration validated; restart to apply changes", zap.String("file", v.ConfigFileUsed()))
	return nil
}

// releaseResources saves the last observed quota, closes the audit store
// and flushes the logger.
func releaseResources(ctx context.Context, logger *logging.Logger, client *keap.Client, db *store.Store) {
	if db != nil {
		rl := client.RateLimit()
		err := db.SaveRateLimitSnapshot(ctx, store.RateLimitSnapshot{
			API:       "v1",
			Remaining: rl.Remaining,
			ResetAt:   rl.ResetAt,
		})
		metrics.RecordOperation("rate_limit_snapshot", err == nil)
		if err != nil {
			logger.Warn("Failed to save rate limit snapshot", zap.Error(err))
		}
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close audit store", zap.Error(err))
		}
	}

	if err := logger.Sync(); err != nil {
		// Sync on stderr commonly fails with EINVAL; not actionable.
		logger.Debug("Logger sync returned error", zap.Error(err))
	}
}

// registerHealthCheckers wires the readiness checks served under /health.
func registerHealthCheckers(hm *handlers.HealthManager, cfg *config.Config, client *keap.Client, db *store.Store) {
	hm.RegisterChecker("keap_credentials", handlers.CheckerFunc(func(context.Context) error {
		if !cfg.Keap.HasCredentials() && os.Getenv(keap.EnvAccessToken) == "" && os.Getenv(keap.EnvAPIKey) == "" {
			return apperrors.NewConfigInvalidError(keap.ErrMissingCredentials)
		}
		return nil
	}))

	hm.RegisterChecker("keap_rate_limit", handlers.CheckerFunc(func(context.Context) error {
		rl := client.RateLimit()
		if rl.Throttled(time.Now()) {
			return handlers.Degraded(fmt.Sprintf("%d requests left until %s", rl.Remaining, rl.ResetAt.UTC().Format(time.RFC3339)))
		}
		return nil
	}))

	if db != nil {
		hm.RegisterChecker("audit_store", db)
	}

	hm.RegisterChecker("telemetry", handlers.CheckerFunc(func(context.Context) error {
		if !cfg.Metrics.Enabled {
			return nil
		}
		if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
			return apperrors.NewInternalError("telemetry system not initialized")
		}
		return nil
	}))
}
