package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/keapmcp/keap-mcp/internal/config"
	"github.com/keapmcp/keap-mcp/internal/metrics"
	"github.com/keapmcp/keap-mcp/internal/store"
)

func openStore(ctx context.Context, cfg config.AuditConfig) (*store.Store, error) {
	db, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// openConfiguredStore loads config and opens the audit store it names,
// whether or not auditing is enabled for serve.
func openConfiguredStore(ctx context.Context) (*store.Store, *config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	db, err := openStore(ctx, cfg.Audit)
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}

// pruneAudit drops tool calls older than retention. Zero retention keeps
// everything.
func pruneAudit(ctx context.Context, db *store.Store, retention time.Duration, logger *logging.Logger) {
	if retention <= 0 {
		return
	}
	removed, err := db.PruneToolCalls(ctx, time.Now().Add(-retention))
	metrics.RecordOperation("audit_prune", err == nil)
	if logger == nil {
		return
	}
	if err != nil {
		logger.Warn("Failed to prune tool call audit", zap.Error(err))
		return
	}
	if removed > 0 {
		logger.Info("Pruned tool call audit",
			zap.Int64("removed", removed),
			zap.Duration("retention", retention))
	}
}
