package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apperrors "github.com/keapmcp/keap-mcp/internal/errors"
	"github.com/keapmcp/keap-mcp/internal/observability"
	"github.com/keapmcp/keap-mcp/internal/output"
	"github.com/keapmcp/keap-mcp/internal/store"
)

var (
	historyTool  string
	historySince time.Duration
	historyLimit int
	historyStats bool

	historyPruneOlderThan time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show audited tool calls",
	Long: `Show tool calls recorded in the audit store, newest first, or per-tool
totals with --stats. Arguments are never recorded.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, _, err := openConfiguredStore(ctx)
		if err != nil {
			return apperrors.WrapDatabaseError(ctx, err, "failed to open audit store")
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		var since time.Time
		if historySince > 0 {
			since = time.Now().Add(-historySince)
		}

		if historyStats {
			stats, err := db.ToolCallStats(ctx, since)
			if err != nil {
				return apperrors.WrapDatabaseError(ctx, err, "failed to summarize tool calls")
			}
			return writeReport(cmd, "history-stats", output.StatsReport(stats, since))
		}

		calls, err := db.ListToolCalls(ctx, store.ToolCallQuery{
			Tool:  historyTool,
			Since: since,
			Limit: historyLimit,
		})
		if err != nil {
			return apperrors.WrapDatabaseError(ctx, err, "failed to list tool calls")
		}
		return writeReport(cmd, "history", output.HistoryReport(calls))
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete audited tool calls older than a cutoff",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, cfg, err := openConfiguredStore(ctx)
		if err != nil {
			return apperrors.WrapDatabaseError(ctx, err, "failed to open audit store")
		}
		defer db.Close() // nolint:errcheck // best-effort cleanup

		olderThan := historyPruneOlderThan
		if !cmd.Flags().Changed("older-than") {
			olderThan = cfg.Audit.Retention
		}
		if olderThan <= 0 {
			return apperrors.NewInvalidInputError("--older-than must be positive")
		}

		removed, err := db.PruneToolCalls(ctx, time.Now().Add(-olderThan))
		if err != nil {
			return apperrors.WrapDatabaseError(ctx, err, "failed to prune tool calls")
		}
		observability.CLILogger.Info("Pruned tool call audit",
			zap.Int64("removed", removed),
			zap.Duration("older_than", olderThan))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyPruneCmd)

	historyCmd.Flags().StringVar(&historyTool, "tool", "", "only show calls to this tool")
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "only show calls newer than this (e.g. 24h)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", store.DefaultListLimit, "maximum calls to show")
	historyCmd.Flags().BoolVar(&historyStats, "stats", false, "show per-tool totals instead of individual calls")
	addOutputFlags(historyCmd)

	historyPruneCmd.Flags().DurationVar(&historyPruneOlderThan, "older-than", 0, "delete calls older than this (default audit.retention)")
}
