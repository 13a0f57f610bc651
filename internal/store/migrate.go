package store

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS tool_calls (
		id TEXT PRIMARY KEY,
		tool TEXT NOT NULL,
		domain TEXT NOT NULL,
		status TEXT NOT NULL,
		error_message TEXT,
		duration_ms INTEGER NOT NULL,
		called_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_tool_calls_called_at ON tool_calls(called_at);`,
	`CREATE INDEX IF NOT EXISTS idx_tool_calls_tool ON tool_calls(tool, called_at);`,
	`CREATE TABLE IF NOT EXISTS rate_limit_snapshots (
		api TEXT PRIMARY KEY,
		remaining INTEGER NOT NULL,
		reset_at INTEGER NOT NULL,
		observed_at INTEGER NOT NULL
	);`,
}

// Migrate ensures the audit tables exist.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}

	// error_kind arrived after the first release of the audit table.
	return s.ensureColumn(ctx, "tool_calls", "error_kind", "TEXT")
}

func (s *Store) ensureColumn(ctx context.Context, table, column, columnDef string) error {
	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("inspect %s schema: %w", table, err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	found := false
	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("inspect %s columns: %w", table, err)
		}
		if name == column {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect %s columns: %w", table, err)
	}
	if found {
		return nil
	}

	if _, err := s.DB.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, columnDef)); err != nil {
		return fmt.Errorf("add %s.%s column: %w", table, column, err)
	}
	return nil
}
