package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Tool call outcomes.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// DefaultListLimit caps ListToolCalls when no limit is given.
const DefaultListLimit = 50

// ToolCall is one audited tool invocation. Arguments are never stored.
type ToolCall struct {
	ID           string    `json:"id"`
	Tool         string    `json:"tool"`
	Domain       string    `json:"domain"`
	Status       string    `json:"status"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
	CalledAt     time.Time `json:"called_at"`
}

// ToolCallQuery filters ListToolCalls.
type ToolCallQuery struct {
	Tool  string
	Since time.Time
	Limit int
}

// ToolStats aggregates calls for one tool.
type ToolStats struct {
	Tool          string  `json:"tool"`
	Calls         int     `json:"calls"`
	Errors        int     `json:"errors"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
	MaxDurationMs int64   `json:"max_duration_ms"`
}

// RecordToolCall inserts one audit row.
func (s *Store) RecordToolCall(ctx context.Context, call ToolCall) error {
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(call.ID) == "" {
		return errors.New("tool call id is required")
	}
	if strings.TrimSpace(call.Tool) == "" {
		return errors.New("tool name is required")
	}
	if call.CalledAt.IsZero() {
		call.CalledAt = time.Now()
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO tool_calls (id, tool, domain, status, error_kind, error_message, duration_ms, called_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, call.ID, call.Tool, call.Domain, call.Status,
		nullString(call.ErrorKind), nullString(call.ErrorMessage),
		call.DurationMs, call.CalledAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("record tool call: %w", err)
	}
	return nil
}

// ListToolCalls returns the most recent calls first.
func (s *Store) ListToolCalls(ctx context.Context, q ToolCallQuery) ([]ToolCall, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var (
		where []string
		args  []any
	)
	if tool := strings.TrimSpace(q.Tool); tool != "" {
		where = append(where, "tool = ?")
		args = append(args, tool)
	}
	if !q.Since.IsZero() {
		where = append(where, "called_at >= ?")
		args = append(args, q.Since.UTC().UnixMilli())
	}

	query := `SELECT id, tool, domain, status, error_kind, error_message, duration_ms, called_at FROM tool_calls`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY called_at DESC, id LIMIT ?"
	args = append(args, limit)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tool calls: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var out []ToolCall
	for rows.Next() {
		var (
			call     ToolCall
			kind     sql.NullString
			message  sql.NullString
			calledAt int64
		)
		if err := rows.Scan(&call.ID, &call.Tool, &call.Domain, &call.Status, &kind, &message, &call.DurationMs, &calledAt); err != nil {
			return nil, fmt.Errorf("scan tool call: %w", err)
		}
		call.ErrorKind = kind.String
		call.ErrorMessage = message.String
		call.CalledAt = time.UnixMilli(calledAt).UTC()
		out = append(out, call)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tool calls: %w", err)
	}
	return out, nil
}

// ToolCallStats summarizes calls since the given time, busiest tool first.
func (s *Store) ToolCallStats(ctx context.Context, since time.Time) ([]ToolStats, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT tool,
			COUNT(*),
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END),
			AVG(duration_ms),
			MAX(duration_ms)
		FROM tool_calls
		WHERE called_at >= ?
		GROUP BY tool
		ORDER BY COUNT(*) DESC, tool
	`, StatusError, since.UTC().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("tool call stats: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var out []ToolStats
	for rows.Next() {
		var st ToolStats
		if err := rows.Scan(&st.Tool, &st.Calls, &st.Errors, &st.AvgDurationMs, &st.MaxDurationMs); err != nil {
			return nil, fmt.Errorf("scan tool stats: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tool call stats: %w", err)
	}
	return out, nil
}

// PruneToolCalls deletes calls older than before and reports how many were
// removed.
func (s *Store) PruneToolCalls(ctx context.Context, before time.Time) (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM tool_calls WHERE called_at < ?`, before.UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune tool calls: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune tool calls: %w", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
