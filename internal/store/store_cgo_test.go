//go:build cgo

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/keapmcp/keap-mcp/internal/config"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), config.AuditConfig{
		Driver: "libsql",
		Path:   filepath.Join(t.TempDir(), "audit.db"),
	})
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenMemoryStore(t *testing.T) {
	s, err := Open(context.Background(), config.AuditConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	require.Equal(t, "libsql", s.Driver())
	require.NoError(t, s.Close())
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestToolCallRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	calls := []ToolCall{
		{ID: "a", Tool: "keap_list_contacts", Domain: "contacts", Status: StatusSuccess, DurationMs: 120, CalledAt: base},
		{ID: "b", Tool: "keap_get_contact", Domain: "contacts", Status: StatusError, ErrorKind: "NotFound", ErrorMessage: "Not Found: gone", DurationMs: 80, CalledAt: base.Add(time.Minute)},
		{ID: "c", Tool: "keap_list_contacts", Domain: "contacts", Status: StatusSuccess, DurationMs: 60, CalledAt: base.Add(2 * time.Minute)},
	}
	for _, c := range calls {
		require.NoError(t, s.RecordToolCall(ctx, c))
	}

	all, err := s.ListToolCalls(ctx, ToolCallQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "c", all[0].ID)
	require.Equal(t, "a", all[2].ID)
	require.Equal(t, base, all[2].CalledAt)

	failed := all[1]
	require.Equal(t, StatusError, failed.Status)
	require.Equal(t, "NotFound", failed.ErrorKind)
	require.Equal(t, "Not Found: gone", failed.ErrorMessage)

	filtered, err := s.ListToolCalls(ctx, ToolCallQuery{Tool: "keap_list_contacts", Limit: 1})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "c", filtered[0].ID)

	recent, err := s.ListToolCalls(ctx, ToolCallQuery{Since: base.Add(30 * time.Second)})
	require.NoError(t, err)
	require.Len(t, recent, 2)

	stats, err := s.ToolCallStats(ctx, base)
	require.NoError(t, err)
	require.Equal(t, []ToolStats{
		{Tool: "keap_list_contacts", Calls: 2, Errors: 0, AvgDurationMs: 90, MaxDurationMs: 120},
		{Tool: "keap_get_contact", Calls: 1, Errors: 1, AvgDurationMs: 80, MaxDurationMs: 80},
	}, stats)

	removed, err := s.PruneToolCalls(ctx, base.Add(90*time.Second))
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	left, err := s.ListToolCalls(ctx, ToolCallQuery{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	require.Equal(t, "c", left[0].ID)
}

func TestRecordToolCallRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	call := ToolCall{ID: "dup", Tool: "keap_list_tags", Domain: "tags", Status: StatusSuccess}
	require.NoError(t, s.RecordToolCall(ctx, call))
	require.Error(t, s.RecordToolCall(ctx, call))
}

func TestRateLimitSnapshot(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	snap, err := s.GetRateLimitSnapshot(ctx, "v1")
	require.NoError(t, err)
	require.Nil(t, snap)

	reset := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	observed := reset.Add(-time.Minute)
	require.NoError(t, s.SaveRateLimitSnapshot(ctx, RateLimitSnapshot{API: "v1", Remaining: 42, ResetAt: reset, ObservedAt: observed}))
	require.NoError(t, s.SaveRateLimitSnapshot(ctx, RateLimitSnapshot{API: "v1", Remaining: 41, ResetAt: reset, ObservedAt: observed}))

	snap, err = s.GetRateLimitSnapshot(ctx, "v1")
	require.NoError(t, err)
	require.Equal(t, &RateLimitSnapshot{API: "v1", Remaining: 41, ResetAt: reset, ObservedAt: observed}, snap)
}
