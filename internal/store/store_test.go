package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keapmcp/keap-mcp/internal/config"
)

func TestDataSourceName(t *testing.T) {
	t.Run("URLUsesRawValue", func(t *testing.T) {
		dsn, err := dataSourceName(config.AuditConfig{
			URL:       "libsql://audit.example.turso.io",
			AuthToken: "token123",
		})
		require.NoError(t, err)
		require.Equal(t, "libsql://audit.example.turso.io?authToken=token123", dsn)
	})

	t.Run("URLKeepsExistingToken", func(t *testing.T) {
		dsn, err := dataSourceName(config.AuditConfig{
			URL:       "libsql://audit.example.turso.io?authToken=abc",
			AuthToken: "other",
		})
		require.NoError(t, err)
		require.Equal(t, "libsql://audit.example.turso.io?authToken=abc", dsn)
	})

	t.Run("URLWithoutToken", func(t *testing.T) {
		dsn, err := dataSourceName(config.AuditConfig{URL: "libsql://audit.example.turso.io"})
		require.NoError(t, err)
		require.Equal(t, "libsql://audit.example.turso.io", dsn)
	})

	t.Run("PlainPathGetsFilePrefix", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "audit.db")
		dsn, err := dataSourceName(config.AuditConfig{Path: path})
		require.NoError(t, err)
		require.Equal(t, "file:"+filepath.Clean(path), dsn)
		require.DirExists(t, filepath.Dir(path))
	})

	t.Run("PathWithFilePrefix", func(t *testing.T) {
		dsn, err := dataSourceName(config.AuditConfig{Path: "file:./keap-mcp.db"})
		require.NoError(t, err)
		require.Equal(t, "file:./keap-mcp.db", dsn)
	})

	t.Run("MemoryPath", func(t *testing.T) {
		dsn, err := dataSourceName(config.AuditConfig{Path: ":memory:"})
		require.NoError(t, err)
		require.Equal(t, ":memory:", dsn)
	})

	t.Run("PathMissing", func(t *testing.T) {
		_, err := dataSourceName(config.AuditConfig{})
		require.Error(t, err)
	})
}

func TestLocalFile(t *testing.T) {
	require.Equal(t, "./keap-mcp.db", localFile("file:./keap-mcp.db"))
	require.Equal(t, "/var/lib/keap/audit.db", localFile("file:///var/lib/keap/audit.db"))
	require.Equal(t, "audit.db", localFile("file:audit.db?mode=rwc"))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), config.AuditConfig{Driver: "postgres", Path: ":memory:"})
	require.ErrorContains(t, err, "unsupported store driver")
}

func TestNilStore(t *testing.T) {
	var s *Store
	require.NoError(t, s.Close())
	require.Equal(t, "", s.Driver())
	require.Error(t, s.Migrate(context.Background()))
	require.Error(t, s.RecordToolCall(context.Background(), ToolCall{ID: "x", Tool: "t"}))
	_, err := s.ListToolCalls(context.Background(), ToolCallQuery{})
	require.Error(t, err)
}
