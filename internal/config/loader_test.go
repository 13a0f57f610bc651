package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearKeapEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvAccessToken, EnvAPIKey, "KEAP_MCP_KEAP_ACCESS_TOKEN", "KEAP_MCP_KEAP_API_KEY"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearKeapEnv(t)
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	cfg, err := LoadFrom(context.Background(), NewViper())
	require.NoError(t, err)

	assert.Equal(t, "https://api.infusionsoft.com/crm/rest/v1", cfg.Keap.BaseURL)
	assert.Equal(t, "https://api.infusionsoft.com/crm/rest/v2", cfg.Keap.BaseURLV2)
	assert.Equal(t, 30*time.Second, cfg.Keap.Timeout)
	assert.Equal(t, 200, cfg.Keap.PageLimit)
	assert.Zero(t, cfg.Keap.RequestsPerSecond)
	assert.Zero(t, cfg.Keap.Retry.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, cfg.Keap.Retry.InitialInterval)
	assert.Equal(t, 10*time.Second, cfg.Keap.Retry.MaxInterval)
	assert.False(t, cfg.Keap.HasCredentials())

	assert.Equal(t, TransportStdio, cfg.MCP.Transport)
	assert.Equal(t, "/mcp", cfg.MCP.Path)

	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	assert.False(t, cfg.Audit.Enabled)
	assert.Equal(t, "libsql", cfg.Audit.Driver)
	assert.Equal(t, 720*time.Hour, cfg.Audit.Retention)
	assert.NotEmpty(t, cfg.Audit.Path)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Same(t, cfg, GetConfig())
}

func TestLoadCredentialsFromEnv(t *testing.T) {
	t.Run("Unprefixed", func(t *testing.T) {
		clearKeapEnv(t)
		t.Setenv(EnvAccessToken, "tok")
		t.Setenv(EnvAPIKey, "key")

		cfg, err := LoadFrom(context.Background(), NewViper())
		require.NoError(t, err)
		assert.Equal(t, "tok", cfg.Keap.AccessToken)
		assert.Equal(t, "key", cfg.Keap.APIKey)
		assert.True(t, cfg.Keap.HasCredentials())
	})

	t.Run("PrefixedWins", func(t *testing.T) {
		clearKeapEnv(t)
		t.Setenv(EnvAccessToken, "plain")
		t.Setenv("KEAP_MCP_KEAP_ACCESS_TOKEN", "prefixed")

		cfg, err := LoadFrom(context.Background(), NewViper())
		require.NoError(t, err)
		assert.Equal(t, "prefixed", cfg.Keap.AccessToken)
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	clearKeapEnv(t)
	t.Setenv("KEAP_MCP_KEAP_TIMEOUT", "5s")
	t.Setenv("KEAP_MCP_KEAP_REQUESTS_PER_SECOND", "2.5")
	t.Setenv("KEAP_MCP_MCP_TRANSPORT", "HTTP")
	t.Setenv("KEAP_MCP_SERVER_PORT", "9999")
	t.Setenv("KEAP_MCP_AUDIT_ENABLED", "true")

	cfg, err := LoadFrom(context.Background(), NewViper())
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.Keap.Timeout)
	assert.Equal(t, 2.5, cfg.Keap.RequestsPerSecond)
	assert.Equal(t, TransportHTTP, cfg.MCP.Transport)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.True(t, cfg.Audit.Enabled)
}

func TestLoadConfigFile(t *testing.T) {
	clearKeapEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
keap:
  api_key: file-key
  page_limit: 50
  retry:
    max_retries: 3
mcp:
  transport: http
  path: /rpc
audit:
  enabled: true
  url: libsql://audit.example.turso.io
`), 0o600))

	v := NewViper()
	used, err := ReadConfigFile(v, path)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	cfg, err := LoadFrom(context.Background(), v)
	require.NoError(t, err)
	assert.Equal(t, "file-key", cfg.Keap.APIKey)
	assert.Equal(t, 50, cfg.Keap.PageLimit)
	assert.Equal(t, 3, cfg.Keap.Retry.MaxRetries)
	assert.Equal(t, "/rpc", cfg.MCP.Path)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, "libsql://audit.example.turso.io", cfg.Audit.URL)
}

func TestReadConfigFileMissing(t *testing.T) {
	_, err := ReadConfigFile(NewViper(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestRuntimeOverrides(t *testing.T) {
	clearKeapEnv(t)
	cfg, err := LoadFrom(context.Background(), NewViper(), map[string]any{
		"mcp.transport":   "http",
		"server.port":     7070,
		"logging.level":   "debug",
		"keap.page_limit": "25",
	})
	require.NoError(t, err)
	assert.Equal(t, TransportHTTP, cfg.MCP.Transport)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 25, cfg.Keap.PageLimit)
}

func TestValidate(t *testing.T) {
	clearKeapEnv(t)
	_, err := LoadFrom(context.Background(), NewViper(), map[string]any{
		"mcp.transport":            "carrier-pigeon",
		"keap.timeout":             "0s",
		"keap.requests_per_second": -1,
		"keap.retry.max_retries":   -2,
	})
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "mcp.transport")
	assert.Contains(t, msg, "keap.timeout")
	assert.Contains(t, msg, "keap.requests_per_second")
	assert.Contains(t, msg, "keap.retry.max_retries")
}
