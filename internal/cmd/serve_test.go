package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keapmcp/keap-mcp/internal/config"
	"github.com/keapmcp/keap-mcp/internal/observability"
)

func TestReloadConfigValidatesFile(t *testing.T) {
	observability.InitCLILogger("test", false)
	t.Setenv(config.EnvPrefix+"_MCP_TRANSPORT", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mcp:\n  transport: stdio\n"), 0o600))

	v := config.NewViper()
	_, err := config.ReadConfigFile(v, path)
	require.NoError(t, err)
	require.NoError(t, reloadConfig(context.Background(), v, observability.CLILogger))

	require.NoError(t, os.WriteFile(path, []byte("mcp:\n  transport: carrier-pigeon\n"), 0o600))
	err = reloadConfig(context.Background(), v, observability.CLILogger)
	require.Error(t, err)
	require.Contains(t, err.Error(), "config reload failed")
}
