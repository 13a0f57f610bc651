package appid

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fulmenhq/gofulmen/appidentity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	appidentity.Reset()
	t.Cleanup(appidentity.Reset)

	oldWD, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
	require.NoError(t, os.Chdir(t.TempDir()))
}

func TestGetFallsBackToBuiltInIdentity(t *testing.T) {
	isolate(t)
	t.Setenv(appidentity.EnvIdentityPath, "")

	identity, err := Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "keap-mcp", identity.BinaryName)
	assert.Equal(t, "keap-mcp", identity.ConfigName)
	assert.True(t, strings.HasSuffix(identity.EnvPrefix, "_"))
}

func TestGetMissingExplicitPathFallsBack(t *testing.T) {
	isolate(t)
	t.Setenv(appidentity.EnvIdentityPath, filepath.Join(t.TempDir(), "missing-app.yaml"))

	identity, err := Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "keap-mcp", identity.BinaryName)
}

func TestDefaultReturnsCopy(t *testing.T) {
	a := Default()
	a.BinaryName = "changed"
	assert.Equal(t, "keap-mcp", Default().BinaryName)
}
