package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keapmcp/keap-mcp/internal/config"
	apperrors "github.com/keapmcp/keap-mcp/internal/errors"
	"github.com/keapmcp/keap-mcp/internal/keap"
	"github.com/keapmcp/keap-mcp/internal/output"
	"github.com/keapmcp/keap-mcp/internal/tools"
)

func TestAppIdentity(t *testing.T) {
	identity := GetAppIdentity()
	require.NotNil(t, identity)
	assert.NotEmpty(t, identity.BinaryName)
	assert.NotEmpty(t, identity.ConfigName)
	assert.True(t, strings.HasSuffix(identity.EnvPrefix, "_"), "env prefix %q should end with _", identity.EnvPrefix)
}

func TestParseCallArgs(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "args.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"contact_id": 1, "email": "file@example.com"}`), 0o600))

	args, err := parseCallArgs(`{"contact_id": 2, "limit": 5}`, file, []string{"given_name=Ada", "tag_ids=[1,2]", "opt_in=true"})
	require.NoError(t, err)

	assert.Equal(t, float64(2), args["contact_id"])
	assert.Equal(t, "file@example.com", args["email"])
	assert.Equal(t, float64(5), args["limit"])
	assert.Equal(t, "Ada", args["given_name"])
	assert.Equal(t, []any{float64(1), float64(2)}, args["tag_ids"])
	assert.Equal(t, true, args["opt_in"])
}

func TestParseCallArgsErrors(t *testing.T) {
	_, err := parseCallArgs(`[1,2]`, "", nil)
	require.Error(t, err)

	_, err = parseCallArgs("", "", []string{"novalue"})
	require.Error(t, err)

	_, err = parseCallArgs("", "", []string{"=x"})
	require.Error(t, err)

	args, err := parseCallArgs("", "", nil)
	require.NoError(t, err)
	assert.Empty(t, args)
}

func TestServeOverridesOnlyChangedFlags(t *testing.T) {
	c := &cobra.Command{Use: "serve"}
	c.Flags().StringVarP(&serveTransport, "transport", "t", config.TransportStdio, "")
	c.Flags().StringVar(&serveHost, "host", "localhost", "")
	c.Flags().IntVarP(&servePort, "port", "p", 8080, "")

	require.NoError(t, c.Flags().Parse([]string{"--transport", "http", "-p", "9000"}))

	overrides := serveOverrides(c)
	assert.Equal(t, map[string]any{"mcp.transport": "http", "server.port": 9000}, overrides)
}

func TestExitCodeFor(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, foundry.ExitConfigInvalid, ExitCodeFor(apperrors.FromToolError(ctx, &keap.Error{Kind: keap.KindConfiguration})))
	assert.Equal(t, foundry.ExitInvalidArgument, ExitCodeFor(apperrors.FromToolError(ctx, &tools.ArgumentError{Tool: "keap_get_tag", Name: "tag_id"})))
	assert.Equal(t, foundry.ExitPermissionDenied, ExitCodeFor(apperrors.FromToolError(ctx, &keap.Error{Kind: keap.KindUnauthorized, StatusCode: 401})))
	assert.Equal(t, foundry.ExitExternalServiceUnavailable, ExitCodeFor(apperrors.FromToolError(ctx, &keap.Error{Kind: keap.KindRateLimited, StatusCode: 429})))
	assert.Equal(t, foundry.ExitFailure, ExitCodeFor(assert.AnError))
}

func TestBuildInitConfigLoads(t *testing.T) {
	t.Setenv(keap.EnvAccessToken, "")
	t.Setenv(config.EnvPrefix+"_KEAP_ACCESS_TOKEN", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(buildInitConfig("tok-123", true)), 0o600))

	v := config.NewViper()
	used, err := config.ReadConfigFile(v, path)
	require.NoError(t, err)
	assert.Equal(t, path, used)

	cfg, err := config.LoadFrom(context.Background(), v)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", cfg.Keap.AccessToken)
	assert.Equal(t, 2, cfg.Keap.Retry.MaxRetries)
	assert.True(t, cfg.Audit.Enabled)
	assert.Equal(t, config.TransportStdio, cfg.MCP.Transport)
}

func TestBuildInitConfigWithoutToken(t *testing.T) {
	content := buildInitConfig("", false)
	assert.Contains(t, content, "# access_token")
	assert.Contains(t, content, "enabled: false")
}

func newReportCommand(t *testing.T, args ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	c := &cobra.Command{Use: "report"}
	addOutputFlags(c)
	require.NoError(t, c.Flags().Parse(args))
	var buf bytes.Buffer
	c.SetOut(&buf)
	return c, &buf
}

func TestWriteReportToStdout(t *testing.T) {
	c, buf := newReportCommand(t, "-o", "json")
	reg := tools.NewRegistry(nil)

	require.NoError(t, writeReport(c, "tools", output.ToolsReport(reg.Tools(), "tags")))

	var infos []output.ToolInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &infos))
	require.NotEmpty(t, infos)
	for _, info := range infos {
		assert.Equal(t, "tags", info.Domain)
		assert.True(t, strings.HasPrefix(info.Name, "keap_"))
	}
}

func TestWriteReportToOutDir(t *testing.T) {
	dir := t.TempDir()
	c, buf := newReportCommand(t, "--output-format", "markdown", "--out-dir", dir)

	require.NoError(t, writeReport(c, "Tool List", output.ToolsReport(tools.NewRegistry(nil).Tools(), "")))
	assert.Empty(t, buf.String())

	data, err := os.ReadFile(filepath.Join(dir, "tool-list.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "keap_list_contacts")
}

func TestWriteReportRejectsBothTargets(t *testing.T) {
	c, _ := newReportCommand(t, "--out", "a.txt", "--out-dir", "b")
	err := writeReport(c, "tools", output.Report{})
	require.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "tool-list", sanitizeFilename(" Tool List "))
	assert.Equal(t, "output", sanitizeFilename("///"))
}

func TestCredentialKind(t *testing.T) {
	t.Setenv(keap.EnvAccessToken, "")
	t.Setenv(keap.EnvAPIKey, "")
	assert.Equal(t, "access token", credentialKind(config.KeapConfig{AccessToken: "t"}))
	assert.Equal(t, "API key", credentialKind(config.KeapConfig{APIKey: "k"}))
	assert.Equal(t, "access token + API key", credentialKind(config.KeapConfig{AccessToken: "t", APIKey: "k"}))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 bytes", formatFileSize(512))
	assert.Equal(t, "1.5 KB", formatFileSize(1536))
	assert.Equal(t, "2.0 MB", formatFileSize(2*1024*1024))
}
