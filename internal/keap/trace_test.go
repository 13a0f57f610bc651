package keap

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTracingWritesEntriesWithoutCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.ndjson")
	stop, err := EnableTracing(path)
	require.NoError(t, err)
	require.True(t, IsTracingEnabled())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-rate-limit-remaining", "900")
		w.Header().Set("x-rate-limit-reset", "1767225600")
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"secret_card":"4111"}`))
	}))
	defer srv.Close()

	c, err := NewClient("super-secret-token", "super-secret-key", WithBaseURL(srv.URL))
	require.NoError(t, err)

	_, err = c.Get(context.Background(), "/contacts", map[string]any{"email": "a@example.com"})
	require.NoError(t, err)
	_, err = c.Delete(context.Background(), "/contacts/5")
	require.Error(t, err)

	stop()
	require.False(t, IsTracingEnabled())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "super-secret")
	require.NotContains(t, string(raw), "4111")

	var entries []TraceEntry
	scanner := bufio.NewScanner(strings.NewReader(string(raw)))
	for scanner.Scan() {
		var e TraceEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	require.Len(t, entries, 2)

	require.Equal(t, "GET", entries[0].Method)
	require.Equal(t, "/contacts", entries[0].Path)
	require.Equal(t, "email=a%40example.com", entries[0].Query)
	require.Equal(t, 200, entries[0].StatusCode)
	require.NotNil(t, entries[0].Remaining)
	require.Equal(t, 900, *entries[0].Remaining)

	require.Equal(t, "DELETE", entries[1].Method)
	require.Equal(t, 404, entries[1].StatusCode)
	require.Equal(t, "Not Found: Resource not found", entries[1].Error)
}
