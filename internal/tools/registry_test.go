package tools

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keapmcp/keap-mcp/internal/keap"
	"github.com/keapmcp/keap-mcp/internal/store"
)

type apiCall struct {
	Method string
	Path   string
	Params map[string]any
	Body   any
}

// fakeAPI records every request and answers from fail or a canned result.
type fakeAPI struct {
	mu     sync.Mutex
	calls  []apiCall
	fail   func(method, path string) error
	result any
}

func (f *fakeAPI) do(method, path string, params map[string]any, body any) (any, error) {
	f.mu.Lock()
	f.calls = append(f.calls, apiCall{Method: method, Path: path, Params: params, Body: body})
	f.mu.Unlock()
	if f.fail != nil {
		if err := f.fail(method, path); err != nil {
			return nil, err
		}
	}
	if f.result != nil {
		return f.result, nil
	}
	return map[string]any{"ok": true}, nil
}

func (f *fakeAPI) Get(_ context.Context, path string, params map[string]any) (any, error) {
	return f.do("GET", path, params, nil)
}

func (f *fakeAPI) Post(_ context.Context, path string, body any) (any, error) {
	return f.do("POST", path, nil, body)
}

func (f *fakeAPI) Put(_ context.Context, path string, body any) (any, error) {
	return f.do("PUT", path, nil, body)
}

func (f *fakeAPI) Patch(_ context.Context, path string, body any) (any, error) {
	return f.do("PATCH", path, nil, body)
}

func (f *fakeAPI) Delete(_ context.Context, path string) (any, error) {
	return f.do("DELETE", path, nil, nil)
}

func (f *fakeAPI) only(t *testing.T) apiCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.calls, 1)
	return f.calls[0]
}

type memoryRecorder struct {
	mu    sync.Mutex
	calls []store.ToolCall
	err   error
}

func (m *memoryRecorder) RecordToolCall(_ context.Context, call store.ToolCall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
	return m.err
}

func TestRegistryInventory(t *testing.T) {
	reg := NewRegistry(&fakeAPI{})

	assert.Equal(t, 112, reg.Len())
	assert.Len(t, reg.Tools(), 112)
	assert.Len(t, reg.Domains(), 14)

	seen := make(map[string]bool)
	perDomain := make(map[string]int)
	for _, tool := range reg.Tools() {
		name := tool.Name()
		assert.True(t, strings.HasPrefix(name, "keap_"), name)
		assert.False(t, seen[name], "duplicate %s", name)
		seen[name] = true
		assert.NotEmpty(t, tool.Definition.Description, name)
		assert.Equal(t, "object", tool.Definition.InputSchema.Type, name)
		require.NotNil(t, tool.Handler, name)
		perDomain[tool.Domain]++

		for _, req := range tool.Required() {
			_, ok := tool.Definition.InputSchema.Properties[req]
			assert.True(t, ok, "%s requires undeclared %s", name, req)
		}
	}

	assert.Equal(t, map[string]int{
		"contacts":      20,
		"companies":     5,
		"opportunities": 9,
		"tasks":         8,
		"appointments":  6,
		"campaigns":     7,
		"tags":          5,
		"notes":         6,
		"emails":        7,
		"files":         4,
		"ecommerce":     15,
		"automations":   6,
		"settings":      5,
		"affiliates":    9,
	}, perDomain)

	names := reg.SortedNames()
	assert.Len(t, names, 112)
	assert.True(t, sortedStrings(names))
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry(&fakeAPI{})

	tool, ok := reg.Lookup("keap_create_contact")
	require.True(t, ok)
	assert.Equal(t, "contacts", tool.Domain)

	_, ok = reg.Lookup("keap_create")
	assert.False(t, ok)
}

func TestCallUnknownTool(t *testing.T) {
	api := &fakeAPI{}
	reg := NewRegistry(api)

	_, err := reg.Call(context.Background(), "keap_does_not_exist", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownTool))
	assert.Equal(t, "unknown tool: keap_does_not_exist", err.Error())
	assert.Empty(t, api.calls)
}

func TestCallMissingRequiredArgument(t *testing.T) {
	api := &fakeAPI{}
	rec := &memoryRecorder{}
	reg := NewRegistry(api, WithRecorder(rec))

	_, err := reg.Call(context.Background(), "keap_get_contact", map[string]any{})
	require.Error(t, err)

	var argErr *ArgumentError
	require.True(t, errors.As(err, &argErr))
	assert.Equal(t, "contact_id", argErr.Name)
	assert.Equal(t, "missing required argument: contact_id", err.Error())
	assert.Empty(t, api.calls)

	require.Len(t, rec.calls, 1)
	assert.Equal(t, store.StatusError, rec.calls[0].Status)
	assert.Equal(t, "InvalidArgument", rec.calls[0].ErrorKind)
}

func TestCallRecordsOutcome(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	api := &fakeAPI{fail: func(method, path string) error {
		if path == "/contacts/404" {
			return &keap.Error{Kind: keap.KindNotFound, StatusCode: 404, Message: "Contact not found"}
		}
		return nil
	}}
	rec := &memoryRecorder{}
	reg := NewRegistry(api, WithRecorder(rec))
	reg.clock = func() time.Time { return fixed }

	_, err := reg.Call(context.Background(), "keap_get_contact", map[string]any{"contact_id": float64(7)})
	require.NoError(t, err)
	_, err = reg.Call(context.Background(), "keap_get_contact", map[string]any{"contact_id": float64(404)})
	require.Error(t, err)

	require.Len(t, rec.calls, 2)
	ok, failed := rec.calls[0], rec.calls[1]

	assert.NotEmpty(t, ok.ID)
	assert.NotEqual(t, ok.ID, failed.ID)
	assert.Equal(t, "keap_get_contact", ok.Tool)
	assert.Equal(t, "contacts", ok.Domain)
	assert.Equal(t, store.StatusSuccess, ok.Status)
	assert.Empty(t, ok.ErrorKind)
	assert.Equal(t, fixed, ok.CalledAt)

	assert.Equal(t, store.StatusError, failed.Status)
	assert.Equal(t, "NotFound", failed.ErrorKind)
	assert.Contains(t, failed.ErrorMessage, "Contact not found")
}

func TestCallRecorderFailureDoesNotFailCall(t *testing.T) {
	rec := &memoryRecorder{err: errors.New("disk full")}
	reg := NewRegistry(&fakeAPI{}, WithRecorder(rec))

	result, err := reg.Call(context.Background(), "keap_list_tags", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"ok": true}, result)
	assert.Len(t, rec.calls, 1)
}

func TestFormatResult(t *testing.T) {
	text, err := FormatResult(map[string]any{"url": "https://x.test/?a=1&b=<2>", "n": 1})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"n\": 1,\n  \"url\": \"https://x.test/?a=1&b=<2>\"\n}", text)

	text, err = FormatResult(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", text)
}

func TestErrorText(t *testing.T) {
	err := &keap.Error{Kind: keap.KindNotFound, StatusCode: 404, Message: "Contact not found"}
	text := ErrorText("keap_get_contact", err)
	assert.True(t, strings.HasPrefix(text, "Error executing keap_get_contact: "))
	assert.Contains(t, text, "Contact not found")
}
