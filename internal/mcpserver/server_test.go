package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keapmcp/keap-mcp/internal/keap"
	"github.com/keapmcp/keap-mcp/internal/tools"
)

type stubAPI struct {
	result any
	err    error
	path   string
}

func (s *stubAPI) Get(_ context.Context, path string, _ map[string]any) (any, error) {
	s.path = path
	return s.result, s.err
}

func (s *stubAPI) Post(_ context.Context, path string, _ any) (any, error) {
	s.path = path
	return s.result, s.err
}

func (s *stubAPI) Put(_ context.Context, path string, _ any) (any, error) {
	s.path = path
	return s.result, s.err
}

func (s *stubAPI) Patch(_ context.Context, path string, _ any) (any, error) {
	s.path = path
	return s.result, s.err
}

func (s *stubAPI) Delete(_ context.Context, path string) (any, error) {
	s.path = path
	return s.result, s.err
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text
	case *mcp.TextContent:
		return c.Text
	default:
		t.Fatalf("unexpected content type %T", res.Content[0])
		return ""
	}
}

func TestHandlerSuccess(t *testing.T) {
	api := &stubAPI{result: map[string]any{"id": json.Number("42"), "given_name": "Ada"}}
	reg := tools.NewRegistry(api)

	res, err := Handler(reg, "keap_get_contact")(context.Background(), callRequest("keap_get_contact", map[string]any{"contact_id": float64(42)}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "/contacts/42", api.path)
	assert.Equal(t, "{\n  \"given_name\": \"Ada\",\n  \"id\": 42\n}", resultText(t, res))
}

func TestHandlerAPIError(t *testing.T) {
	api := &stubAPI{err: &keap.Error{Kind: keap.KindNotFound, StatusCode: 404, Message: "Contact not found"}}
	reg := tools.NewRegistry(api)

	res, err := Handler(reg, "keap_get_contact")(context.Background(), callRequest("keap_get_contact", map[string]any{"contact_id": float64(1)}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error executing keap_get_contact: Not Found: Contact not found", resultText(t, res))
}

func TestHandlerMissingArgument(t *testing.T) {
	api := &stubAPI{}
	reg := tools.NewRegistry(api)

	res, err := Handler(reg, "keap_create_tag")(context.Background(), callRequest("keap_create_tag", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error executing keap_create_tag: missing required argument: name", resultText(t, res))
	assert.Empty(t, api.path)
}

func TestHandlerUnknownTool(t *testing.T) {
	reg := tools.NewRegistry(&stubAPI{})

	res, err := Handler(reg, "keap_nope")(context.Background(), callRequest("keap_nope", nil))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error executing keap_nope: unknown tool: keap_nope", resultText(t, res))
}

func TestServerListsEveryTool(t *testing.T) {
	reg := tools.NewRegistry(&stubAPI{})
	s := New(reg, "test")

	msg := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	var resp struct {
		Result struct {
			Tools []struct {
				Name        string         `json:"name"`
				InputSchema map[string]any `json:"inputSchema"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &resp))
	require.Len(t, resp.Result.Tools, reg.Len())

	for _, tool := range resp.Result.Tools {
		if tool.Name == "keap_create_contact" {
			assert.Equal(t, "object", tool.InputSchema["type"])
			return
		}
	}
	t.Fatal("keap_create_contact not listed")
}

func TestInstructionsNameDomains(t *testing.T) {
	text := instructions(tools.NewRegistry(&stubAPI{}))
	assert.Contains(t, text, "contacts")
	assert.Contains(t, text, "affiliates")
}
