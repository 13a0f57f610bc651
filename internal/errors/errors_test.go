package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gferrors "github.com/fulmenhq/gofulmen/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keapmcp/keap-mcp/internal/keap"
	"github.com/keapmcp/keap-mcp/internal/server/middleware"
	"github.com/keapmcp/keap-mcp/internal/tools"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestFromToolError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"missing argument", &tools.ArgumentError{Tool: "keap_get_contact", Name: "contact_id"}, CodeInvalidInput},
		{"unknown tool", fmt.Errorf("%w: keap_nope", tools.ErrUnknownTool), CodeNotFound},
		{"deadline", context.DeadlineExceeded, CodeTimeout},
		{"bad request", &keap.Error{Kind: keap.KindBadRequest, StatusCode: 400}, CodeInvalidInput},
		{"unauthorized", &keap.Error{Kind: keap.KindUnauthorized, StatusCode: 401}, CodeUnauthorized},
		{"forbidden", &keap.Error{Kind: keap.KindForbidden, StatusCode: 403}, CodeForbidden},
		{"not found", &keap.Error{Kind: keap.KindNotFound, StatusCode: 404}, CodeNotFound},
		{"rate limited", &keap.Error{Kind: keap.KindRateLimited, StatusCode: 429}, CodeRateLimited},
		{"server", &keap.Error{Kind: keap.KindServer, StatusCode: 502}, CodeExternalService},
		{"unknown api", &keap.Error{Kind: keap.KindUnknownAPI, StatusCode: 418}, CodeExternalService},
		{"network", &keap.Error{Kind: keap.KindNetwork, Err: fmt.Errorf("dial: refused")}, CodeExternalService},
		{"network timeout", &keap.Error{Kind: keap.KindNetwork, Err: timeoutError{}}, CodeTimeout},
		{"configuration", &keap.Error{Kind: keap.KindConfiguration}, CodeConfigInvalid},
		{"plain", fmt.Errorf("boom"), CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := FromToolError(context.Background(), tt.err)
			require.NotNil(t, env)
			assert.Equal(t, tt.code, env.Code)
			assert.Equal(t, tt.err.Error(), env.Message)
			assert.NotEmpty(t, env.CorrelationID)
		})
	}
}

func TestFromToolErrorDetails(t *testing.T) {
	env := FromToolError(context.Background(), &keap.Error{Kind: keap.KindNotFound, StatusCode: 404, Message: "gone"})
	assert.Equal(t, "NotFound", env.Details["keap_kind"])
	assert.Equal(t, 404, env.Details["keap_status"])

	env = FromToolError(context.Background(), &tools.ArgumentError{Tool: "keap_get_tag", Name: "tag_id"})
	assert.Equal(t, "tag_id", env.Details["argument"])
	assert.Equal(t, "keap_get_tag", env.Details["tool"])

	assert.Nil(t, FromToolError(context.Background(), nil))
}

func TestFromToolErrorClientTimeoutKeepsKeapKind(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client, err := keap.NewClient("test-token", "",
		keap.WithBaseURL(srv.URL+"/v1"),
		keap.WithTimeout(50*time.Millisecond),
	)
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "/contacts", nil)
	require.Error(t, err)

	env := FromToolError(context.Background(), err)
	assert.Equal(t, CodeTimeout, env.Code)
	assert.Equal(t, "NetworkError", env.Details["keap_kind"])
	assert.NotContains(t, env.Details, "keap_status")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Get(ctx, "/contacts", nil)
	env = FromToolError(context.Background(), err)
	assert.Equal(t, CodeTimeout, env.Code)
	assert.Equal(t, "NetworkError", env.Details["keap_kind"])
}

func TestFromToolErrorUsesRequestID(t *testing.T) {
	ctx := context.WithValue(context.Background(), middleware.RequestIDContextKey, "req-123")
	env := FromToolError(ctx, &keap.Error{Kind: keap.KindForbidden, StatusCode: 403})
	assert.Equal(t, "req-123", env.CorrelationID)
}

func TestHTTPStatusFromCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatusFromCode(CodeInvalidInput))
	assert.Equal(t, http.StatusTooManyRequests, HTTPStatusFromCode(CodeRateLimited))
	assert.Equal(t, http.StatusBadGateway, HTTPStatusFromCode(CodeExternalService))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatusFromCode(CodeServiceUnavailable))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatusFromCode("SOMETHING_ELSE"))
}

func TestEnsureEnvelope(t *testing.T) {
	env := EnsureEnvelope(nil)
	assert.Equal(t, CodeInternal, env.Code)

	original := gferrors.NewErrorEnvelope(CodeNotFound, "missing")
	assert.Same(t, original, EnsureEnvelope(original))

	env = EnsureEnvelope(fmt.Errorf("disk"))
	assert.Equal(t, CodeInternal, env.Code)
	assert.Equal(t, "disk", env.Context["wrapped_error"])
}

func TestRespondWithError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDContextKey, "req-9"))
	rec := httptest.NewRecorder()

	RespondWithError(rec, req, NewNotFoundError("The requested resource was not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, CodeNotFound, body.Error.Code)
	assert.Equal(t, "req-9", body.Error.RequestID)
}
