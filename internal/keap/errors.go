package keap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Kind identifies the category of a failed Keap call.
type Kind string

const (
	KindBadRequest    Kind = "BadRequest"
	KindUnauthorized  Kind = "Unauthorized"
	KindForbidden     Kind = "Forbidden"
	KindNotFound      Kind = "NotFound"
	KindRateLimited   Kind = "RateLimited"
	KindServer        Kind = "ServerError"
	KindUnknownAPI    Kind = "UnknownApiError"
	KindNetwork       Kind = "NetworkError"
	KindRequest       Kind = "RequestError"
	KindConfiguration Kind = "ConfigurationError"
)

// Error is returned by every Client method that fails.
type Error struct {
	Kind       Kind
	StatusCode int
	// Message is the detail reported by Keap (or a fixed text for kinds
	// that never surface the response body).
	Message string
	// Body is the raw response body, when a response was received.
	Body    string
	ResetAt time.Time
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindBadRequest:
		return "Bad Request: " + e.Message
	case KindUnauthorized:
		return "Unauthorized: " + e.Message
	case KindForbidden:
		return "Forbidden: " + e.Message
	case KindNotFound:
		return "Not Found: " + e.Message
	case KindRateLimited:
		return "Rate Limit Exceeded: " + e.Message
	case KindServer:
		return fmt.Sprintf("Keap Server Error (%d): %s", e.StatusCode, e.Message)
	case KindUnknownAPI:
		return fmt.Sprintf("Keap API Error (%d): %s", e.StatusCode, e.Message)
	case KindNetwork:
		return "Network Error: " + e.Message
	case KindRequest:
		return "Request Error: " + e.Message
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or "" when err is not a *Error.
func KindOf(err error) Kind {
	var kerr *Error
	if errors.As(err, &kerr) {
		return kerr.Kind
	}
	return ""
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusOf returns the HTTP status carried by err, or zero.
func StatusOf(err error) int {
	var kerr *Error
	if errors.As(err, &kerr) {
		return kerr.StatusCode
	}
	return 0
}

func newNetworkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "No response from Keap API", Err: err}
}

func newRequestError(err error) *Error {
	return &Error{Kind: KindRequest, Message: err.Error(), Err: err}
}

func newConfigurationError(msg string) *Error {
	return &Error{Kind: KindConfiguration, Message: msg}
}

// classify maps a non-2xx response onto an *Error. resetAt is the rate
// limit reset instant known after the response was observed.
func classify(status int, body []byte, resetAt time.Time) *Error {
	raw := strings.TrimSpace(string(body))
	detail := bodyMessage(body)

	e := &Error{StatusCode: status, Body: raw}
	switch status {
	case http.StatusBadRequest:
		e.Kind = KindBadRequest
		e.Message = firstNonEmpty(detail, raw)
	case http.StatusUnauthorized:
		e.Kind = KindUnauthorized
		e.Message = "Invalid or expired access token"
	case http.StatusForbidden:
		e.Kind = KindForbidden
		e.Message = "Insufficient permissions"
	case http.StatusNotFound:
		e.Kind = KindNotFound
		e.Message = firstNonEmpty(detail, "Resource not found")
	case http.StatusTooManyRequests:
		e.Kind = KindRateLimited
		e.ResetAt = resetAt
		e.Message = "Retry after " + resetAt.UTC().Format(time.RFC3339)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		e.Kind = KindServer
		e.Message = firstNonEmpty(detail, "Internal server error")
	default:
		e.Kind = KindUnknownAPI
		e.Message = firstNonEmpty(detail, raw)
	}
	return e
}

// bodyMessage extracts the "message" field of a JSON error body.
func bodyMessage(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return ""
	}
	var payload struct {
		Message any `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	switch v := payload.Message.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
