package keap

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func expectedKind(status int) Kind {
	switch status {
	case 400:
		return KindBadRequest
	case 401:
		return KindUnauthorized
	case 403:
		return KindForbidden
	case 404:
		return KindNotFound
	case 429:
		return KindRateLimited
	case 500, 502, 503:
		return KindServer
	default:
		return KindUnknownAPI
	}
}

func TestClassifyProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		status := rapid.IntRange(400, 599).Draw(t, "status")
		detail := rapid.StringMatching(`[a-z]{1,12}`).Draw(t, "detail")
		body, err := json.Marshal(map[string]string{"message": detail})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reset := time.Unix(1767225600, 0)

		e := classify(status, body, reset)
		if e.StatusCode != status {
			t.Fatalf("status %d recorded as %d", status, e.StatusCode)
		}
		if want := expectedKind(status); e.Kind != want {
			t.Fatalf("status %d: kind %s, want %s", status, e.Kind, want)
		}

		switch e.Kind {
		case KindBadRequest, KindNotFound, KindServer, KindUnknownAPI:
			if !strings.Contains(e.Error(), detail) {
				t.Fatalf("status %d: %q does not carry %q", status, e.Error(), detail)
			}
		case KindRateLimited:
			if !e.ResetAt.Equal(reset) {
				t.Fatalf("reset not recorded: %v", e.ResetAt)
			}
		}
		if e.Kind == KindServer || e.Kind == KindUnknownAPI {
			if !strings.Contains(e.Error(), fmt.Sprintf("(%d)", status)) {
				t.Fatalf("status missing from %q", e.Error())
			}
		}
	})
}

func TestKindHelpersSeeThroughWrapping(t *testing.T) {
	inner := classify(404, nil, time.Time{})
	wrapped := fmt.Errorf("get contact: %w", inner)

	require.Equal(t, KindNotFound, KindOf(wrapped))
	require.True(t, IsKind(wrapped, KindNotFound))
	require.False(t, IsKind(nil, KindNotFound))
	require.Equal(t, 404, StatusOf(wrapped))
	require.Equal(t, Kind(""), KindOf(fmt.Errorf("plain")))
}
