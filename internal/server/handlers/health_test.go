package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubChecker struct {
	err error
}

func (s stubChecker) CheckHealth(ctx context.Context) error {
	return s.err
}

type errorBody struct {
	Error struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func TestHealthHandlerReturnsHealthyStatus(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("keap_credentials", stubChecker{})

	rec := httptest.NewRecorder()
	manager.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != StatusHealthy {
		t.Fatalf("expected healthy status, got %s", resp.Status)
	}
	if resp.Version != "1.2.3" {
		t.Fatalf("expected version 1.2.3, got %s", resp.Version)
	}
	if resp.Checks["keap_credentials"] != StatusHealthy {
		t.Fatalf("expected keap_credentials to be healthy, got %s", resp.Checks["keap_credentials"])
	}
}

func TestHealthHandlerReportsDegraded(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("audit_store", stubChecker{})
	manager.RegisterChecker("keap_rate_limit", CheckerFunc(func(context.Context) error {
		return Degraded("3 requests left until reset")
	}))

	rec := httptest.NewRecorder()
	manager.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != StatusDegraded {
		t.Fatalf("expected degraded status, got %s", resp.Status)
	}
	if resp.Checks["keap_rate_limit"] != StatusDegraded {
		t.Fatalf("expected keap_rate_limit degraded, got %s", resp.Checks["keap_rate_limit"])
	}
}

func TestHealthHandlerReturnsServiceUnavailableWhenUnhealthy(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("audit_store", stubChecker{err: errors.New("down")})

	rec := httptest.NewRecorder()
	manager.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}

	var resp errorBody
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.Code != "SERVICE_UNAVAILABLE" {
		t.Fatalf("expected SERVICE_UNAVAILABLE error code, got %s", resp.Error.Code)
	}
	if resp.Error.Details["status"] != StatusUnhealthy {
		t.Fatalf("expected status detail unhealthy, got %v", resp.Error.Details["status"])
	}
	checks, ok := resp.Error.Details["checks"].(map[string]interface{})
	if !ok || checks["audit_store"] != StatusUnhealthy {
		t.Fatalf("expected audit_store unhealthy in details, got %v", resp.Error.Details["checks"])
	}
}

func TestStartupHandlerWaitsForMarkStarted(t *testing.T) {
	manager := NewHealthManager("1.2.3")

	rec := httptest.NewRecorder()
	manager.StartupHandler(rec, httptest.NewRequest(http.MethodGet, "/health/startup", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before start, got %d", rec.Code)
	}

	manager.MarkStarted()
	rec = httptest.NewRecorder()
	manager.StartupHandler(rec, httptest.NewRequest(http.MethodGet, "/health/startup", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after start, got %d", rec.Code)
	}
}

func TestRunMarksRemainingChecksOnTimeout(t *testing.T) {
	manager := NewHealthManager("1.2.3")
	manager.RegisterChecker("a", stubChecker{})
	manager.RegisterChecker("b", stubChecker{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	checks := manager.Run(ctx)
	if checks["a"] != StatusTimeout || checks["b"] != StatusTimeout {
		t.Fatalf("expected timeouts, got %v", checks)
	}
	if Overall(checks) != StatusDegraded {
		t.Fatalf("expected degraded overall, got %s", Overall(checks))
	}
}
