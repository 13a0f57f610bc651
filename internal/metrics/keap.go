package metrics

import (
	"time"

	"github.com/keapmcp/keap-mcp/internal/observability"
)

// Keap API and tool metrics
const (
	KeapRequestsTotal         = "keap_requests_total"
	KeapRequestDuration       = "keap_request_duration_ms"
	KeapRateLimitRemaining    = "keap_rate_limit_remaining"
	KeapRateLimitWaitsTotal   = "keap_rate_limit_waits_total"
	KeapRateLimitWaitDuration = "keap_rate_limit_wait_ms"

	ToolCallsTotal   = "tool_calls_total"
	ToolCallDuration = "tool_call_duration_ms"
)

// RecordKeapRequest records one outbound Keap request. status is the HTTP
// status code or "network_error".
func RecordKeapRequest(method, api, status string, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	labels := map[string]string{
		"method": method,
		"api":    api,
		"status": status,
	}
	_ = observability.TelemetrySystem.Counter(KeapRequestsTotal, 1, labels)
	_ = observability.TelemetrySystem.Histogram(KeapRequestDuration, duration, map[string]string{
		"method": method,
		"api":    api,
	})
}

// SetKeapRateLimitRemaining records the quota reported by Keap.
func SetKeapRateLimitRemaining(remaining int) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(KeapRateLimitRemaining, float64(remaining), nil)
	}
}

// RecordKeapRateLimitWait records a request held back until the quota reset.
func RecordKeapRateLimitWait(wait time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(KeapRateLimitWaitsTotal, 1, nil)
	_ = observability.TelemetrySystem.Histogram(KeapRateLimitWaitDuration, wait, nil)
}

// RecordToolCall records an MCP tool invocation.
func RecordToolCall(tool string, success bool, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}
	_ = observability.TelemetrySystem.Counter(ToolCallsTotal, 1, map[string]string{
		"tool":   tool,
		"status": status,
	})
	_ = observability.TelemetrySystem.Histogram(ToolCallDuration, duration, map[string]string{
		"tool": tool,
	})
}
