package metrics

import (
	"time"

	"github.com/keapmcp/keap-mcp/internal/observability"
)

// Process-level metrics
const (
	OperationsTotal     = "app_operations_total"
	HealthCheckTotal    = "app_health_check_total"
	HealthCheckDuration = "app_health_check_duration_ms"
	ServerStartTime     = "app_server_start_time_seconds"
	AuditWritesTotal    = "audit_writes_total"
)

// RecordOperation counts a background operation such as an audit prune.
func RecordOperation(operation string, success bool) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(OperationsTotal, 1, map[string]string{
		"operation": operation,
		"status":    outcome(success, "success", "failure"),
	})
}

// RecordHealthCheck records one health checker run.
func RecordHealthCheck(checkName string, healthy bool, duration time.Duration) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(HealthCheckTotal, 1, map[string]string{
		"check":  checkName,
		"status": outcome(healthy, "healthy", "unhealthy"),
	})
	_ = observability.TelemetrySystem.Histogram(HealthCheckDuration, duration, map[string]string{
		"check": checkName,
	})
}

// RecordAuditWrite counts tool-call audit inserts.
func RecordAuditWrite(success bool) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Counter(AuditWritesTotal, 1, map[string]string{
			"status": outcome(success, "success", "failure"),
		})
	}
}

// SetServerStartTime records the server start time as a Unix timestamp.
func SetServerStartTime(t time.Time) {
	if observability.TelemetrySystem != nil {
		_ = observability.TelemetrySystem.Gauge(ServerStartTime, float64(t.Unix()), nil)
	}
}

func outcome(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}
