package metrics

import (
	"testing"
	"time"

	"github.com/fulmenhq/gofulmen/telemetry"
	telemetrytesting "github.com/fulmenhq/gofulmen/telemetry/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keapmcp/keap-mcp/internal/observability"
)

func useCollector(t *testing.T) *telemetrytesting.FakeCollector {
	t.Helper()

	collector := telemetrytesting.NewFakeCollector()
	sys, err := telemetry.NewSystem(&telemetry.Config{Enabled: true, Emitter: collector})
	require.NoError(t, err)

	previous := observability.TelemetrySystem
	observability.TelemetrySystem = sys
	t.Cleanup(func() { observability.TelemetrySystem = previous })
	return collector
}

func TestKeapMetrics(t *testing.T) {
	collector := useCollector(t)

	RecordKeapRequest("GET", "v1", "200", 12*time.Millisecond)
	SetKeapRateLimitRemaining(742)
	RecordKeapRateLimitWait(3 * time.Second)
	RecordToolCall("keap_list_tags", true, time.Millisecond)
	RecordToolCall("keap_get_tag", false, time.Millisecond)

	assert.Greater(t, collector.CountMetricsByName(KeapRequestsTotal), 0)
	assert.Greater(t, collector.CountMetricsByName(KeapRequestDuration), 0)
	assert.Greater(t, collector.CountMetricsByName(KeapRateLimitRemaining), 0)
	assert.Greater(t, collector.CountMetricsByName(KeapRateLimitWaitsTotal), 0)
	assert.GreaterOrEqual(t, collector.CountMetricsByName(ToolCallsTotal), 2)
	assert.GreaterOrEqual(t, collector.CountMetricsByName(ToolCallDuration), 2)
}

func TestAppAndErrorMetrics(t *testing.T) {
	collector := useCollector(t)

	RecordOperation("audit_prune", true)
	RecordHealthCheck("audit_store", false, time.Millisecond)
	RecordAuditWrite(true)
	SetServerStartTime(time.Unix(1_700_000_000, 0))
	RecordError("NOT_FOUND", 404)
	RecordErrorByEndpoint("/mcp", "NOT_FOUND")
	RecordPanic()

	for _, name := range []string{
		OperationsTotal, HealthCheckTotal, HealthCheckDuration, AuditWritesTotal,
		ServerStartTime, ErrorsTotalName, ErrorsByEndpointName, PanicsTotalName,
	} {
		assert.Greater(t, collector.CountMetricsByName(name), 0, name)
	}
}

func TestRecordersAreNoOpsWithoutTelemetry(t *testing.T) {
	previous := observability.TelemetrySystem
	observability.TelemetrySystem = nil
	t.Cleanup(func() { observability.TelemetrySystem = previous })

	assert.NotPanics(t, func() {
		RecordKeapRequest("GET", "v1", "network_error", time.Second)
		SetKeapRateLimitRemaining(0)
		RecordKeapRateLimitWait(time.Second)
		RecordToolCall("keap_list_tags", true, time.Second)
		RecordOperation("x", false)
		RecordAuditWrite(false)
		RecordPanic()
	})
}
