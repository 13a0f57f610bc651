package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/keapmcp/keap-mcp/internal/errors"
	"github.com/keapmcp/keap-mcp/internal/observability"
)

const prometheusContentType = "text/plain; version=0.0.4"

var metricsProxyClient = &http.Client{Timeout: 5 * time.Second}

// Response headers that describe the exporter connection rather than the
// scrape payload.
var skipHeaders = map[string]struct{}{
	"Connection":        {},
	"Keep-Alive":        {},
	"Te":                {},
	"Trailer":           {},
	"Transfer-Encoding": {},
	"Upgrade":           {},
}

// MetricsHandler serves the exporter's scrape output on the main listener,
// so /metrics shares a port with /mcp and /health.
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	if observability.PrometheusExporter == nil {
		HandleError(w, r, apperrors.NewServiceUnavailableError("Metrics exporter not initialized"))
		return
	}

	resp, target, err := scrapeExporter(r.Context(), r.Header.Get("Accept"))
	if err != nil {
		envelope := apperrors.Wrap(r.Context(), apperrors.CodeExternalService, err, "Prometheus exporter unavailable")
		envelope, _ = envelope.WithContext(map[string]interface{}{"metrics_url": target})
		HandleError(w, r, envelope)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	for key, values := range resp.Header {
		if _, skip := skipHeaders[http.CanonicalHeaderKey(key)]; skip {
			continue
		}
		w.Header()[key] = values
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", prometheusContentType)
	}

	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil && observability.ServerLogger != nil {
		observability.ServerLogger.Warn("Failed to write metrics response", zap.Error(err))
	}
}

func scrapeExporter(ctx context.Context, accept string) (*http.Response, string, error) {
	port := observability.GetMetricsPort()
	if port == 0 {
		port = observability.DefaultMetricsPort
	}
	target := fmt.Sprintf("http://127.0.0.1:%d/metrics", port)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, target, err
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := metricsProxyClient.Do(req)
	return resp, target, err
}
