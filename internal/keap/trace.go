package keap

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// TraceEntry is one Keap request written to the trace file. Credentials
// and payloads are never recorded.
type TraceEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	API        string    `json:"api"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Query      string    `json:"query,omitempty"`
	StatusCode int       `json:"status_code,omitempty"`
	Error      string    `json:"error,omitempty"`
	Remaining  *int      `json:"rate_limit_remaining,omitempty"`
	WaitedMs   int64     `json:"waited_ms,omitempty"`
	DurationMs int64     `json:"duration_ms"`
}

type traceSink struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

func (s *traceSink) write(entry TraceEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.enc.Encode(entry)
}

func (s *traceSink) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.file.Close()
}

var activeTrace atomic.Pointer[traceSink]

// EnableTracing appends NDJSON trace entries to path, replacing any trace
// already in progress. The returned function stops tracing.
func EnableTracing(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)

	if prev := activeTrace.Swap(&traceSink{file: f, enc: enc}); prev != nil {
		prev.close()
	}
	return DisableTracing, nil
}

// DisableTracing closes the trace file, if any.
func DisableTracing() {
	if prev := activeTrace.Swap(nil); prev != nil {
		prev.close()
	}
}

// IsTracingEnabled reports whether a trace file is open.
func IsTracingEnabled() bool {
	return activeTrace.Load() != nil
}

func trace(entry TraceEntry) {
	sink := activeTrace.Load()
	if sink == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	sink.write(entry)
}
