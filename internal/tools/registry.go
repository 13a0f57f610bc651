package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/keapmcp/keap-mcp/internal/keap"
	"github.com/keapmcp/keap-mcp/internal/metrics"
	"github.com/keapmcp/keap-mcp/internal/store"
)

// ErrUnknownTool is returned by Call for names that are not registered.
var ErrUnknownTool = errors.New("unknown tool")

// API is the subset of the Keap client that tool handlers use.
type API interface {
	Get(ctx context.Context, path string, params map[string]any) (any, error)
	Post(ctx context.Context, path string, body any) (any, error)
	Put(ctx context.Context, path string, body any) (any, error)
	Patch(ctx context.Context, path string, body any) (any, error)
	Delete(ctx context.Context, path string) (any, error)
}

// Pager drains offset-paginated listings. *keap.Client implements it.
type Pager interface {
	GetAllPagesByKey(ctx context.Context, path, key string, params map[string]any) ([]any, error)
}

// HandlerFunc executes one tool call against the Keap API.
type HandlerFunc func(ctx context.Context, api API, args Args) (any, error)

// Tool pairs an MCP tool definition with its handler.
type Tool struct {
	Domain     string
	Definition mcp.Tool
	Handler    HandlerFunc
}

// Name returns the tool name.
func (t Tool) Name() string {
	return t.Definition.Name
}

// Required returns the names of required arguments.
func (t Tool) Required() []string {
	return t.Definition.InputSchema.Required
}

// ArgumentError reports a missing required argument.
type ArgumentError struct {
	Tool string
	Name string
}

func (e *ArgumentError) Error() string {
	return "missing required argument: " + e.Name
}

// Recorder persists tool call outcomes.
type Recorder interface {
	RecordToolCall(ctx context.Context, call store.ToolCall) error
}

// Option configures a Registry.
type Option func(*Registry)

// WithRecorder records every call through rec.
func WithRecorder(rec Recorder) Option {
	return func(r *Registry) {
		r.recorder = rec
	}
}

// WithLogger sets the logger used for call logging.
func WithLogger(logger *logging.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// Registry routes tool calls by exact name.
type Registry struct {
	api      API
	tools    map[string]Tool
	order    []string
	recorder Recorder
	logger   *logging.Logger
	clock    func() time.Time
}

type domain struct {
	name  string
	tools func() []Tool
}

var domains = []domain{
	{"contacts", contactTools},
	{"companies", companyTools},
	{"opportunities", opportunityTools},
	{"tasks", taskTools},
	{"appointments", appointmentTools},
	{"campaigns", campaignTools},
	{"tags", tagTools},
	{"notes", noteTools},
	{"emails", emailTools},
	{"files", fileTools},
	{"ecommerce", ecommerceTools},
	{"automations", automationTools},
	{"settings", settingsTools},
	{"affiliates", affiliateTools},
}

// NewRegistry returns a registry holding every Keap tool bound to api.
func NewRegistry(api API, opts ...Option) *Registry {
	r := &Registry{
		api:   api,
		tools: make(map[string]Tool),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, d := range domains {
		for _, t := range d.tools() {
			t.Domain = d.name
			r.register(t)
		}
	}
	return r
}

func (r *Registry) register(t Tool) {
	name := t.Name()
	if _, exists := r.tools[name]; exists {
		panic(fmt.Sprintf("tool %q registered twice", name))
	}
	r.tools[name] = t
	r.order = append(r.order, name)
}

// Tools returns every tool in registration order.
func (r *Registry) Tools() []Tool {
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Domains returns the domain names in registration order.
func (r *Registry) Domains() []string {
	out := make([]string, 0, len(domains))
	for _, d := range domains {
		out = append(out, d.name)
	}
	return out
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}

// Call validates args and runs the named tool.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (any, error) {
	tool, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	if args == nil {
		args = map[string]any{}
	}

	start := time.Now()
	result, err := r.invoke(ctx, tool, Args(args))
	r.observe(ctx, tool, err, time.Since(start))
	return result, err
}

func (r *Registry) invoke(ctx context.Context, tool Tool, args Args) (any, error) {
	for _, name := range tool.Required() {
		if args.Get(name) == nil {
			return nil, &ArgumentError{Tool: tool.Name(), Name: name}
		}
	}
	return tool.Handler(ctx, r.api, args)
}

func (r *Registry) observe(ctx context.Context, tool Tool, err error, duration time.Duration) {
	metrics.RecordToolCall(tool.Name(), err == nil, duration)

	call := store.ToolCall{
		ID:         uuid.NewString(),
		Tool:       tool.Name(),
		Domain:     tool.Domain,
		Status:     store.StatusSuccess,
		DurationMs: duration.Milliseconds(),
		CalledAt:   r.clock(),
	}
	if err != nil {
		call.Status = store.StatusError
		call.ErrorKind = errorKind(err)
		call.ErrorMessage = err.Error()
	}

	if r.logger != nil {
		fields := []zap.Field{
			zap.String("tool", call.Tool),
			zap.String("domain", call.Domain),
			zap.Int64("duration_ms", call.DurationMs),
		}
		if err != nil {
			r.logger.Warn("Tool call failed", append(fields,
				zap.String("error_kind", call.ErrorKind),
				zap.Error(err))...)
		} else {
			r.logger.Debug("Tool call completed", fields...)
		}
	}

	if r.recorder != nil {
		recErr := r.recorder.RecordToolCall(ctx, call)
		metrics.RecordAuditWrite(recErr == nil)
		if recErr != nil && r.logger != nil {
			r.logger.Warn("Failed to record tool call", zap.String("tool", call.Tool), zap.Error(recErr))
		}
	}
}

func errorKind(err error) string {
	var argErr *ArgumentError
	switch {
	case errors.As(err, &argErr):
		return "InvalidArgument"
	case keap.KindOf(err) != "":
		return string(keap.KindOf(err))
	default:
		return "Error"
	}
}

// FormatResult renders a tool result as indented JSON.
func FormatResult(result any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return "", fmt.Errorf("encode tool result: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// ErrorText is the message reported to MCP clients for a failed call.
func ErrorText(name string, err error) string {
	return fmt.Sprintf("Error executing %s: %s", name, err.Error())
}

// SortedNames returns tool names in lexical order.
func (r *Registry) SortedNames() []string {
	names := append([]string(nil), r.order...)
	sort.Strings(names)
	return names
}
