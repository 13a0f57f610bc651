package keap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/keapmcp/keap-mcp/internal/metrics"
)

const (
	DefaultBaseURL   = "https://api.infusionsoft.com/crm/rest/v1"
	DefaultBaseURLV2 = "https://api.infusionsoft.com/crm/rest/v2"
	DefaultTimeout   = 30 * time.Second

	EnvAccessToken = "KEAP_ACCESS_TOKEN"
	EnvAPIKey      = "KEAP_API_KEY"

	headerAPIKey  = "X-Keap-API-Key"
	mediaTypeJSON = "application/json"
	userAgent     = "keap-mcp"
)

// ErrMissingCredentials is the message returned when neither an access
// token nor an API key is available.
const ErrMissingCredentials = "KEAP_ACCESS_TOKEN or KEAP_API_KEY environment variable is required"

type apiVersion string

const (
	apiV1 apiVersion = "v1"
	apiV2 apiVersion = "v2"
)

// Client is a Keap REST API client. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	baseURLV2  string

	accessToken string
	apiKey      string
	timeout     time.Duration

	limiter           *rateLimiter
	clock             func() time.Time
	retry             RetryPolicy
	requestsPerSecond float64
	pageLimit         int
	logger            *logging.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL overrides the v1 API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		u, err := normalizeBaseURL(baseURL)
		if err != nil {
			return err
		}
		c.baseURL = u
		return nil
	}
}

// WithBaseURLV2 overrides the v2 API base URL.
func WithBaseURLV2(baseURL string) Option {
	return func(c *Client) error {
		u, err := normalizeBaseURL(baseURL)
		if err != nil {
			return err
		}
		c.baseURLV2 = u
		return nil
	}
}

// WithHTTPClient sets the underlying HTTP client. Its timeout is left as is.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.httpClient = hc
		return nil
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d > 0 {
			c.timeout = d
		}
		return nil
	}
}

// WithLogger sets the logger used for throttle warnings and request debug lines.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithClock replaces the clock used by the rate limiter.
func WithClock(clock func() time.Time) Option {
	return func(c *Client) error {
		if clock != nil {
			c.clock = clock
		}
		return nil
	}
}

// WithRequestsPerSecond paces outgoing requests client side. Zero disables pacing.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) error {
		if rps < 0 {
			return fmt.Errorf("requests per second must not be negative, got %v", rps)
		}
		c.requestsPerSecond = rps
		return nil
	}
}

// WithPageLimit sets the page size GetAllPages uses when params carry no
// limit.
func WithPageLimit(limit int) Option {
	return func(c *Client) error {
		if limit < 0 {
			return fmt.Errorf("page limit cannot be negative")
		}
		c.pageLimit = limit
		return nil
	}
}

// WithRetry enables bounded retries for transient failures.
func WithRetry(policy RetryPolicy) Option {
	return func(c *Client) error {
		c.retry = policy
		return nil
	}
}

// NewClient returns a Keap client. Empty credentials fall back to the
// KEAP_ACCESS_TOKEN and KEAP_API_KEY environment variables.
func NewClient(accessToken, apiKey string, opts ...Option) (*Client, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		accessToken = strings.TrimSpace(os.Getenv(EnvAccessToken))
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv(EnvAPIKey))
	}
	if accessToken == "" && apiKey == "" {
		return nil, newConfigurationError(ErrMissingCredentials)
	}

	c := &Client{
		baseURL:     DefaultBaseURL,
		baseURLV2:   DefaultBaseURLV2,
		accessToken: accessToken,
		apiKey:      apiKey,
		timeout:     DefaultTimeout,
		clock:       time.Now,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	if c.requestsPerSecond > 0 {
		c.httpClient = withThrottle(c.httpClient, c.requestsPerSecond)
	}
	c.limiter = newRateLimiter(c.clock)

	return c, nil
}

// RateLimit returns the most recently observed quota.
func (c *Client) RateLimit() RateLimit {
	return c.limiter.snapshot()
}

// Get issues a GET against the v1 API with params encoded as the query string.
func (c *Client) Get(ctx context.Context, path string, params map[string]any) (any, error) {
	return c.do(ctx, apiV1, http.MethodGet, path, EncodeQuery(params), nil)
}

// Post issues a POST against the v1 API with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body any) (any, error) {
	return c.do(ctx, apiV1, http.MethodPost, path, nil, body)
}

// Put issues a PUT against the v1 API.
func (c *Client) Put(ctx context.Context, path string, body any) (any, error) {
	return c.do(ctx, apiV1, http.MethodPut, path, nil, body)
}

// Patch issues a PATCH against the v1 API.
func (c *Client) Patch(ctx context.Context, path string, body any) (any, error) {
	return c.do(ctx, apiV1, http.MethodPatch, path, nil, body)
}

// Delete issues a DELETE against the v1 API.
func (c *Client) Delete(ctx context.Context, path string) (any, error) {
	return c.do(ctx, apiV1, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, version apiVersion, method, path string, query url.Values, body any) (any, error) {
	if c.retry.enabled() {
		return c.doWithRetry(ctx, version, method, path, query, body)
	}
	return c.doOnce(ctx, version, method, path, query, body)
}

func (c *Client) doOnce(ctx context.Context, version apiVersion, method, path string, query url.Values, body any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	waited, err := c.limiter.wait(ctx)
	if err != nil {
		return nil, newRequestError(fmt.Errorf("waiting for rate limit reset: %w", err))
	}
	if waited > 0 {
		metrics.RecordKeapRateLimitWait(waited)
		if c.logger != nil {
			c.logger.Warn("Rate limit approaching, waiting",
				zap.Duration("wait", waited),
				zap.String("path", path))
		}
	}

	req, err := c.newRequest(ctx, version, method, path, query, body)
	if err != nil {
		return nil, newRequestError(err)
	}

	entry := TraceEntry{
		Timestamp: c.clock(),
		API:       string(version),
		Method:    method,
		Path:      path,
		Query:     req.URL.RawQuery,
		WaitedMs:  waited.Milliseconds(),
	}
	start := time.Now()

	result, status, err := c.send(req, version)
	duration := time.Since(start)

	entry.StatusCode = status
	entry.DurationMs = duration.Milliseconds()
	if err != nil {
		entry.Error = err.Error()
	}
	if version == apiV1 {
		remaining := c.limiter.snapshot().Remaining
		entry.Remaining = &remaining
	}
	trace(entry)

	statusLabel := "network_error"
	if status > 0 {
		statusLabel = strconv.Itoa(status)
	}
	metrics.RecordKeapRequest(method, string(version), statusLabel, duration)

	if c.logger != nil {
		c.logger.Debug("Keap request",
			zap.String("api", string(version)),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration))
	}

	return result, err
}

func (c *Client) newRequest(ctx context.Context, version apiVersion, method, path string, query url.Values, body any) (*http.Request, error) {
	base := c.baseURL
	if version == apiV2 {
		base = c.baseURLV2
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := base + path
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + query.Encode()
	}

	var buf io.Reader
	if body != nil {
		b := &bytes.Buffer{}
		enc := json.NewEncoder(b)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(body); err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		buf = b
	}

	req, err := http.NewRequestWithContext(ctx, method, target, buf)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", mediaTypeJSON)
	req.Header.Set("Accept", mediaTypeJSON)
	req.Header.Set("User-Agent", userAgent)
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	if c.apiKey != "" {
		req.Header.Set(headerAPIKey, c.apiKey)
	}
	return req, nil
}

// send performs the request and decodes the response. The returned status
// is zero when no response was received.
func (c *Client) send(req *http.Request, version apiVersion) (any, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, newNetworkError(err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup on HTTP response body

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, newNetworkError(fmt.Errorf("read response body: %w", err))
	}

	if version == apiV1 && c.limiter.observe(resp.Header) {
		metrics.SetKeapRateLimitRemaining(c.limiter.snapshot().Remaining)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, classify(resp.StatusCode, payload, c.limiter.snapshot().ResetAt)
	}

	return decodeBody(resp.StatusCode, payload), resp.StatusCode, nil
}

// decodeBody turns a 2xx payload into a JSON value. No content yields the
// success marker; a body that is not JSON is returned as a string.
func decodeBody(status int, payload []byte) any {
	if status == http.StatusNoContent || len(bytes.TrimSpace(payload)) == 0 {
		return SuccessMarker()
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return string(payload)
	}
	return v
}

// SuccessMarker is the value returned for responses without content.
func SuccessMarker() map[string]any {
	return map[string]any{"success": true}
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("base URL cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("base URL must use HTTP or HTTPS scheme, got: %s", u.Scheme)
	}
	return strings.TrimRight(u.String(), "/"), nil
}
