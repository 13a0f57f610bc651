package keap

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	defaultRetryInitialInterval = 500 * time.Millisecond
	defaultRetryMaxInterval     = 10 * time.Second
)

// RetryPolicy bounds automatic retries of transient failures. The zero
// value disables retries.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (p RetryPolicy) enabled() bool {
	return p.MaxRetries > 0
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	if b.InitialInterval <= 0 {
		b.InitialInterval = defaultRetryInitialInterval
	}
	b.MaxInterval = p.MaxInterval
	if b.MaxInterval <= 0 {
		b.MaxInterval = defaultRetryMaxInterval
	}
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxRetries)), ctx)
}

// Retryable reports whether a failed call may be attempted again.
// Requests that change state are only retried when Keap rejected them
// before processing (429).
func Retryable(method string, err error) bool {
	switch KindOf(err) {
	case KindRateLimited:
		return true
	case KindNetwork:
		return idempotent(method)
	case KindServer:
		status := StatusOf(err)
		return idempotent(method) && (status == http.StatusBadGateway || status == http.StatusServiceUnavailable)
	default:
		return false
	}
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

func (c *Client) doWithRetry(ctx context.Context, version apiVersion, method, path string, query url.Values, body any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	attempt := 0
	operation := func() (any, error) {
		attempt++
		result, err := c.doOnce(ctx, version, method, path, query, body)
		if err != nil && !Retryable(method, err) {
			return nil, backoff.Permanent(err)
		}
		return result, err
	}

	notify := func(err error, next time.Duration) {
		if c.logger == nil {
			return
		}
		c.logger.Warn("Retrying Keap request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Duration("next_in", next),
			zap.Error(err))
	}

	return backoff.RetryNotifyWithData(operation, c.retry.backOff(ctx), notify)
}
