package keap

import (
	"fmt"
	"math"
	"net/http"

	"golang.org/x/time/rate"
)

// throttledTransport is an http.RoundTripper that waits on a rate.Limiter
// before each request.
type throttledTransport struct {
	Base    http.RoundTripper
	Limiter *rate.Limiter
}

func (t *throttledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.Limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("limiter: %w", err)
	}
	return t.base().RoundTrip(req)
}

func (t *throttledTransport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// withThrottle returns a copy of hc whose transport is paced at rps.
func withThrottle(hc *http.Client, rps float64) *http.Client {
	burst := int(math.Max(1, math.Floor(rps)))
	throttled := *hc
	throttled.Transport = &throttledTransport{
		Base:    hc.Transport,
		Limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
	return &throttled
}
