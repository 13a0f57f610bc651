package keap

import (
	"context"
	"net/http"
)

// The v2 methods share the v1 throttle check but never update the quota
// from v2 response headers.

// GetV2 issues a GET against the v2 API.
func (c *Client) GetV2(ctx context.Context, path string, params map[string]any) (any, error) {
	return c.do(ctx, apiV2, http.MethodGet, path, EncodeQuery(params), nil)
}

// PostV2 issues a POST against the v2 API.
func (c *Client) PostV2(ctx context.Context, path string, body any) (any, error) {
	return c.do(ctx, apiV2, http.MethodPost, path, nil, body)
}

// PutV2 issues a PUT against the v2 API.
func (c *Client) PutV2(ctx context.Context, path string, body any) (any, error) {
	return c.do(ctx, apiV2, http.MethodPut, path, nil, body)
}

// PatchV2 issues a PATCH against the v2 API.
func (c *Client) PatchV2(ctx context.Context, path string, body any) (any, error) {
	return c.do(ctx, apiV2, http.MethodPatch, path, nil, body)
}

// DeleteV2 issues a DELETE against the v2 API.
func (c *Client) DeleteV2(ctx context.Context, path string) (any, error) {
	return c.do(ctx, apiV2, http.MethodDelete, path, nil, nil)
}
