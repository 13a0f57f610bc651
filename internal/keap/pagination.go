package keap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/go-querystring/query"
)

const (
	// DefaultPageLimit is the page size used when params carry no limit.
	DefaultPageLimit = 200
	defaultItemsKey  = "data"
)

// PageOptions are the offset pagination parameters Keap accepts.
type PageOptions struct {
	Limit  int `url:"limit"`
	Offset int `url:"offset"`
}

// GetAllPages drains an offset-paginated listing whose items live under
// "data". Pages are fetched sequentially.
func (c *Client) GetAllPages(ctx context.Context, path string, params map[string]any) ([]any, error) {
	return c.GetAllPagesByKey(ctx, path, defaultItemsKey, params)
}

// GetAllPagesByKey drains a listing whose items live under key. It stops
// on an empty page, a short page, or a response without a "next" marker.
// A full final page that still carries "next" costs one extra request.
func (c *Client) GetAllPagesByKey(ctx context.Context, path, key string, params map[string]any) ([]any, error) {
	if key == "" {
		key = defaultItemsKey
	}
	opts := PageOptions{Limit: PageLimit(params)}
	if _, set := params["limit"]; !set && c.pageLimit > 0 {
		opts.Limit = c.pageLimit
	}
	all := make([]any, 0)

	for {
		q, err := pageQuery(params, opts)
		if err != nil {
			return nil, newRequestError(err)
		}
		result, err := c.do(ctx, apiV1, http.MethodGet, path, q, nil)
		if err != nil {
			return nil, err
		}

		page := pageItems(result, key)
		if len(page) == 0 {
			break
		}
		all = append(all, page...)

		if len(page) < opts.Limit || !hasNext(result) {
			break
		}
		opts.Offset += opts.Limit
	}
	return all, nil
}

// PageLimit reads the "limit" parameter, defaulting to DefaultPageLimit.
func PageLimit(params map[string]any) int {
	var limit int
	switch v := params["limit"].(type) {
	case int:
		limit = v
	case int64:
		limit = int(v)
	case float64:
		limit = int(v)
	case json.Number:
		n, err := v.Int64()
		if err == nil {
			limit = int(n)
		}
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			limit = n
		}
	}
	if limit <= 0 {
		return DefaultPageLimit
	}
	return limit
}

func pageQuery(params map[string]any, opts PageOptions) (url.Values, error) {
	rest := make(map[string]any, len(params))
	for k, v := range params {
		if k == "limit" || k == "offset" {
			continue
		}
		rest[k] = v
	}
	values := EncodeQuery(rest)

	paging, err := query.Values(opts)
	if err != nil {
		return nil, fmt.Errorf("encode page options: %w", err)
	}
	for k, v := range paging {
		values[k] = v
	}
	return values, nil
}

func pageItems(result any, key string) []any {
	m, ok := result.(map[string]any)
	if !ok {
		return nil
	}
	items, _ := m[key].([]any)
	return items
}

func hasNext(result any) bool {
	m, ok := result.(map[string]any)
	if !ok {
		return false
	}
	switch v := m["next"].(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	default:
		return true
	}
}
