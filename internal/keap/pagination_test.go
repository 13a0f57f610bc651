package keap

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// pagedListing serves total items in offset pages. When alwaysNext is
// set every page carries a next marker, otherwise only pages that have
// more items after them do.
type pagedListing struct {
	total      int
	key        string
	alwaysNext bool
	omitNext   bool

	offsets []int
	limits  []int
}

func (p *pagedListing) client(t require.TestingT, opts ...Option) *Client {
	hc := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		offset, _ := strconv.Atoi(q.Get("offset"))
		limit, _ := strconv.Atoi(q.Get("limit"))
		p.offsets = append(p.offsets, offset)
		p.limits = append(p.limits, limit)

		items := make([]any, 0)
		for i := offset; i < p.total && i < offset+limit; i++ {
			items = append(items, map[string]any{"id": i})
		}
		key := p.key
		if key == "" {
			key = "data"
		}
		body := map[string]any{key: items}
		if !p.omitNext && (p.alwaysNext || offset+len(items) < p.total) {
			body["next"] = "https://api.example/next"
		}
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(string(b))),
			Request:    req,
		}, nil
	})}

	c, err := NewClient("tok", "", append([]Option{WithHTTPClient(hc)}, opts...)...)
	require.NoError(t, err)
	return c
}

func TestGetAllPagesDrainsEveryPage(t *testing.T) {
	listing := &pagedListing{total: 487}
	c := listing.client(t)

	items, err := c.GetAllPages(context.Background(), "/contacts", nil)
	require.NoError(t, err)
	require.Len(t, items, 487)
	require.Equal(t, []int{0, 200, 400}, listing.offsets)
	require.Equal(t, []int{200, 200, 200}, listing.limits)

	first := items[0].(map[string]any)
	last := items[486].(map[string]any)
	require.Equal(t, json.Number("0"), first["id"])
	require.Equal(t, json.Number("486"), last["id"])
}

func TestGetAllPagesEmptyFirstPage(t *testing.T) {
	listing := &pagedListing{total: 0}
	c := listing.client(t)

	items, err := c.GetAllPages(context.Background(), "/contacts", nil)
	require.NoError(t, err)
	require.NotNil(t, items)
	require.Empty(t, items)
	require.Equal(t, []int{0}, listing.offsets)
}

func TestGetAllPagesHonoursLimitParam(t *testing.T) {
	listing := &pagedListing{total: 25}
	c := listing.client(t)

	items, err := c.GetAllPages(context.Background(), "/notes", map[string]any{"limit": float64(10), "offset": 99})
	require.NoError(t, err)
	require.Len(t, items, 25)
	require.Equal(t, []int{0, 10, 20}, listing.offsets)
	require.Equal(t, []int{10, 10, 10}, listing.limits)
}

func TestGetAllPagesUsesClientPageLimit(t *testing.T) {
	listing := &pagedListing{total: 120}
	c := listing.client(t, WithPageLimit(50))

	items, err := c.GetAllPages(context.Background(), "/contacts", nil)
	require.NoError(t, err)
	require.Len(t, items, 120)
	require.Equal(t, []int{0, 50, 100}, listing.offsets)

	listing = &pagedListing{total: 30}
	c = listing.client(t, WithPageLimit(50))
	_, err = c.GetAllPages(context.Background(), "/contacts", map[string]any{"limit": 15})
	require.NoError(t, err)
	require.Equal(t, []int{15, 15}, listing.limits)
}

// A full page without a next marker ends the drain even when the server
// holds more items. Keap always sends next while more pages exist, so the
// remaining items are not fetched.
func TestGetAllPagesStopsOnFullPageWithoutNext(t *testing.T) {
	listing := &pagedListing{total: 400, omitNext: true}
	c := listing.client(t)

	items, err := c.GetAllPages(context.Background(), "/contacts", nil)
	require.NoError(t, err)
	require.Len(t, items, 200)
	require.Equal(t, []int{0}, listing.offsets)
}

func TestGetAllPagesByKey(t *testing.T) {
	listing := &pagedListing{total: 5, key: "contacts"}
	c := listing.client(t)

	items, err := c.GetAllPagesByKey(context.Background(), "/contacts", "contacts", map[string]any{"limit": "2"})
	require.NoError(t, err)
	require.Len(t, items, 5)
	require.Equal(t, []int{0, 2, 4}, listing.offsets)
}

func TestGetAllPagesPropagatesErrors(t *testing.T) {
	hc := &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusForbidden,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader("")),
			Request:    req,
		}, nil
	})}
	c, err := NewClient("tok", "", WithHTTPClient(hc))
	require.NoError(t, err)

	items, err := c.GetAllPages(context.Background(), "/contacts", nil)
	require.Nil(t, items)
	require.True(t, IsKind(err, KindForbidden))
}

func TestPageLimit(t *testing.T) {
	require.Equal(t, 200, PageLimit(nil))
	require.Equal(t, 200, PageLimit(map[string]any{"limit": 0}))
	require.Equal(t, 200, PageLimit(map[string]any{"limit": "abc"}))
	require.Equal(t, 50, PageLimit(map[string]any{"limit": float64(50)}))
	require.Equal(t, 75, PageLimit(map[string]any{"limit": json.Number("75")}))
	require.Equal(t, 30, PageLimit(map[string]any{"limit": " 30 "}))
}

func TestGetAllPagesProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		total := rapid.IntRange(0, 900).Draw(t, "total")
		limit := rapid.IntRange(1, 250).Draw(t, "limit")
		alwaysNext := rapid.Bool().Draw(t, "alwaysNext")

		listing := &pagedListing{total: total, alwaysNext: alwaysNext}
		c := listing.client(t)

		items, err := c.GetAllPages(context.Background(), "/contacts", map[string]any{"limit": limit})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != total {
			t.Fatalf("got %d items, want %d", len(items), total)
		}

		want := (total + limit - 1) / limit
		if total == 0 || (alwaysNext && total%limit == 0) {
			want++
		}
		if len(listing.offsets) != want {
			t.Fatalf("got %d requests, want %d", len(listing.offsets), want)
		}
		for i, off := range listing.offsets {
			if off != i*limit {
				t.Fatalf("request %d used offset %d, want %d", i, off, i*limit)
			}
		}
	})
}
