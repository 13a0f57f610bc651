package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/keapmcp/keap-mcp/internal/keap"
)

// Args are the decoded arguments of one tool call.
type Args map[string]any

// Get returns the raw value for key, or nil.
func (a Args) Get(key string) any {
	if a == nil {
		return nil
	}
	return a[key]
}

// Has reports whether key carries a usable value. Nil, empty strings,
// false and zero count as absent, which is how optional nested objects
// are decided.
func (a Args) Has(key string) bool {
	switch v := a.Get(key).(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0 && !math.IsNaN(v)
	case int:
		return v != 0
	case int64:
		return v != 0
	case json.Number:
		return v != "" && v != "0"
	default:
		return true
	}
}

// String returns the value for key formatted as a string.
func (a Args) String(key string) string {
	switch v := a.Get(key).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// ID formats the value for key as a URL path segment.
func (a Args) ID(key string) string {
	return keap.PathID(a.Get(key))
}

// Or returns the value for key, or def when it is absent.
func (a Args) Or(key string, def any) any {
	if !a.Has(key) {
		return def
	}
	return a[key]
}

// Strings returns the value for key as a string slice. A single string is
// treated as a one-element slice.
func (a Args) Strings(key string) []string {
	switch v := a.Get(key).(type) {
	case nil:
		return nil
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

// List returns the value for key as a slice of values.
func (a Args) List(key string) []any {
	switch v := a.Get(key).(type) {
	case nil:
		return nil
	case []any:
		return v
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	default:
		return []any{v}
	}
}

// Joined returns the string values of key joined by commas, or nil when
// there are none.
func (a Args) Joined(key string) any {
	values := a.Strings(key)
	if len(values) == 0 {
		return nil
	}
	return strings.Join(values, ",")
}

// Without returns a copy of the arguments minus the given keys.
func (a Args) Without(keys ...string) map[string]any {
	out := make(map[string]any, len(a))
	for k, v := range a {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// Map returns the arguments as a plain map.
func (a Args) Map() map[string]any {
	return a.Without()
}

// compact drops nil entries so optional fields are omitted from request
// bodies instead of being sent as null.
func compact(m map[string]any) map[string]any {
	for k, v := range m {
		if v == nil {
			delete(m, k)
		}
	}
	return m
}

// ref builds a {"id": ...} reference object when key is set.
func ref(a Args, key string) any {
	if !a.Has(key) {
		return nil
	}
	return map[string]any{"id": a[key]}
}
