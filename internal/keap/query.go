package keap

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"sort"
	"strconv"
)

// EncodeQuery converts loosely typed parameters into URL values. Nil
// values are dropped, slices become repeated keys and nested maps are
// sent as JSON.
func EncodeQuery(params map[string]any) url.Values {
	values := url.Values{}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		v := params[key]
		if v == nil {
			continue
		}
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			if _, isBytes := v.([]byte); isBytes {
				values.Add(key, string(v.([]byte)))
				continue
			}
			for i := 0; i < rv.Len(); i++ {
				item := rv.Index(i).Interface()
				if item == nil {
					continue
				}
				values.Add(key, formatScalar(item))
			}
		case reflect.Map, reflect.Struct:
			b, err := json.Marshal(v)
			if err != nil {
				values.Add(key, fmt.Sprint(v))
				continue
			}
			values.Add(key, string(b))
		case reflect.Pointer:
			if rv.IsNil() {
				continue
			}
			values.Add(key, formatScalar(rv.Elem().Interface()))
		default:
			values.Add(key, formatScalar(v))
		}
	}
	return values
}

func formatScalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}

// PathID formats an identifier for use as a URL path segment. Whole
// floats (as decoded from JSON arguments) lose their fractional part.
func PathID(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return url.PathEscape(x)
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return url.PathEscape(x.String())
	default:
		return url.PathEscape(formatScalar(v))
	}
}
