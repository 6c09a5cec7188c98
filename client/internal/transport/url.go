package transport

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// BuildURL joins base, path and the encoded query. Trailing slashes are
// removed from base, a missing leading slash is added to a non-empty path,
// and "?" is only appended when the query produced at least one entry.
func BuildURL(base, path string, query map[string]any) string {
	base = strings.TrimRight(base, "/")
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if qs := EncodeQuery(query); qs != "" {
		return base + path + "?" + qs
	}
	return base + path
}

// EncodeQuery serializes query in repeated-key form. Nil values, nil
// pointers and empty strings are omitted, both as scalars and as slice
// elements. Keys come out sorted; slice elements keep their order.
func EncodeQuery(query map[string]any) string {
	if len(query) == 0 {
		return ""
	}
	values := url.Values{}
	for key, raw := range query {
		for _, v := range queryValues(raw) {
			values.Add(key, v)
		}
	}
	return values.Encode()
}

func queryValues(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		out := make([]string, 0, len(v))
		for _, s := range v {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	rv := reflect.ValueOf(raw)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		// []byte is a scalar string, not a list of numbers.
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			s, ok := scalarString(rv)
			if !ok {
				return nil
			}
			return []string{s}
		}
		out := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			if s, ok := scalarString(rv.Index(i)); ok {
				out = append(out, s)
			}
		}
		return out
	}
	if s, ok := scalarString(rv); ok {
		return []string{s}
	}
	return nil
}

// scalarString formats one query value. ok is false for values that must be
// omitted.
func scalarString(rv reflect.Value) (string, bool) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return "", false
	}
	if s, ok := rv.Interface().(fmt.Stringer); ok {
		out := s.String()
		return out, out != ""
	}

	var out string
	switch rv.Kind() {
	case reflect.String:
		out = rv.String()
	case reflect.Bool:
		out = strconv.FormatBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out = strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		out = strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		out = strconv.FormatFloat(rv.Float(), 'f', -1, 32)
	case reflect.Float64:
		out = strconv.FormatFloat(rv.Float(), 'f', -1, 64)
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			out = string(rv.Bytes())
		} else {
			out = fmt.Sprint(rv.Interface())
		}
	case reflect.Array:
		out = fmt.Sprint(rv.Interface())
	default:
		out = fmt.Sprint(rv.Interface())
	}
	return out, out != ""
}
