package apiclient

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Param is one query-string entry.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered set of query-string entries. Order is preserved in
// the encoded output; Go maps would not do that.
type Params []Param

// Add appends key=value.
func (p Params) Add(key string, value any) Params {
	return append(p, Param{Key: key, Value: value})
}

// Set replaces the first entry for key or appends it.
func (p Params) Set(key string, value any) Params {
	for i := range p {
		if p[i].Key == key {
			p[i].Value = value
			return p
		}
	}
	return p.Add(key, value)
}

// Get returns the value of the first entry for key.
func (p Params) Get(key string) (any, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// Merge returns p followed by every entry of other whose key p lacks.
func (p Params) Merge(other Params) Params {
	out := make(Params, 0, len(p)+len(other))
	out = append(out, p...)
	for _, kv := range other {
		if _, ok := out.Get(kv.Key); !ok {
			out = append(out, kv)
		}
	}
	return out
}

// BuildQuery encodes params as key=value pairs joined by '&', in input
// order. Nil values, nil pointers and empty strings are dropped.
func BuildQuery(params Params) string {
	parts := make([]string, 0, len(params))
	for _, kv := range params {
		value, ok := formatValue(kv.Value)
		if !ok {
			continue
		}
		parts = append(parts, url.QueryEscape(kv.Key)+"="+url.QueryEscape(value))
	}
	return strings.Join(parts, "&")
}

// WithQuery appends the encoded params to endpoint.
func WithQuery(endpoint string, params Params) string {
	qs := BuildQuery(params)
	if qs == "" {
		return endpoint
	}
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + qs
}

func formatValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "", false
		}
		return formatValue(rv.Elem().Interface())
	}

	switch val := v.(type) {
	case string:
		return val, val != ""
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case time.Time:
		if val.IsZero() {
			return "", false
		}
		return val.Format(time.RFC3339), true
	case fmt.Stringer:
		s := val.String()
		return s, s != ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		s := rv.String()
		return s, s != ""
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), true
	}
	return fmt.Sprint(v), true
}

// DateLayout is the calendar-date format the backend expects.
const DateLayout = "2006-01-02"

// Date renders t as YYYY-MM-DD, or "" (omitted) for the zero time.
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
