package mockapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// reserved query keys that never act as equality filters.
var reserved = map[string]bool{
	"page": true, "limit": true, "q": true, "search": true,
	"sortBy": true, "sortOrder": true,
	"from": true, "to": true, "start": true, "end": true,
	"startDate": true, "endDate": true,
}

// ListQuery is the parsed form of a list request.
type ListQuery struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
	Filters   map[string]string
	Match     []func(Record) bool
}

// ParseListQuery reads page/limit, search, sort, time range and equality
// filters from a query string.
func ParseListQuery(v url.Values) ListQuery {
	q := ListQuery{
		Page:      atoiDefault(v.Get("page"), 1),
		Limit:     atoiDefault(v.Get("limit"), defaultLimit),
		Search:    firstNonEmpty(v.Get("q"), v.Get("search")),
		SortBy:    v.Get("sortBy"),
		SortOrder: v.Get("sortOrder"),
		Filters:   map[string]string{},
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	if q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	for key, values := range v {
		if reserved[key] || len(values) == 0 || values[0] == "" {
			continue
		}
		q.Filters[key] = values[0]
	}
	from, hasFrom := parseInstant(v.Get("from"))
	to, hasTo := parseInstant(v.Get("to"))
	if hasFrom || hasTo {
		q.Match = append(q.Match, func(r Record) bool {
			t, ok := eventTime(r)
			if !ok {
				return false
			}
			return (!hasFrom || !t.Before(from)) && (!hasTo || t.Before(to))
		})
	}
	return q
}

func (q ListQuery) matches(r Record) bool {
	for key, want := range q.Filters {
		if !fieldMatches(r, key, want) {
			return false
		}
	}
	if q.Search != "" && !containsText(r, strings.ToLower(q.Search)) {
		return false
	}
	for _, fn := range q.Match {
		if !fn(r) {
			return false
		}
	}
	return true
}

// fieldMatches compares a scalar field, or membership for list fields. A
// singular key also matches its plural list field, so tag=vip hits tags.
func fieldMatches(r Record, key, want string) bool {
	v, ok := r[key]
	if !ok {
		v, ok = r[key+"s"]
		if !ok {
			return false
		}
	}
	if list, isList := v.([]any); isList {
		for _, item := range list {
			if fmt.Sprint(item) == want {
				return true
			}
		}
		return false
	}
	return scalarString(v) == want
}

func scalarString(v any) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func containsText(r Record, needle string) bool {
	for _, v := range r {
		switch val := v.(type) {
		case string:
			if strings.Contains(strings.ToLower(val), needle) {
				return true
			}
		case []any:
			for _, item := range val {
				if s, ok := item.(string); ok && strings.Contains(strings.ToLower(s), needle) {
					return true
				}
			}
		}
	}
	return false
}

// eventTime is the instant a record is filed under for range queries.
func eventTime(r Record) (time.Time, bool) {
	for _, key := range []string{"startTime", "paidAt", "createdAt"} {
		if t, ok := r.Time(key); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseInstant accepts RFC 3339 or a bare YYYY-MM-DD.
func parseInstant(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func atoiDefault(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
