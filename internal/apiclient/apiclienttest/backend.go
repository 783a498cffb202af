// Package apiclienttest provides a fake envelope backend for service tests.
package apiclienttest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
	"github.com/wolfman30/clinicdesk/internal/observability/metrics"
	"github.com/wolfman30/clinicdesk/pkg/logging"
)

// Call is one request seen by the backend.
type Call struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

// Backend is an httptest server that records every call.
type Backend struct {
	Server   *httptest.Server
	Registry *prometheus.Registry
	Metrics  *metrics.ClientMetrics

	mu    sync.Mutex
	calls []Call
}

// NewBackend starts a server answering with handler. It is closed on test
// cleanup.
func NewBackend(t testing.TB, handler http.HandlerFunc) *Backend {
	t.Helper()
	reg := prometheus.NewRegistry()
	b := &Backend{Registry: reg, Metrics: metrics.NewClientMetrics(reg)}
	b.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		b.mu.Lock()
		b.calls = append(b.calls, Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})
		b.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(b.Server.Close)
	return b
}

// Executor returns an executor pointed at the backend under /api/v1.
func (b *Backend) Executor(t testing.TB) *apiclient.Executor {
	t.Helper()
	exec, err := apiclient.New(apiclient.Config{
		BaseURL:  b.Server.URL,
		BasePath: func() string { return "/api/v1" },
		Metrics:  b.Metrics,
		Logger:   logging.Discard(),
	})
	if err != nil {
		t.Fatalf("apiclienttest: build executor: %v", err)
	}
	return exec
}

// Calls returns a copy of the recorded calls.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// Count returns how many calls used method.
func (b *Backend) Count(method string) int {
	n := 0
	for _, c := range b.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Last returns the most recent call.
func (b *Backend) Last() Call {
	calls := b.Calls()
	if len(calls) == 0 {
		return Call{}
	}
	return calls[len(calls)-1]
}

// WriteData answers with a success envelope.
func WriteData(w http.ResponseWriter, status int, data any, pagination *apiclient.Pagination) {
	writeJSON(w, status, map[string]any{
		"success":    true,
		"data":       data,
		"pagination": pagination,
	})
}

// WriteError answers with a failure envelope.
func WriteError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   map[string]any{"code": code, "message": message},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
