// Package apiclient performs single HTTP round trips against the clinic
// backend and normalizes every failure into NetworkError, TimeoutError,
// APIError or ParseError.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/clinicdesk/internal/config"
	"github.com/wolfman30/clinicdesk/internal/observability/metrics"
	"github.com/wolfman30/clinicdesk/pkg/logging"
)

const (
	// DefaultTimeout bounds a request when neither the executor nor the
	// request sets one.
	DefaultTimeout = 30 * time.Second

	maxResponseBytes = 10 << 20
)

var tracer = otel.Tracer("clinicdesk.internal.apiclient")

// TokenSource yields the bearer token to attach, if any.
type TokenSource interface {
	Token() (string, bool)
}

// Requester is what services depend on; *Executor implements it.
type Requester interface {
	Do(ctx context.Context, req Request) (*Envelope, error)
}

// Request describes one backend call. Endpoint is relative to the base path
// and may carry a query string.
type Request struct {
	Method   string
	Endpoint string
	Body     any
	Timeout  time.Duration
	Headers  map[string]string
}

// Config holds configuration for the executor
type Config struct {
	BaseURL    string        // scheme and host, e.g. "https://api.bodybliss.test"
	BasePath   func() string // resolved on every call; defaults to config.BasePath
	Timeout    time.Duration // defaults to 30s
	HTTPClient *http.Client
	Tokens     TokenSource
	Metrics    *metrics.ClientMetrics
	Logger     *logging.Logger
}

// Executor issues requests with a deadline, bearer auth and envelope decoding.
type Executor struct {
	baseURL    string
	basePath   func() string
	timeout    time.Duration
	httpClient *http.Client
	tokens     TokenSource
	metrics    *metrics.ClientMetrics
	logger     *logging.Logger
}

// New creates an executor.
func New(cfg Config) (*Executor, error) {
	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("apiclient: BaseURL is required")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("apiclient: BaseURL must be absolute, got %q", cfg.BaseURL)
	}

	e := &Executor{
		baseURL:    baseURL,
		basePath:   cfg.BasePath,
		timeout:    cfg.Timeout,
		httpClient: cfg.HTTPClient,
		tokens:     cfg.Tokens,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
	if e.basePath == nil {
		e.basePath = config.BasePath
	}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	if e.httpClient == nil {
		// The per-request context carries the deadline.
		e.httpClient = &http.Client{}
	}
	if e.logger == nil {
		e.logger = logging.Default()
	}
	e.logger = e.logger.Component("apiclient")
	return e, nil
}

// URL resolves a relative endpoint against the base URL and current base path.
func (e *Executor) URL(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	path := "/" + strings.Trim(e.basePath(), "/")
	if path == "/" {
		path = ""
	}
	if endpoint != "" && !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return e.baseURL + path + endpoint
}

// Do performs exactly one round trip. There are no retries.
func (e *Executor) Do(ctx context.Context, req Request) (*Envelope, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = e.timeout
	}

	ctx, span := tracer.Start(ctx, "apiclient.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("clinicdesk.endpoint", req.Endpoint),
		),
	)
	defer span.End()

	start := time.Now()
	env, status, err := e.roundTrip(ctx, method, timeout, req)
	elapsed := time.Since(start)

	outcome := outcomeLabel(status, err)
	e.metrics.ObserveRequest(method, outcome, elapsed.Seconds())
	span.SetAttributes(attribute.Int("http.status_code", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.Debug("api request failed",
			"method", method,
			"endpoint", req.Endpoint,
			"status", status,
			"outcome", outcome,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	e.logger.Debug("api request completed",
		"method", method,
		"endpoint", req.Endpoint,
		"status", status,
		"duration_ms", elapsed.Milliseconds(),
	)
	return env, nil
}

func (e *Executor) roundTrip(ctx context.Context, method string, timeout time.Duration, req Request) (*Envelope, int, error) {
	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("apiclient: marshal request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, method, e.URL(req.Endpoint), body)
	if err != nil {
		return nil, 0, fmt.Errorf("apiclient: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if e.tokens != nil {
		if token, ok := e.tokens.Token(); ok {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, e.transportError(ctx, reqCtx, method, req.Endpoint, timeout, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, e.transportError(ctx, reqCtx, method, req.Endpoint, timeout, err)
	}

	env, err := decodeEnvelope(resp.StatusCode, raw)
	return env, resp.StatusCode, err
}

// transportError separates our own deadline from caller cancellation.
func (e *Executor) transportError(parent, reqCtx context.Context, method, endpoint string, timeout time.Duration, err error) error {
	if parent.Err() == nil && errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Method: method, Endpoint: endpoint, Timeout: timeout}
	}
	if cause := parent.Err(); cause != nil {
		err = cause
	}
	return &NetworkError{Method: method, Endpoint: endpoint, Err: err}
}

func decodeEnvelope(status int, raw []byte) (*Envelope, error) {
	ok := status >= 200 && status < 300
	if ok && len(bytes.TrimSpace(raw)) == 0 {
		// 204 and empty 2xx bodies carry no envelope.
		return &Envelope{Success: true}, nil
	}

	var env Envelope
	decodeErr := json.Unmarshal(raw, &env)

	if !ok {
		apiErr := &APIError{Status: status, Message: http.StatusText(status)}
		if decodeErr == nil {
			if msg := env.failureMessage(); msg != "" {
				apiErr.Message = msg
			}
			if env.Error != nil {
				apiErr.Code = env.Error.Code
				apiErr.Details = env.Error.Details
			}
		}
		return nil, apiErr
	}

	if decodeErr != nil {
		return nil, &ParseError{Status: status, Err: decodeErr}
	}
	if !env.Success {
		apiErr := &APIError{Status: status, Message: env.failureMessage()}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Details = env.Error.Details
		}
		if apiErr.Message == "" {
			apiErr.Message = "request failed"
		}
		return nil, apiErr
	}
	return &env, nil
}

func outcomeLabel(status int, err error) string {
	if err == nil {
		return "ok"
	}
	var (
		te *TimeoutError
		ne *NetworkError
		pe *ParseError
		ae *APIError
	)
	switch {
	case errors.As(err, &te):
		return "timeout"
	case errors.As(err, &ne):
		return "network"
	case errors.As(err, &pe):
		return "parse"
	case errors.As(err, &ae):
		return metrics.StatusOutcome(ae.Status)
	}
	if status > 0 {
		return metrics.StatusOutcome(status)
	}
	return "error"
}

// Decode unmarshals the envelope data into out. Missing data leaves out untouched.
func Decode(env *Envelope, out any) error {
	if env == nil || len(env.Data) == 0 || string(env.Data) == "null" || out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &ParseError{Status: http.StatusOK, Err: err}
	}
	return nil
}
