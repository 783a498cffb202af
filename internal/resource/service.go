// Package resource implements the read-through, write-invalidate CRUD client
// shared by every domain service. A domain package supplies a Config and
// record type; the cache, error prefixing and metrics live here.
package resource

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
	"github.com/wolfman30/clinicdesk/internal/cache"
	"github.com/wolfman30/clinicdesk/internal/observability/metrics"
	"github.com/wolfman30/clinicdesk/pkg/logging"
)

const (
	// SearchTTL is the freshness window for search endpoints.
	SearchTTL = time.Minute
	// AnalyticsTTL is the freshness window for report endpoints.
	AnalyticsTTL = 10 * time.Minute

	OpList   = "list"
	OpGet    = "get"
	OpSearch = "search"
)

// ErrIDRequired is returned by single-record operations given an empty id.
var ErrIDRequired = errors.New("id is required")

// Policy is the cache decision for one endpoint.
type Policy struct {
	TTL    time.Duration // zero means the service TTL
	Bypass bool          // always hit the network, never store
}

// Config describes one backend resource.
type Config struct {
	Name      string // error prefix, e.g. "ClientService"
	Path      string // e.g. "/clients"
	Namespace string // cache key prefix, e.g. "clients"
	TTL       time.Duration
	Endpoints map[string]Policy
}

// Deps are the collaborators a service is built from. Cache is owned by the
// service; passing the same instance to two services is a caller error.
type Deps struct {
	Requester apiclient.Requester
	Cache     cache.Cache
	Metrics   *metrics.ClientMetrics
	Logger    *logging.Logger
	// DefaultTTL applies when the resource config sets no TTL of its own.
	DefaultTTL time.Duration
}

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items      []T                   `json:"items"`
	Pagination *apiclient.Pagination `json:"pagination,omitempty"`
}

// PageInfo exposes the pagination to callers that only know the page as any.
func (p Page[T]) PageInfo() *apiclient.Pagination { return p.Pagination }

// Service is the generic client for resource T.
type Service[T any] struct {
	cfg     Config
	req     apiclient.Requester
	cache   cache.Cache
	metrics *metrics.ClientMetrics
	logger  *logging.Logger
}

// New builds a Service. A nil cache gets a private in-memory one.
func New[T any](cfg Config, deps Deps) *Service[T] {
	cfg.Path = "/" + strings.Trim(cfg.Path, "/")
	if cfg.Namespace == "" {
		cfg.Namespace = strings.Trim(cfg.Path, "/")
	}
	if cfg.Name == "" {
		cfg.Name = cfg.Namespace
	}
	if cfg.TTL <= 0 {
		cfg.TTL = deps.DefaultTTL
	}
	if cfg.TTL <= 0 {
		cfg.TTL = cache.DefaultTTL
	}
	endpoints := make(map[string]Policy, len(cfg.Endpoints)+1)
	endpoints[OpSearch] = Policy{TTL: SearchTTL}
	for op, p := range cfg.Endpoints {
		endpoints[op] = p
	}
	cfg.Endpoints = endpoints

	c := deps.Cache
	if c == nil {
		c = cache.NewMemory()
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Service[T]{
		cfg:     cfg,
		req:     deps.Requester,
		cache:   c,
		metrics: deps.Metrics,
		logger:  logger.Component(cfg.Namespace),
	}
}

// Name returns the error prefix of the service.
func (s *Service[T]) Name() string { return s.cfg.Name }

// Path returns the resource path, e.g. "/clients".
func (s *Service[T]) Path() string { return s.cfg.Path }

// Endpoint joins parts onto the resource path, escaping each segment.
func (s *Service[T]) Endpoint(parts ...string) string {
	var b strings.Builder
	b.WriteString(s.cfg.Path)
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

// Policy returns the cache policy for op.
func (s *Service[T]) Policy(op string) Policy {
	p, ok := s.cfg.Endpoints[op]
	if !ok {
		p = Policy{}
	}
	if p.TTL <= 0 {
		p.TTL = s.cfg.TTL
	}
	return p
}

// Invalidate drops every cached read of this resource.
func (s *Service[T]) Invalidate(ctx context.Context) error {
	return s.cache.Clear(ctx, s.cfg.Namespace+"_")
}

// List fetches one page of records matching filters.
func (s *Service[T]) List(ctx context.Context, filters apiclient.Params, page, limit int) (Page[T], error) {
	return s.ReadPage(ctx, OpList, s.cfg.Path, PageParams(page, limit).Merge(filters))
}

// Get fetches one record by id.
func (s *Service[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	if strings.TrimSpace(id) == "" {
		return out, apiclient.Wrap(s.cfg.Name, OpGet, ErrIDRequired)
	}
	env, err := s.read(ctx, OpGet, s.Endpoint(id), nil, s.cfg.Namespace+"_"+id)
	if err != nil {
		return out, apiclient.Wrap(s.cfg.Name, OpGet, err)
	}
	if err := apiclient.Decode(env, &out); err != nil {
		return out, apiclient.Wrap(s.cfg.Name, OpGet, err)
	}
	return out, nil
}

// Search runs a free-text search. Results are cached for SearchTTL unless
// the service overrides the search policy.
func (s *Service[T]) Search(ctx context.Context, term string, filters apiclient.Params, page, limit int) (Page[T], error) {
	params := apiclient.Params{{Key: "q", Value: strings.TrimSpace(term)}}.
		Merge(PageParams(page, limit)).
		Merge(filters)
	return s.ReadPage(ctx, OpSearch, s.Endpoint("search"), params)
}

// Create posts payload and returns the created record.
func (s *Service[T]) Create(ctx context.Context, payload any) (T, error) {
	var out T
	err := s.Write(ctx, "create", http.MethodPost, s.cfg.Path, payload, &out)
	return out, err
}

// Update puts payload to the record and returns the stored version.
func (s *Service[T]) Update(ctx context.Context, id string, payload any) (T, error) {
	var out T
	if strings.TrimSpace(id) == "" {
		return out, apiclient.Wrap(s.cfg.Name, "update", ErrIDRequired)
	}
	err := s.Write(ctx, "update", http.MethodPut, s.Endpoint(id), payload, &out)
	return out, err
}

// Delete removes the record.
func (s *Service[T]) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return apiclient.Wrap(s.cfg.Name, "delete", ErrIDRequired)
	}
	return s.Write(ctx, "delete", http.MethodDelete, s.Endpoint(id), nil, nil)
}

// ReadPage GETs a list endpoint through the cache under op's policy.
func (s *Service[T]) ReadPage(ctx context.Context, op, endpoint string, params apiclient.Params) (Page[T], error) {
	return ReadPageAs[T](ctx, s, op, endpoint, params)
}

// ReadPageAs is ReadPage for list endpoints whose items are not T, such as
// a client's billing history.
func ReadPageAs[X, T any](ctx context.Context, s *Service[T], op, endpoint string, params apiclient.Params) (Page[X], error) {
	var page Page[X]
	env, err := s.read(ctx, op, endpoint, params, s.listKey(op, endpoint, params))
	if err != nil {
		return page, apiclient.Wrap(s.cfg.Name, op, err)
	}
	if err := apiclient.Decode(env, &page.Items); err != nil {
		return page, apiclient.Wrap(s.cfg.Name, op, err)
	}
	if page.Items == nil {
		page.Items = []X{}
	}
	page.Pagination = env.Pagination
	return page, nil
}

// ReadOne GETs an endpoint returning a single T.
func (s *Service[T]) ReadOne(ctx context.Context, op, endpoint string, params apiclient.Params) (T, error) {
	var out T
	err := s.ReadInto(ctx, op, endpoint, params, &out)
	return out, err
}

// ReadInto GETs an endpoint and decodes its data into out, for payloads that
// are not T.
func (s *Service[T]) ReadInto(ctx context.Context, op, endpoint string, params apiclient.Params, out any) error {
	env, err := s.read(ctx, op, endpoint, params, s.listKey(op, endpoint, params))
	if err != nil {
		return apiclient.Wrap(s.cfg.Name, op, err)
	}
	return apiclient.Wrap(s.cfg.Name, op, apiclient.Decode(env, out))
}

// Write performs a mutation and then invalidates every cached read of the
// resource. out may be nil.
func (s *Service[T]) Write(ctx context.Context, op, method, endpoint string, body, out any) error {
	return s.Send(ctx, op, apiclient.Request{Method: method, Endpoint: endpoint, Body: body}, out)
}

// Send is Write for requests that need extra headers or a timeout override.
func (s *Service[T]) Send(ctx context.Context, op string, req apiclient.Request, out any) error {
	env, err := s.req.Do(ctx, req)
	if err != nil {
		return apiclient.Wrap(s.cfg.Name, op, err)
	}
	if err := s.Invalidate(ctx); err != nil {
		s.logger.Warn("cache invalidation failed", "op", op, "error", err)
	}
	return apiclient.Wrap(s.cfg.Name, op, apiclient.Decode(env, out))
}

func (s *Service[T]) read(ctx context.Context, op, endpoint string, params apiclient.Params, key string) (*apiclient.Envelope, error) {
	policy := s.Policy(op)
	if !policy.Bypass {
		if env, ok := s.lookup(ctx, key); ok {
			return env, nil
		}
	}

	env, err := s.req.Do(ctx, apiclient.Request{
		Method:   http.MethodGet,
		Endpoint: apiclient.WithQuery(endpoint, params),
	})
	if err != nil {
		return nil, err
	}
	if !policy.Bypass {
		s.store(ctx, key, env, policy.TTL)
	}
	return env, nil
}

func (s *Service[T]) lookup(ctx context.Context, key string) (*apiclient.Envelope, bool) {
	raw, ok := s.cache.Get(ctx, key)
	if ok {
		var env apiclient.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			s.logger.Warn("dropping undecodable cache entry", "key", key, "error", err)
			_ = s.cache.Delete(ctx, key)
			ok = false
		} else {
			s.metrics.ObserveCache(s.cfg.Namespace, true)
			s.logger.Debug("cache hit", "key", key)
			return &env, true
		}
	}
	s.metrics.ObserveCache(s.cfg.Namespace, false)
	return nil, false
}

func (s *Service[T]) store(ctx context.Context, key string, env *apiclient.Envelope, ttl time.Duration) {
	raw, err := json.Marshal(env)
	if err != nil {
		s.logger.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, raw, ttl); err != nil {
		s.logger.Warn("cache store failed", "key", key, "error", err)
	}
}

// listKey renders <namespace>_<op>[_<subpath>][_<query>]. The full encoded
// query is part of the key so different filters never collide.
func (s *Service[T]) listKey(op, endpoint string, params apiclient.Params) string {
	parts := []string{s.cfg.Namespace, op}
	if sub := strings.Trim(strings.TrimPrefix(endpoint, s.cfg.Path), "/"); sub != "" {
		parts = append(parts, sub)
	}
	if qs := apiclient.BuildQuery(params); qs != "" {
		parts = append(parts, qs)
	}
	return strings.Join(parts, "_")
}

// PageParams renders 1-indexed page/limit parameters. A non-positive limit
// is left to the server default.
func PageParams(page, limit int) apiclient.Params {
	if page < 1 {
		page = 1
	}
	params := apiclient.Params{{Key: "page", Value: page}}
	if limit > 0 {
		params = params.Add("limit", limit)
	}
	return params
}
