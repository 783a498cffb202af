// Package clinicdesk wires the API client for the clinic backend: one
// executor, one token store and a typed service per resource, each with its
// own response cache.
package clinicdesk

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
	"github.com/wolfman30/clinicdesk/internal/app/bootstrap"
	"github.com/wolfman30/clinicdesk/internal/appointments"
	"github.com/wolfman30/clinicdesk/internal/auth"
	"github.com/wolfman30/clinicdesk/internal/cache"
	"github.com/wolfman30/clinicdesk/internal/clients"
	"github.com/wolfman30/clinicdesk/internal/clinic"
	"github.com/wolfman30/clinicdesk/internal/config"
	"github.com/wolfman30/clinicdesk/internal/events"
	"github.com/wolfman30/clinicdesk/internal/export"
	"github.com/wolfman30/clinicdesk/internal/notifications"
	"github.com/wolfman30/clinicdesk/internal/observability/metrics"
	"github.com/wolfman30/clinicdesk/internal/orders"
	"github.com/wolfman30/clinicdesk/internal/payments"
	"github.com/wolfman30/clinicdesk/internal/products"
	"github.com/wolfman30/clinicdesk/internal/reports"
	"github.com/wolfman30/clinicdesk/internal/resource"
	"github.com/wolfman30/clinicdesk/internal/resources"
	"github.com/wolfman30/clinicdesk/internal/users"
	"github.com/wolfman30/clinicdesk/pkg/logging"
)

// Client bundles every domain service.
type Client struct {
	Tokens   auth.TokenStore
	Executor *apiclient.Executor
	Metrics  *metrics.ClientMetrics

	Clients       *clients.Service
	Orders        *orders.Service
	Payments      *payments.Service
	Products      *products.Service
	Resources     *resources.Service
	Appointments  *appointments.Service
	Events        *events.Service
	Notifications *notifications.Service
	Users         *users.Service
	Clinic        *clinic.Service
	Reports       *reports.Service

	caches map[string]cache.Cache
	redis  *redis.Client
	logger *logging.Logger
}

type options struct {
	tokens     auth.TokenStore
	httpClient *http.Client
	registerer prometheus.Registerer
	redis      *redis.Client
	caches     bootstrap.CacheFactory
	uploader   *export.S3Uploader
	basePath   func() string
}

// Option customizes New.
type Option func(*options)

// WithTokenStore replaces the file-backed token store.
func WithTokenStore(ts auth.TokenStore) Option {
	return func(o *options) { o.tokens = ts }
}

// WithHTTPClient sets the transport used for every call.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithRegisterer registers client metrics on reg instead of the default
// registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithRedis backs every service cache with client. The Client does not close
// a client passed this way.
func WithRedis(client *redis.Client) Option {
	return func(o *options) { o.redis = client }
}

// WithCacheFactory overrides how per-service caches are built.
func WithCacheFactory(f bootstrap.CacheFactory) Option {
	return func(o *options) { o.caches = f }
}

// WithExportUploader archives report exports to S3.
func WithExportUploader(u *export.S3Uploader) Option {
	return func(o *options) { o.uploader = u }
}

// WithBasePath overrides the per-call base path lookup.
func WithBasePath(fn func() string) Option {
	return func(o *options) { o.basePath = fn }
}

// New builds a Client from cfg.
func New(ctx context.Context, cfg *config.Config, logger *logging.Logger, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("clinicdesk: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	o := options{registerer: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{logger: logger, caches: make(map[string]cache.Cache)}

	c.Tokens = o.tokens
	if c.Tokens == nil {
		c.Tokens = auth.NewFileStore(cfg.TokenFile, logger.Component("auth"))
	}
	c.Metrics = metrics.NewClientMetrics(o.registerer)

	exec, err := apiclient.New(apiclient.Config{
		BaseURL:    cfg.APIBaseURL,
		BasePath:   o.basePath,
		Timeout:    cfg.RequestTimeout,
		HTTPClient: o.httpClient,
		Tokens:     c.Tokens,
		Metrics:    c.Metrics,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("clinicdesk: %w", err)
	}
	c.Executor = exec

	factory := o.caches
	if factory == nil {
		redisClient := o.redis
		if redisClient == nil {
			redisClient = bootstrap.BuildRedisClient(ctx, cfg, logger, true)
			c.redis = redisClient
		}
		factory = bootstrap.BuildCacheFactory(redisClient, logger)
	}
	deps := func(rc resource.Config) resource.Deps {
		ch := factory(rc.Namespace)
		c.caches[rc.Namespace] = ch
		return resource.Deps{
			Requester:  exec,
			Cache:      ch,
			Metrics:    c.Metrics,
			Logger:     logger,
			DefaultTTL: cfg.CacheTTL,
		}
	}

	c.Clients = clients.NewService(deps(clients.Config))
	c.Orders = orders.NewService(deps(orders.Config))
	c.Payments = payments.NewService(deps(payments.Config))
	c.Products = products.NewService(deps(products.Config))
	c.Resources = resources.NewService(deps(resources.Config))
	c.Appointments = appointments.NewService(deps(appointments.Config))
	c.Events = events.NewService(deps(events.Config))
	c.Notifications = notifications.NewService(deps(notifications.Config))
	c.Users = users.NewService(deps(users.Config))
	c.Clinic = clinic.NewService(deps(clinic.Config))
	c.Reports = reports.NewService(deps(reports.Config), reports.WithUploader(o.uploader))

	logger.Debug("clinicdesk client ready",
		"base_url", cfg.APIBaseURL,
		"cache_backend", cacheBackend(c.redis != nil || o.redis != nil),
		"services", len(c.caches),
	)
	return c, nil
}

func cacheBackend(redis bool) string {
	if redis {
		return "redis"
	}
	return "memory"
}

// ClearCaches empties every service cache, as after a logout.
func (c *Client) ClearCaches(ctx context.Context) error {
	var errs []error
	for ns, ch := range c.caches {
		if err := ch.Clear(ctx, ""); err != nil {
			errs = append(errs, fmt.Errorf("clear %s: %w", ns, err))
		}
	}
	return errors.Join(errs...)
}

// Logout drops the stored token and every cached response.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.Tokens.Clear(); err != nil {
		return fmt.Errorf("clinicdesk: clear token: %w", err)
	}
	return c.ClearCaches(ctx)
}

// Close releases the Redis connection New opened, if any.
func (c *Client) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}
