package mockapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
	"github.com/wolfman30/clinicdesk/internal/appointments"
	"github.com/wolfman30/clinicdesk/internal/auth"
	"github.com/wolfman30/clinicdesk/internal/cache"
	"github.com/wolfman30/clinicdesk/internal/clients"
	"github.com/wolfman30/clinicdesk/internal/clinic"
	httpmiddleware "github.com/wolfman30/clinicdesk/internal/http/middleware"
	"github.com/wolfman30/clinicdesk/internal/mockapi"
	"github.com/wolfman30/clinicdesk/internal/notifications"
	"github.com/wolfman30/clinicdesk/internal/payments"
	"github.com/wolfman30/clinicdesk/internal/products"
	"github.com/wolfman30/clinicdesk/internal/reports"
	"github.com/wolfman30/clinicdesk/internal/resource"
	"github.com/wolfman30/clinicdesk/internal/resources"
	"github.com/wolfman30/clinicdesk/internal/users"
	"github.com/wolfman30/clinicdesk/pkg/logging"
)

// Wednesday noon.
var now = time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)

type stack struct {
	srv  *httptest.Server
	exec *apiclient.Executor
}

func (s stack) deps() resource.Deps {
	return resource.Deps{Requester: s.exec, Cache: cache.NewMemory(), Logger: logging.Discard()}
}

func newStack(t *testing.T, cfg mockapi.Config, tokens apiclient.TokenSource) stack {
	t.Helper()
	st := mockapi.NewStore()
	mockapi.Seed(st, now)
	cfg.Store = st
	cfg.Logger = logging.Discard()
	cfg.Now = func() time.Time { return now }

	srv := httptest.NewServer(mockapi.NewRouter(cfg))
	t.Cleanup(srv.Close)

	exec, err := apiclient.New(apiclient.Config{
		BaseURL:  srv.URL,
		BasePath: func() string { return "/api/v1" },
		Tokens:   tokens,
		Logger:   logging.Discard(),
	})
	require.NoError(t, err)
	return stack{srv: srv, exec: exec}
}

func TestClientsCRUD(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, mockapi.Config{}, nil)
	svc := clients.NewService(s.deps())

	page, err := svc.List(ctx, clients.Query{}, 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	require.NotNil(t, page.Pagination)
	assert.Equal(t, 4, page.Pagination.Total)
	assert.True(t, page.Pagination.HasNext)

	created, err := svc.Create(ctx, clients.Input{FirstName: "Eve", LastName: "Moss", Email: "eve@example.test"})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, clients.StatusActive, created.Status)

	found, err := svc.Search(ctx, "moss", 1, 20)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, created.ID, found.Items[0].ID)

	updated, err := svc.Update(ctx, created.ID, clients.Input{Notes: "prefers mornings"})
	require.NoError(t, err)
	assert.Equal(t, "prefers mornings", updated.Notes)
	assert.Equal(t, "Eve", updated.FirstName)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apiclient.StatusCode(err))
	assert.Equal(t, "[ClientService.get] client "+created.ID+" not found", err.Error())
}

func TestClientsFiltersAndSubresources(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, mockapi.Config{}, nil)
	svc := clients.NewService(s.deps())

	inactive, err := svc.List(ctx, clients.Query{Status: clients.StatusInactive}, 1, 20)
	require.NoError(t, err)
	require.Len(t, inactive.Items, 1)
	assert.Equal(t, "client-4", inactive.Items[0].ID)

	vip, err := svc.List(ctx, clients.Query{Tag: "vip"}, 1, 20)
	require.NoError(t, err)
	require.Len(t, vip.Items, 1)
	assert.Equal(t, "Ana", vip.Items[0].FirstName)

	byClinic, err := svc.ListByClinic(ctx, "clinic-1", 1, 20)
	require.NoError(t, err)
	assert.Len(t, byClinic.Items, 4)

	insurance, err := svc.Insurance(ctx, "client-1")
	require.NoError(t, err)
	require.Len(t, insurance, 1)
	assert.Equal(t, "Harbor Health", insurance[0].Provider)

	none, err := svc.Insurance(ctx, "client-2")
	require.NoError(t, err)
	assert.Empty(t, none)

	billing, err := svc.BillingHistory(ctx, "client-1", 1, 20)
	require.NoError(t, err)
	require.Len(t, billing.Items, 1)
	assert.Equal(t, int64(68400), billing.Items[0].AmountCents)
	assert.Equal(t, "order-1", billing.Items[0].OrderID)
}

func TestAppointmentsScheduling(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, mockapi.Config{}, nil)
	svc := appointments.NewService(s.deps())

	tomorrow := now.AddDate(0, 0, 1)
	slots, err := svc.AvailableSlots(ctx, appointments.SlotQuery{
		Date:       tomorrow,
		ProviderID: "user-2",
		Duration:   time.Hour,
	})
	require.NoError(t, err)
	// Thursday 09:00-20:00 in hourly slots, minus the 09:00 booking.
	require.Len(t, slots, 10)
	assert.Equal(t, time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC), slots[0].Start.UTC())

	byDate, err := svc.ListByDate(ctx, tomorrow, 1, 20)
	require.NoError(t, err)
	require.Len(t, byDate.Items, 1)
	assert.Equal(t, "appt-4", byDate.Items[0].ID)

	start := time.Date(2026, 3, 12, 9, 30, 0, 0, time.UTC)
	_, err = svc.Create(ctx, appointments.Input{ClientID: "client-3", ProviderID: "user-2", Service: "Botox", StartTime: &start})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apiclient.StatusCode(err))

	cancelled, err := svc.Cancel(ctx, "appt-5", "client request")
	require.NoError(t, err)
	assert.Equal(t, appointments.StatusCancelled, cancelled.Status)
	assert.Equal(t, "client request", cancelled.CancellationReason)

	_, err = svc.Cancel(ctx, "appt-5", "again")
	assert.Equal(t, http.StatusConflict, apiclient.StatusCode(err))
}

func TestResourceAvailability(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, mockapi.Config{}, nil)
	svc := resources.NewService(s.deps())

	from := time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC)
	windows, err := svc.Availability(ctx, "resource-2", from, from.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, windows, 3)
	assert.True(t, windows[0].Available)
	assert.False(t, windows[1].Available)
	assert.Equal(t, "appt-4", windows[1].AppointmentID)
	assert.True(t, windows[2].Available)
}

func TestPaymentRefunds(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, mockapi.Config{}, nil)
	svc := payments.NewService(s.deps())

	p, err := svc.Refund(ctx, "payment-1", payments.RefundRequest{AmountCents: 30000, Reason: "partial"})
	require.NoError(t, err)
	assert.Equal(t, payments.StatusPartiallyRefunded, p.Status)
	assert.Equal(t, int64(30000), p.RefundedCents)

	_, err = svc.Refund(ctx, "payment-1", payments.RefundRequest{AmountCents: 50000})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apiclient.StatusCode(err))
	assert.Contains(t, err.Error(), "refund must be between 1 and 38400 cents")

	byOrder, err := svc.ListByOrder(ctx, "order-1")
	require.NoError(t, err)
	require.Len(t, byOrder, 1)
	assert.Equal(t, int64(30000), byOrder[0].RefundedCents)
}

func TestRefundIdempotencyKeyReplays(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, mockapi.Config{}, nil)

	req := apiclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/payments/payment-2/refund",
		Body:     payments.RefundRequest{AmountCents: 1000},
		Headers:  map[string]string{"Idempotency-Key": "refund-payment-2-fixed"},
	}
	_, err := s.exec.Do(ctx, req)
	require.NoError(t, err)
	env, err := s.exec.Do(ctx, req)
	require.NoError(t, err)

	var p payments.Payment
	require.NoError(t, apiclient.Decode(env, &p))
	assert.Equal(t, int64(1000), p.RefundedCents, "replayed key must not refund twice")
}

// dropFirstResponse performs every request but loses the first response,
// as a client timing out after the server committed would.
type dropFirstResponse struct {
	mu      sync.Mutex
	dropped bool
}

func (d *dropFirstResponse) RoundTrip(r *http.Request) (*http.Response, error) {
	resp, err := http.DefaultTransport.RoundTrip(r)
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.dropped {
		d.dropped = true
		resp.Body.Close()
		return nil, errors.New("connection reset by peer")
	}
	return resp, nil
}

func TestRefundRetryAfterLostResponseRefundsOnce(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, mockapi.Config{}, nil)
	exec, err := apiclient.New(apiclient.Config{
		BaseURL:    s.srv.URL,
		BasePath:   func() string { return "/api/v1" },
		HTTPClient: &http.Client{Transport: &dropFirstResponse{}},
		Logger:     logging.Discard(),
	})
	require.NoError(t, err)
	svc := payments.NewService(resource.Deps{Requester: exec, Cache: cache.NewMemory(), Logger: logging.Discard()})

	req := payments.NewRefund(1000, "double charge")
	_, err = svc.Refund(ctx, "payment-2", req)
	require.Error(t, err)

	p, err := svc.Refund(ctx, "payment-2", req)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), p.RefundedCents)

	fresh, err := svc.Get(ctx, "payment-2")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), fresh.RefundedCents, "retry must replay, not refund again")
}

func TestRefundConcurrentSameKeyRefundsOnce(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, mockapi.Config{}, nil)
	svc := payments.NewService(s.deps())

	req := payments.NewRefund(500, "")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Refund(ctx, "payment-2", req)
		}()
	}
	wg.Wait()

	p, err := svc.Get(ctx, "payment-2")
	require.NoError(t, err)
	assert.Equal(t, int64(500), p.RefundedCents)
}

func TestRefundKeyIsScopedToPayment(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, mockapi.Config{}, nil)
	svc := payments.NewService(s.deps())

	req := payments.NewRefund(700, "")
	_, err := svc.Refund(ctx, "payment-2", req)
	require.NoError(t, err)

	other, err := svc.Refund(ctx, "payment-1", req)
	require.NoError(t, err)
	assert.Equal(t, "payment-1", other.ID)
	assert.Equal(t, int64(700), other.RefundedCents)
}

func TestProductsStock(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, mockapi.Config{}, nil)
	svc := products.NewService(s.deps())

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "product-2", low[0].ID)

	_, err = svc.AdjustStock(ctx, "product-2", products.StockAdjustment{Delta: -5})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, apiclient.StatusCode(err))

	p, err := svc.AdjustStock(ctx, "product-2", products.StockAdjustment{Delta: 20, Reason: "delivery"})
	require.NoError(t, err)
	assert.Equal(t, 24, p.StockQuantity)

	low, err = svc.LowStock(ctx)
	require.NoError(t, err)
	assert.Empty(t, low)
}

func TestNotificationsReadFlow(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, mockapi.Config{}, nil)
	svc := notifications.NewService(s.deps())

	count, err := svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	n, err := svc.MarkRead(ctx, "notification-1")
	require.NoError(t, err)
	assert.True(t, n.Read)

	count, err = svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, svc.MarkAllRead(ctx))
	count, err = svc.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReportsFromSeed(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, mockapi.Config{}, nil)
	svc := reports.NewService(s.deps())

	rng, err := reports.RangeFor(reports.PresetLast30, now, time.UTC)
	require.NoError(t, err)

	rep, err := svc.Generate(ctx, reports.KindRevenue, rng)
	require.NoError(t, err)
	revenue, ok := rep.(*reports.RevenueReport)
	require.True(t, ok)
	assert.Equal(t, int64(77300), revenue.GrossCents)
	assert.Equal(t, 2, revenue.OrderCount)
	require.NotEmpty(t, revenue.ByMethod)
	assert.Equal(t, "card", revenue.ByMethod[0].Method)

	dash, err := svc.Dashboard(ctx, rng)
	require.NoError(t, err)
	// The two upcoming appointments fall after the range.
	assert.Equal(t, 3, dash.Appointments.Total)
	assert.Equal(t, 2, dash.Appointments.Completed)
	assert.Equal(t, 1, dash.Appointments.NoShows)
	assert.Equal(t, 4, dash.Clients.TotalClients)
	assert.Equal(t, 1, dash.Clients.NewClients)
	assert.Equal(t, 1, dash.Products.LowStockCount)
	require.NotEmpty(t, dash.Products.TopProducts)
	assert.Equal(t, "product-3", dash.Products.TopProducts[0].ProductID)
}

func TestUsersMe(t *testing.T) {
	ctx := context.Background()

	t.Run("auth disabled resolves the admin", func(t *testing.T) {
		s := newStack(t, mockapi.Config{}, nil)
		me, err := users.NewService(s.deps()).Me(ctx)
		require.NoError(t, err)
		assert.Equal(t, users.RoleAdmin, me.Role)
	})

	t.Run("bearer subject selects the user", func(t *testing.T) {
		token, err := httpmiddleware.SignToken("dev-secret", "user-3", time.Hour)
		require.NoError(t, err)
		s := newStack(t, mockapi.Config{JWTSecret: "dev-secret"}, auth.NewMemoryStore(token))
		me, err := users.NewService(s.deps()).Me(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Lee", me.FirstName)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		s := newStack(t, mockapi.Config{JWTSecret: "dev-secret"}, auth.NewMemoryStore(""))
		_, err := users.NewService(s.deps()).Me(ctx)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, apiclient.StatusCode(err))
		assert.Contains(t, err.Error(), "missing authorization header")
	})
}

func TestClinicSingleton(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, mockapi.Config{}, nil)
	svc := clinic.NewService(s.deps())

	c, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Body Bliss Aesthetics", c.Name)
	require.NotNil(t, c.BusinessHours.Saturday)

	open, err := svc.OpenAt(ctx, now)
	require.NoError(t, err)
	assert.True(t, open)

	settings, err := svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "USD", settings.Currency)
	assert.Equal(t, []int{48, 2}, settings.Notifications.ReminderHours)
}

func TestUnknownRouteAnswersEnvelope(t *testing.T) {
	s := newStack(t, mockapi.Config{}, nil)

	_, err := s.exec.Do(context.Background(), apiclient.Request{Endpoint: "/widgets"})
	require.Error(t, err)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "unknown resource: widgets", apiErr.Message)

	_, err = s.exec.Do(context.Background(), apiclient.Request{Method: http.MethodPost, Endpoint: "/clients", Body: map[string]string{"firstName": "Solo"}})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "lastName", apiErr.Details["field"])
}

func TestHealthzAndCORS(t *testing.T) {
	s := newStack(t, mockapi.Config{CORSOrigins: []string{"*"}}, nil)

	req, err := http.NewRequest(http.MethodGet, s.srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	var env apiclient.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.True(t, env.Success)
	assert.NoError(t, env.Validate())
}

func TestLatencyTriggersClientTimeout(t *testing.T) {
	s := newStack(t, mockapi.Config{Latency: 200 * time.Millisecond}, nil)

	start := time.Now()
	_, err := s.exec.Do(context.Background(), apiclient.Request{Endpoint: "/clients", Timeout: 50 * time.Millisecond})
	require.Error(t, err)
	assert.True(t, apiclient.IsTimeout(err))
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}
