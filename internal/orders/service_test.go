package orders

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
	"github.com/wolfman30/clinicdesk/internal/apiclient/apiclienttest"
	"github.com/wolfman30/clinicdesk/internal/cache"
	"github.com/wolfman30/clinicdesk/internal/resource"
	"github.com/wolfman30/clinicdesk/pkg/logging"
)

func newTestService(t *testing.T) (*Service, *apiclienttest.Backend, *cache.Memory) {
	t.Helper()
	backend := apiclienttest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			apiclienttest.WriteData(w, http.StatusOK, []Order{{ID: "o1", ClientID: "c1", Status: StatusPending}}, nil)
		default:
			apiclienttest.WriteData(w, http.StatusOK, Order{ID: "o1", ClientID: "c1", Status: StatusCompleted}, nil)
		}
	})
	mem := cache.NewMemory()
	svc := NewService(resource.Deps{Requester: backend.Executor(t), Cache: mem, Logger: logging.Discard()})
	return svc, backend, mem
}

func TestListByClient(t *testing.T) {
	svc, backend, mem := newTestService(t)
	ctx := context.Background()

	page, err := svc.ListByClient(ctx, "c1", 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "/api/v1/orders/client/c1", backend.Last().Path)

	_, ok := mem.Get(ctx, "orders_listByClient_client/c1_page=1&limit=20")
	assert.True(t, ok)
}

func TestUpdateStatus(t *testing.T) {
	svc, backend, mem := newTestService(t)
	ctx := context.Background()

	_, err := svc.List(ctx, Query{Status: StatusPending}, 1, 20)
	require.NoError(t, err)
	require.Equal(t, 1, mem.Len())

	got, err := svc.UpdateStatus(ctx, "o1", StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, "/api/v1/orders/o1/status", backend.Last().Path)
	assert.JSONEq(t, `{"status":"completed"}`, string(backend.Last().Body))
	assert.Equal(t, 0, mem.Len())

	_, err = svc.UpdateStatus(ctx, "o1", Status("shipped"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[OrderService.updateStatus]")
}

func TestSubtotal(t *testing.T) {
	items := []OrderItem{
		{Name: "Serum", Quantity: 2, UnitPriceCents: 4500},
		{Name: "Peel", Quantity: 1, UnitPriceCents: 12000},
	}
	assert.Equal(t, int64(21000), Subtotal(items))
	assert.Zero(t, Subtotal(nil))
}

func TestQueryParamsOmitZero(t *testing.T) {
	assert.Equal(t, "status=pending", apiclient.BuildQuery(Query{Status: StatusPending}.Params()))
}
