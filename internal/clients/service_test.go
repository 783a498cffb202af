package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
	"github.com/wolfman30/clinicdesk/internal/apiclient/apiclienttest"
	"github.com/wolfman30/clinicdesk/internal/cache"
	"github.com/wolfman30/clinicdesk/internal/resource"
	"github.com/wolfman30/clinicdesk/pkg/logging"
)

func newTestService(t *testing.T, handler http.HandlerFunc) (*Service, *apiclienttest.Backend) {
	t.Helper()
	backend := apiclienttest.NewBackend(t, handler)
	svc := NewService(resource.Deps{
		Requester: backend.Executor(t),
		Cache:     cache.NewMemory(),
		Metrics:   backend.Metrics,
		Logger:    logging.Discard(),
	})
	return svc, backend
}

func clinicHandler(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/v1/clients/clinic/"):
		p := apiclient.NewPagination(1, 20, 1)
		apiclienttest.WriteData(w, http.StatusOK, []Client{{ID: "c1", ClinicID: "bodybliss", FirstName: "Ana", LastName: "Reyes", Status: StatusActive}}, &p)
	case r.Method == http.MethodPut:
		var in Input
		_ = json.NewDecoder(r.Body).Decode(&in)
		apiclienttest.WriteData(w, http.StatusOK, Client{ID: "c1", ClinicID: "bodybliss", FirstName: in.FirstName, LastName: "Reyes"}, nil)
	default:
		apiclienttest.WriteError(w, http.StatusNotFound, "NOT_FOUND", "no route")
	}
}

func TestListByClinic_UpdateInvalidates(t *testing.T) {
	ctx := context.Background()
	svc, backend := newTestService(t, clinicHandler)

	first, err := svc.ListByClinic(ctx, "bodybliss", 1, 20)
	require.NoError(t, err)
	require.Len(t, first.Items, 1)
	assert.Equal(t, "/api/v1/clients/clinic/bodybliss", backend.Last().Path)
	assert.Equal(t, "page=1&limit=20", backend.Last().Query)

	updated, err := svc.Update(ctx, "c1", Input{FirstName: "Anna"})
	require.NoError(t, err)
	assert.Equal(t, "Anna", updated.FirstName)

	_, err = svc.ListByClinic(ctx, "bodybliss", 1, 20)
	require.NoError(t, err)

	assert.Equal(t, 2, backend.Count(http.MethodGet), "initial list plus post-mutation re-list")
	assert.Equal(t, 1, backend.Count(http.MethodPut))
}

func TestListByClinic_CachedWithoutMutation(t *testing.T) {
	ctx := context.Background()
	svc, backend := newTestService(t, clinicHandler)

	for i := 0; i < 2; i++ {
		_, err := svc.ListByClinic(ctx, "bodybliss", 1, 20)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, backend.Count(http.MethodGet))
}

func TestList_QueryParams(t *testing.T) {
	ctx := context.Background()
	svc, backend := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		apiclienttest.WriteData(w, http.StatusOK, []Client{}, nil)
	})

	page, err := svc.List(ctx, Query{Status: StatusActive, Search: ""}, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, "page=2&limit=10&status=active", backend.Last().Query)
}

func TestInsuranceAndBilling(t *testing.T) {
	ctx := context.Background()
	svc, backend := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/insurance"):
			apiclienttest.WriteData(w, http.StatusOK, []InsuranceSummary{{Provider: "Aetna", PolicyNumber: "P-1", Primary: true}}, nil)
		case strings.HasSuffix(r.URL.Path, "/billing"):
			p := apiclient.NewPagination(1, 10, 1)
			apiclienttest.WriteData(w, http.StatusOK, []BillingEntry{{ID: "b1", AmountCents: 12500, Status: "paid"}}, &p)
		}
	})

	ins, err := svc.Insurance(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, ins, 1)
	assert.Equal(t, "Aetna", ins[0].Provider)
	assert.Equal(t, "/api/v1/clients/c1/insurance", backend.Last().Path)

	bills, err := svc.BillingHistory(ctx, "c1", 1, 10)
	require.NoError(t, err)
	require.Len(t, bills.Items, 1)
	assert.Equal(t, int64(12500), bills.Items[0].AmountCents)
	assert.True(t, bills.Pagination != nil && !bills.Pagination.HasNext)
}

func TestErrorsCarryServicePrefix(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		apiclienttest.WriteError(w, http.StatusInternalServerError, "DB_DOWN", "database unavailable")
	})

	_, err := svc.Search(context.Background(), "ana", 1, 20)
	require.Error(t, err)
	assert.Equal(t, "[ClientService.search] database unavailable", err.Error())
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "Ana Reyes", Client{FirstName: "Ana", LastName: "Reyes"}.FullName())
	assert.Equal(t, "Reyes", Client{LastName: "Reyes"}.FullName())
	assert.Equal(t, "Ana", Client{FirstName: "Ana"}.FullName())
}
