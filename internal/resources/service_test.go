package resources

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinicdesk/internal/apiclient/apiclienttest"
	"github.com/wolfman30/clinicdesk/internal/cache"
	"github.com/wolfman30/clinicdesk/internal/resource"
	"github.com/wolfman30/clinicdesk/pkg/logging"
)

func TestAvailabilityBypassesCache(t *testing.T) {
	start := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	backend := apiclienttest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		apiclienttest.WriteData(w, http.StatusOK, []Window{{Start: start, End: start.Add(time.Hour), Available: true}}, nil)
	})
	mem := cache.NewMemory()
	svc := NewService(resource.Deps{Requester: backend.Executor(t), Cache: mem, Logger: logging.Discard()})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		windows, err := svc.Availability(ctx, "room-1", start, start.Add(8*time.Hour))
		require.NoError(t, err)
		require.Len(t, windows, 1)
		assert.True(t, windows[0].Available)
	}
	assert.Equal(t, 2, backend.Count(http.MethodGet))
	assert.Equal(t, 0, mem.Len())

	q, err := url.ParseQuery(backend.Last().Query)
	require.NoError(t, err)
	assert.Equal(t, "2026-04-02T09:00:00Z", q.Get("from"))
	assert.Equal(t, "/api/v1/resources/room-1/availability", backend.Last().Path)
}

func TestAvailabilityRejectsEmptyRange(t *testing.T) {
	backend := apiclienttest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	svc := NewService(resource.Deps{Requester: backend.Executor(t), Logger: logging.Discard()})
	now := time.Now()

	_, err := svc.Availability(context.Background(), "room-1", now, now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[ResourceService.availability]")
	assert.Empty(t, backend.Calls())
}

func TestListIsCached(t *testing.T) {
	backend := apiclienttest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		apiclienttest.WriteData(w, http.StatusOK, []Resource{{ID: "room-1", Type: TypeRoom, Status: StatusAvailable}}, nil)
	})
	svc := NewService(resource.Deps{Requester: backend.Executor(t), Logger: logging.Discard()})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		page, err := svc.List(ctx, Query{Type: TypeRoom}, 1, 20)
		require.NoError(t, err)
		assert.True(t, page.Items[0].Bookable())
	}
	assert.Equal(t, 1, backend.Count(http.MethodGet))
}
