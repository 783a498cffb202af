package payments

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinicdesk/internal/apiclient/apiclienttest"
	"github.com/wolfman30/clinicdesk/internal/cache"
	"github.com/wolfman30/clinicdesk/internal/resource"
	"github.com/wolfman30/clinicdesk/pkg/logging"
)

func TestListByOrderAndRefund(t *testing.T) {
	var idempotencyKey string
	backend := apiclienttest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			apiclienttest.WriteData(w, http.StatusOK, []Payment{{ID: "p1", OrderID: "o1", AmountCents: 5000, Status: StatusCompleted}}, nil)
		case strings.HasSuffix(r.URL.Path, "/refund"):
			idempotencyKey = r.Header.Get("Idempotency-Key")
			apiclienttest.WriteData(w, http.StatusOK, Payment{ID: "p1", AmountCents: 5000, RefundedCents: 2000, Status: StatusPartiallyRefunded}, nil)
		}
	})
	mem := cache.NewMemory()
	svc := NewService(resource.Deps{Requester: backend.Executor(t), Cache: mem, Logger: logging.Discard()})
	ctx := context.Background()

	got, err := svc.ListByOrder(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "/api/v1/payments/order/o1", backend.Last().Path)

	refunded, err := svc.Refund(ctx, "p1", RefundRequest{AmountCents: 2000, Reason: "duplicate"})
	require.NoError(t, err)
	assert.Equal(t, int64(3000), refunded.RefundableCents())
	assert.NotEmpty(t, idempotencyKey)
	assert.Equal(t, 0, mem.Len(), "refund invalidates cached payment reads")

	_, err = svc.ListByOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, 2, backend.Count(http.MethodGet))
}

func TestRefundReusesRequestKey(t *testing.T) {
	var keys []string
	backend := apiclienttest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.Header.Get("Idempotency-Key"))
		apiclienttest.WriteData(w, http.StatusOK, Payment{ID: "p1", AmountCents: 5000, RefundedCents: 1000}, nil)
	})
	svc := NewService(resource.Deps{Requester: backend.Executor(t), Logger: logging.Discard()})
	ctx := context.Background()

	req := NewRefund(1000, "overcharge")
	require.NotEmpty(t, req.IdempotencyKey)
	for i := 0; i < 2; i++ {
		_, err := svc.Refund(ctx, "p1", req)
		require.NoError(t, err)
	}
	_, err := svc.Refund(ctx, "p1", RefundRequest{AmountCents: 1000})
	require.NoError(t, err)

	require.Len(t, keys, 3)
	assert.Equal(t, req.IdempotencyKey, keys[0])
	assert.Equal(t, keys[0], keys[1], "a retried request keeps its key")
	assert.NotEmpty(t, keys[2])
	assert.NotEqual(t, keys[0], keys[2], "an empty key gets a fresh one")
	assert.NotEqual(t, NewRefund(1000, "").IdempotencyKey, NewRefund(1000, "").IdempotencyKey)
}

func TestRefundRejectsNonPositive(t *testing.T) {
	backend := apiclienttest.NewBackend(t, func(w http.ResponseWriter, r *http.Request) {})
	svc := NewService(resource.Deps{Requester: backend.Executor(t), Logger: logging.Discard()})

	_, err := svc.Refund(context.Background(), "p1", RefundRequest{AmountCents: 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRefund))
	assert.Empty(t, backend.Calls())
}

func TestRefundableCents(t *testing.T) {
	tests := []struct {
		name string
		p    Payment
		want int64
	}{
		{"completed", Payment{AmountCents: 1000, Status: StatusCompleted}, 1000},
		{"partial", Payment{AmountCents: 1000, RefundedCents: 400, Status: StatusPartiallyRefunded}, 600},
		{"refunded", Payment{AmountCents: 1000, RefundedCents: 1000, Status: StatusRefunded}, 0},
		{"pending", Payment{AmountCents: 1000, Status: StatusPending}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.RefundableCents())
		})
	}
}
