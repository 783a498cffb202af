// Package payments records payments against orders and issues refunds.
package payments

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
	"github.com/wolfman30/clinicdesk/internal/resource"
)

// ErrInvalidRefund is returned for a non-positive refund amount.
var ErrInvalidRefund = errors.New("refund amount must be positive")

var Config = resource.Config{
	Name:      "PaymentService",
	Path:      "/payments",
	Namespace: "payments",
}

type Service struct {
	base *resource.Service[Payment]
}

func NewService(deps resource.Deps) *Service {
	return &Service{base: resource.New[Payment](Config, deps)}
}

func (s *Service) List(ctx context.Context, q Query, page, limit int) (resource.Page[Payment], error) {
	return s.base.List(ctx, q.Params(), page, limit)
}

func (s *Service) Get(ctx context.Context, id string) (Payment, error) {
	return s.base.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Payment, error) {
	return s.base.Create(ctx, in)
}

// ListByOrder returns every payment recorded against an order.
func (s *Service) ListByOrder(ctx context.Context, orderID string) ([]Payment, error) {
	page, err := s.base.ReadPage(ctx, "listByOrder", s.base.Endpoint("order", orderID), nil)
	return page.Items, err
}

// Refund returns req.AmountCents of a payment. req.IdempotencyKey is sent
// as the Idempotency-Key header; retrying with the same request replays the
// first outcome instead of refunding twice. An empty key gets a fresh one,
// so such a call is never deduplicated.
func (s *Service) Refund(ctx context.Context, id string, req RefundRequest) (Payment, error) {
	var out Payment
	if req.AmountCents <= 0 {
		return out, apiclient.Wrap(Config.Name, "refund", ErrInvalidRefund)
	}
	key := req.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	err := s.base.Send(ctx, "refund", apiclient.Request{
		Method:   http.MethodPost,
		Endpoint: s.base.Endpoint(id, "refund"),
		Body:     req,
		Headers:  map[string]string{"Idempotency-Key": key},
	}, &out)
	return out, err
}
