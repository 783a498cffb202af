// Package orders is the order and billing service.
package orders

import (
	"context"
	"fmt"
	"net/http"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
	"github.com/wolfman30/clinicdesk/internal/resource"
)

var Config = resource.Config{
	Name:      "OrderService",
	Path:      "/orders",
	Namespace: "orders",
}

type Service struct {
	base *resource.Service[Order]
}

func NewService(deps resource.Deps) *Service {
	return &Service{base: resource.New[Order](Config, deps)}
}

func (s *Service) List(ctx context.Context, q Query, page, limit int) (resource.Page[Order], error) {
	return s.base.List(ctx, q.Params(), page, limit)
}

func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	return s.base.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Order, error) {
	return s.base.Create(ctx, in)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Order, error) {
	return s.base.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.base.Delete(ctx, id)
}

// ListByClient lists one client's orders, newest first.
func (s *Service) ListByClient(ctx context.Context, clientID string, page, limit int) (resource.Page[Order], error) {
	return s.base.ReadPage(ctx, "listByClient", s.base.Endpoint("client", clientID), resource.PageParams(page, limit))
}

// UpdateStatus moves an order to status.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (Order, error) {
	var out Order
	if !status.Valid() {
		return out, apiclient.Wrap(Config.Name, "updateStatus", fmt.Errorf("unknown status %q", status))
	}
	err := s.base.Write(ctx, "updateStatus", http.MethodPut, s.base.Endpoint(id, "status"),
		map[string]Status{"status": status}, &out)
	return out, err
}
