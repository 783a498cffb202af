// Package products is the product catalogue and inventory service.
package products

import (
	"context"
	"errors"
	"net/http"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
	"github.com/wolfman30/clinicdesk/internal/resource"
)

var errZeroDelta = errors.New("stock delta must be non-zero")

var Config = resource.Config{
	Name:      "ProductService",
	Path:      "/products",
	Namespace: "products",
}

type Service struct {
	base *resource.Service[Product]
}

func NewService(deps resource.Deps) *Service {
	return &Service{base: resource.New[Product](Config, deps)}
}

func (s *Service) List(ctx context.Context, q Query, page, limit int) (resource.Page[Product], error) {
	return s.base.List(ctx, q.Params(), page, limit)
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	return s.base.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Product, error) {
	return s.base.Create(ctx, in)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Product, error) {
	return s.base.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.base.Delete(ctx, id)
}

// Search matches name, SKU and category.
func (s *Service) Search(ctx context.Context, term string, q Query, page, limit int) (resource.Page[Product], error) {
	return s.base.Search(ctx, term, q.Params(), page, limit)
}

// AdjustStock applies a signed quantity change and returns the product.
func (s *Service) AdjustStock(ctx context.Context, id string, adj StockAdjustment) (Product, error) {
	var out Product
	if adj.Delta == 0 {
		return out, apiclient.Wrap(Config.Name, "adjustStock", errZeroDelta)
	}
	err := s.base.Write(ctx, "adjustStock", http.MethodPost, s.base.Endpoint(id, "stock"), adj, &out)
	return out, err
}

// LowStock lists active products at or below their reorder level.
func (s *Service) LowStock(ctx context.Context) ([]Product, error) {
	page, err := s.base.ReadPage(ctx, "lowStock", s.base.Endpoint("low-stock"), nil)
	return page.Items, err
}
