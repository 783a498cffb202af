// Package clients is the client (patient) records service.
package clients

import (
	"context"

	"github.com/wolfman30/clinicdesk/internal/resource"
)

const (
	opListByClinic   = "listByClinic"
	opInsurance      = "insurance"
	opBillingHistory = "billingHistory"
)

// Config is the resource description for /clients.
var Config = resource.Config{
	Name:      "ClientService",
	Path:      "/clients",
	Namespace: "clients",
}

// Service reads and writes client records.
type Service struct {
	base *resource.Service[Client]
}

// NewService builds the service. deps.Cache must not be shared with another service.
func NewService(deps resource.Deps) *Service {
	return &Service{base: resource.New[Client](Config, deps)}
}

func (s *Service) List(ctx context.Context, q Query, page, limit int) (resource.Page[Client], error) {
	return s.base.List(ctx, q.Params(), page, limit)
}

func (s *Service) Get(ctx context.Context, id string) (Client, error) {
	return s.base.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Client, error) {
	return s.base.Create(ctx, in)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Client, error) {
	return s.base.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.base.Delete(ctx, id)
}

// Search matches name, email and phone.
func (s *Service) Search(ctx context.Context, term string, page, limit int) (resource.Page[Client], error) {
	return s.base.Search(ctx, term, nil, page, limit)
}

// ListByClinic lists the clients registered at one clinic.
func (s *Service) ListByClinic(ctx context.Context, clinicID string, page, limit int) (resource.Page[Client], error) {
	return s.base.ReadPage(ctx, opListByClinic, s.base.Endpoint("clinic", clinicID), resource.PageParams(page, limit))
}

// Insurance returns the policies on file for a client.
func (s *Service) Insurance(ctx context.Context, clientID string) ([]InsuranceSummary, error) {
	var out []InsuranceSummary
	err := s.base.ReadInto(ctx, opInsurance, s.base.Endpoint(clientID, "insurance"), nil, &out)
	return out, err
}

// BillingHistory pages through a client's charges and payments.
func (s *Service) BillingHistory(ctx context.Context, clientID string, page, limit int) (resource.Page[BillingEntry], error) {
	return resource.ReadPageAs[BillingEntry](ctx, s.base, opBillingHistory, s.base.Endpoint(clientID, "billing"), resource.PageParams(page, limit))
}
