// Package resources manages treatment rooms and equipment.
package resources

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
	"github.com/wolfman30/clinicdesk/internal/resource"
)

const opAvailability = "availability"

// Config caches everything except availability, which changes with every
// booking made elsewhere.
var Config = resource.Config{
	Name:      "ResourceService",
	Path:      "/resources",
	Namespace: "resources",
	Endpoints: map[string]resource.Policy{
		opAvailability: {Bypass: true},
	},
}

type Service struct {
	base *resource.Service[Resource]
}

func NewService(deps resource.Deps) *Service {
	return &Service{base: resource.New[Resource](Config, deps)}
}

func (s *Service) List(ctx context.Context, q Query, page, limit int) (resource.Page[Resource], error) {
	return s.base.List(ctx, q.Params(), page, limit)
}

func (s *Service) Get(ctx context.Context, id string) (Resource, error) {
	return s.base.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Resource, error) {
	return s.base.Create(ctx, in)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Resource, error) {
	return s.base.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.base.Delete(ctx, id)
}

// Availability returns the resource's calendar between from and to. It is
// always read from the network.
func (s *Service) Availability(ctx context.Context, id string, from, to time.Time) ([]Window, error) {
	if !to.After(from) {
		return nil, apiclient.Wrap(Config.Name, opAvailability, fmt.Errorf("invalid range %s..%s", from.Format(time.RFC3339), to.Format(time.RFC3339)))
	}
	var out []Window
	err := s.base.ReadInto(ctx, opAvailability, s.base.Endpoint(id, "availability"), apiclient.Params{
		{Key: "from", Value: from},
		{Key: "to", Value: to},
	}, &out)
	return out, err
}
