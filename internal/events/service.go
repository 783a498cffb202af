// Package events is the clinic calendar service.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
	"github.com/wolfman30/clinicdesk/internal/resource"
)

var Config = resource.Config{
	Name:      "EventService",
	Path:      "/events",
	Namespace: "events",
}

type Service struct {
	base *resource.Service[Event]
}

func NewService(deps resource.Deps) *Service {
	return &Service{base: resource.New[Event](Config, deps)}
}

func (s *Service) List(ctx context.Context, q Query, page, limit int) (resource.Page[Event], error) {
	return s.base.List(ctx, q.Params(), page, limit)
}

func (s *Service) Get(ctx context.Context, id string) (Event, error) {
	return s.base.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Event, error) {
	return s.base.Create(ctx, in)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Event, error) {
	return s.base.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.base.Delete(ctx, id)
}

// ListInRange returns every event intersecting [from, to).
func (s *Service) ListInRange(ctx context.Context, from, to time.Time) ([]Event, error) {
	if to.Before(from) {
		return nil, apiclient.Wrap(Config.Name, "listInRange", fmt.Errorf("range end %s before start %s", to.Format(time.RFC3339), from.Format(time.RFC3339)))
	}
	page, err := s.base.ReadPage(ctx, "listInRange", s.base.Endpoint("range"), apiclient.Params{
		{Key: "start", Value: from},
		{Key: "end", Value: to},
	})
	return page.Items, err
}
