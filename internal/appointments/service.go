// Package appointments is the scheduling service.
package appointments

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
	"github.com/wolfman30/clinicdesk/internal/resource"
)

const (
	opListByClient   = "listByClient"
	opListByDate     = "listByDate"
	opAvailableSlots = "availableSlots"
)

var errDateRequired = errors.New("date is required")

// Config declares the per-endpoint cache policy. A client's own schedule is
// always read live; free slots go stale quickly.
var Config = resource.Config{
	Name:      "AppointmentService",
	Path:      "/appointments",
	Namespace: "appointments",
	Endpoints: map[string]resource.Policy{
		opListByClient:   {Bypass: true},
		opAvailableSlots: {TTL: time.Minute},
	},
}

type Service struct {
	base *resource.Service[Appointment]
}

func NewService(deps resource.Deps) *Service {
	return &Service{base: resource.New[Appointment](Config, deps)}
}

func (s *Service) List(ctx context.Context, q Query, page, limit int) (resource.Page[Appointment], error) {
	return s.base.List(ctx, q.Params(), page, limit)
}

func (s *Service) Get(ctx context.Context, id string) (Appointment, error) {
	return s.base.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (Appointment, error) {
	return s.base.Create(ctx, in)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (Appointment, error) {
	return s.base.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.base.Delete(ctx, id)
}

// ListByClient returns a client's appointments, bypassing the cache.
func (s *Service) ListByClient(ctx context.Context, clientID string, page, limit int) (resource.Page[Appointment], error) {
	return s.base.ReadPage(ctx, opListByClient, s.base.Endpoint("client", clientID), resource.PageParams(page, limit))
}

// ListByDate returns the day sheet for date.
func (s *Service) ListByDate(ctx context.Context, date time.Time, page, limit int) (resource.Page[Appointment], error) {
	if date.IsZero() {
		return resource.Page[Appointment]{}, apiclient.Wrap(Config.Name, opListByDate, errDateRequired)
	}
	return s.base.ReadPage(ctx, opListByDate, s.base.Endpoint("date", apiclient.Date(date)), resource.PageParams(page, limit))
}

// Cancel cancels an appointment with an optional reason.
func (s *Service) Cancel(ctx context.Context, id, reason string) (Appointment, error) {
	var out Appointment
	err := s.base.Write(ctx, "cancel", http.MethodPut, s.base.Endpoint(id, "cancel"),
		map[string]string{"reason": reason}, &out)
	return out, err
}

// AvailableSlots lists free slots for a service on a day.
func (s *Service) AvailableSlots(ctx context.Context, q SlotQuery) ([]Slot, error) {
	if q.Date.IsZero() {
		return nil, apiclient.Wrap(Config.Name, opAvailableSlots, errDateRequired)
	}
	var out []Slot
	err := s.base.ReadInto(ctx, opAvailableSlots, s.base.Endpoint("slots"), q.Params(), &out)
	return out, err
}
