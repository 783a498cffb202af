package clinic

import (
	"context"
	"net/http"
	"time"

	"github.com/wolfman30/clinicdesk/internal/resource"
)

const (
	opGet      = "get"
	opSettings = "settings"
)

// Config describes the singleton /clinic resource. The profile changes
// rarely, so it is cached for an hour.
var Config = resource.Config{
	Name:      "ClinicService",
	Path:      "/clinic",
	Namespace: "clinic",
	TTL:       time.Hour,
}

// Service reads and updates the clinic profile of the signed-in account.
type Service struct {
	base *resource.Service[Clinic]
}

func NewService(deps resource.Deps) *Service {
	return &Service{base: resource.New[Clinic](Config, deps)}
}

// Get returns the clinic profile.
func (s *Service) Get(ctx context.Context) (Clinic, error) {
	return s.base.ReadOne(ctx, opGet, s.base.Path(), nil)
}

// Update changes the profile and returns the stored version.
func (s *Service) Update(ctx context.Context, in Input) (Clinic, error) {
	var out Clinic
	err := s.base.Write(ctx, "update", http.MethodPut, s.base.Path(), in, &out)
	return out, err
}

// Settings returns the operational settings.
func (s *Service) Settings(ctx context.Context) (Settings, error) {
	var out Settings
	err := s.base.ReadInto(ctx, opSettings, s.base.Endpoint("settings"), nil, &out)
	return out, err
}

// UpdateSettings replaces the operational settings.
func (s *Service) UpdateSettings(ctx context.Context, in Settings) (Settings, error) {
	var out Settings
	err := s.base.Write(ctx, "updateSettings", http.MethodPut, s.base.Endpoint("settings"), in, &out)
	return out, err
}

// OpenAt fetches the profile and reports whether the clinic is open at t.
func (s *Service) OpenAt(ctx context.Context, t time.Time) (bool, error) {
	c, err := s.Get(ctx)
	if err != nil {
		return false, err
	}
	return c.IsOpenAt(t), nil
}
