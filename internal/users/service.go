// Package users is the staff account service.
package users

import (
	"context"

	"github.com/wolfman30/clinicdesk/internal/resource"
)

const opMe = "me"

// Config never caches the signed-in user, so a token swap is seen at once.
var Config = resource.Config{
	Name:      "UserService",
	Path:      "/users",
	Namespace: "users",
	Endpoints: map[string]resource.Policy{
		opMe: {Bypass: true},
	},
}

type Service struct {
	base *resource.Service[User]
}

func NewService(deps resource.Deps) *Service {
	return &Service{base: resource.New[User](Config, deps)}
}

func (s *Service) List(ctx context.Context, q Query, page, limit int) (resource.Page[User], error) {
	return s.base.List(ctx, q.Params(), page, limit)
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.base.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (User, error) {
	return s.base.Create(ctx, in)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (User, error) {
	return s.base.Update(ctx, id, in)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.base.Delete(ctx, id)
}

// Me returns the user the current token belongs to.
func (s *Service) Me(ctx context.Context) (User, error) {
	return s.base.ReadOne(ctx, opMe, s.base.Endpoint("me"), nil)
}

// ListByRole lists users holding role.
func (s *Service) ListByRole(ctx context.Context, role Role, page, limit int) (resource.Page[User], error) {
	return s.base.ReadPage(ctx, "listByRole", s.base.Endpoint("role", string(role)), resource.PageParams(page, limit))
}
