// Package notifications is the in-app notification inbox.
package notifications

import (
	"context"
	"net/http"
	"time"

	"github.com/wolfman30/clinicdesk/internal/resource"
)

const opUnreadCount = "unreadCount"

// Config keeps the inbox fresh: lists live for 30s and the badge count is
// always read live.
var Config = resource.Config{
	Name:      "NotificationService",
	Path:      "/notifications",
	Namespace: "notifications",
	TTL:       30 * time.Second,
	Endpoints: map[string]resource.Policy{
		opUnreadCount: {Bypass: true},
	},
}

type Service struct {
	base *resource.Service[Notification]
}

func NewService(deps resource.Deps) *Service {
	return &Service{base: resource.New[Notification](Config, deps)}
}

func (s *Service) List(ctx context.Context, q Query, page, limit int) (resource.Page[Notification], error) {
	return s.base.List(ctx, q.Params(), page, limit)
}

func (s *Service) Get(ctx context.Context, id string) (Notification, error) {
	return s.base.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.base.Delete(ctx, id)
}

// ListUnread pages through unread notifications.
func (s *Service) ListUnread(ctx context.Context, page, limit int) (resource.Page[Notification], error) {
	return s.base.ReadPage(ctx, "listUnread", s.base.Endpoint("unread"), resource.PageParams(page, limit))
}

// UnreadCount returns the badge count.
func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	err := s.base.ReadInto(ctx, opUnreadCount, s.base.Endpoint("unread", "count"), nil, &out)
	return out.Count, err
}

// MarkRead marks one notification read.
func (s *Service) MarkRead(ctx context.Context, id string) (Notification, error) {
	var out Notification
	err := s.base.Write(ctx, "markRead", http.MethodPut, s.base.Endpoint(id, "read"), nil, &out)
	return out, err
}

// MarkAllRead marks the whole inbox read.
func (s *Service) MarkAllRead(ctx context.Context) error {
	return s.base.Write(ctx, "markAllRead", http.MethodPut, s.base.Endpoint("read-all"), nil, nil)
}
