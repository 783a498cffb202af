package notifications

import (
	"time"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
)

// Type categorizes a notification.
type Type string

const (
	TypeInfo        Type = "info"
	TypeWarning     Type = "warning"
	TypeError       Type = "error"
	TypeSuccess     Type = "success"
	TypeAppointment Type = "appointment"
	TypePayment     Type = "payment"
)

// Notification is an in-app message for the signed-in user.
type Notification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId,omitempty"`
	Type      Type       `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Read      bool       `json:"read"`
	Link      string     `json:"link,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

// Query filters a notification list.
type Query struct {
	Type Type
	Read *bool
}

func (q Query) Params() apiclient.Params {
	return apiclient.Params{
		{Key: "type", Value: string(q.Type)},
		{Key: "read", Value: q.Read},
	}
}
