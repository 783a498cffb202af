package events

import (
	"time"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
)

// Type categorizes a calendar event.
type Type string

const (
	TypeMeeting   Type = "meeting"
	TypeTraining  Type = "training"
	TypeHoliday   Type = "holiday"
	TypePromotion Type = "promotion"
	TypeOther     Type = "other"
)

// Event is an entry on the clinic calendar that is not an appointment:
// staff meetings, closures, promotions.
type Event struct {
	ID          string    `json:"id"`
	ClinicID    string    `json:"clinicId,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Type        Type      `json:"type"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	AllDay      bool      `json:"allDay"`
	Location    string    `json:"location,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Within reports whether the event intersects [from, to).
func (e Event) Within(from, to time.Time) bool {
	return e.StartTime.Before(to) && e.EndTime.After(from)
}

// Input is the create/update payload.
type Input struct {
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Type        Type       `json:"type,omitempty"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	EndTime     *time.Time `json:"endTime,omitempty"`
	AllDay      bool       `json:"allDay,omitempty"`
	Location    string     `json:"location,omitempty"`
}

// Query filters an event list.
type Query struct {
	Type Type
	From time.Time
	To   time.Time
}

func (q Query) Params() apiclient.Params {
	return apiclient.Params{
		{Key: "type", Value: string(q.Type)},
		{Key: "from", Value: q.From},
		{Key: "to", Value: q.To},
	}
}
