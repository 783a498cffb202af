package appointments

import (
	"time"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCheckedIn Status = "checked_in"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// Active reports whether the appointment still occupies its slot.
func (s Status) Active() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCheckedIn:
		return true
	}
	return false
}

// Appointment is a booked visit.
type Appointment struct {
	ID                 string    `json:"id"`
	ClientID           string    `json:"clientId"`
	ClinicID           string    `json:"clinicId,omitempty"`
	ProviderID         string    `json:"providerId,omitempty"`
	ResourceID         string    `json:"resourceId,omitempty"`
	Service            string    `json:"service"`
	StartTime          time.Time `json:"startTime"`
	EndTime            time.Time `json:"endTime"`
	Status             Status    `json:"status"`
	Notes              string    `json:"notes,omitempty"`
	CancellationReason string    `json:"cancellationReason,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Duration is EndTime - StartTime.
func (a Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

// Overlaps reports whether two appointments share any instant.
func (a Appointment) Overlaps(b Appointment) bool {
	return a.StartTime.Before(b.EndTime) && b.StartTime.Before(a.EndTime)
}

// Input is the create/update payload.
type Input struct {
	ClientID   string     `json:"clientId,omitempty"`
	ProviderID string     `json:"providerId,omitempty"`
	ResourceID string     `json:"resourceId,omitempty"`
	Service    string     `json:"service,omitempty"`
	StartTime  *time.Time `json:"startTime,omitempty"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	Status     Status     `json:"status,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// Slot is a bookable interval returned by the slot finder.
type Slot struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	ProviderID string    `json:"providerId,omitempty"`
	ResourceID string    `json:"resourceId,omitempty"`
}

// Query filters an appointment list.
type Query struct {
	ClientID   string
	ProviderID string
	Status     Status
	From       time.Time
	To         time.Time
}

func (q Query) Params() apiclient.Params {
	return apiclient.Params{
		{Key: "clientId", Value: q.ClientID},
		{Key: "providerId", Value: q.ProviderID},
		{Key: "status", Value: string(q.Status)},
		{Key: "from", Value: q.From},
		{Key: "to", Value: q.To},
	}
}

// SlotQuery selects the day and service to find free slots for.
type SlotQuery struct {
	Date       time.Time
	Service    string
	ProviderID string
	Duration   time.Duration
}

func (q SlotQuery) Params() apiclient.Params {
	var minutes any
	if q.Duration > 0 {
		minutes = int(q.Duration / time.Minute)
	}
	return apiclient.Params{
		{Key: "date", Value: apiclient.Date(q.Date)},
		{Key: "service", Value: q.Service},
		{Key: "providerId", Value: q.ProviderID},
		{Key: "duration", Value: minutes},
	}
}
