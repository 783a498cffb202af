package resources

import (
	"time"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
)

// Type distinguishes bookable rooms from equipment.
type Type string

const (
	TypeRoom      Type = "room"
	TypeEquipment Type = "equipment"
)

// Status is the operational state of a resource.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusInUse       Status = "in_use"
	StatusMaintenance Status = "maintenance"
	StatusRetired     Status = "retired"
)

// Resource is a treatment room or piece of equipment that appointments reserve.
type Resource struct {
	ID          string    `json:"id"`
	ClinicID    string    `json:"clinicId,omitempty"`
	Name        string    `json:"name"`
	Type        Type      `json:"type"`
	Status      Status    `json:"status"`
	Capacity    int       `json:"capacity,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Bookable reports whether the resource can take new reservations.
func (r Resource) Bookable() bool {
	return r.Status == StatusAvailable || r.Status == StatusInUse
}

// Input is the create/update payload.
type Input struct {
	Name        string `json:"name,omitempty"`
	Type        Type   `json:"type,omitempty"`
	Status      Status `json:"status,omitempty"`
	Capacity    int    `json:"capacity,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// Window is a reserved or free interval on a resource's calendar.
type Window struct {
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Available     bool      `json:"available"`
	AppointmentID string    `json:"appointmentId,omitempty"`
}

// Query filters a resource list.
type Query struct {
	Type     Type
	Status   Status
	ClinicID string
}

func (q Query) Params() apiclient.Params {
	return apiclient.Params{
		{Key: "type", Value: string(q.Type)},
		{Key: "status", Value: string(q.Status)},
		{Key: "clinicId", Value: q.ClinicID},
	}
}
