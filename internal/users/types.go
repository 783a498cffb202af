package users

import (
	"time"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
)

// Role is a staff member's permission level.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleProvider     Role = "provider"
	RoleStaff        Role = "staff"
	RoleReceptionist Role = "receptionist"
)

// User is a staff account.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Role        Role       `json:"role"`
	ClinicID    string     `json:"clinicId,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Input is the create/update payload.
type Input struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Role      Role   `json:"role,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Active    *bool  `json:"active,omitempty"`
}

// Query filters a user list.
type Query struct {
	Role     Role
	ClinicID string
	Active   *bool
	Search   string
}

func (q Query) Params() apiclient.Params {
	return apiclient.Params{
		{Key: "role", Value: string(q.Role)},
		{Key: "clinicId", Value: q.ClinicID},
		{Key: "active", Value: q.Active},
		{Key: "search", Value: q.Search},
	}
}
