package clients

import (
	"time"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
)

// Status is the lifecycle state of a client record.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusArchived Status = "archived"
)

// Address is a postal address.
type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

// Client is a patient of the clinic.
type Client struct {
	ID          string     `json:"id"`
	ClinicID    string     `json:"clinicId"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	DateOfBirth string     `json:"dateOfBirth,omitempty"` // YYYY-MM-DD
	Gender      string     `json:"gender,omitempty"`
	Address     *Address   `json:"address,omitempty"`
	Status      Status     `json:"status"`
	Tags        []string   `json:"tags,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	LastVisitAt *time.Time `json:"lastVisitAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FullName joins first and last name.
func (c Client) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// Input is the create/update payload. Empty fields are left unchanged on update.
type Input struct {
	ClinicID    string   `json:"clinicId,omitempty"`
	FirstName   string   `json:"firstName,omitempty"`
	LastName    string   `json:"lastName,omitempty"`
	Email       string   `json:"email,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	DateOfBirth string   `json:"dateOfBirth,omitempty"`
	Gender      string   `json:"gender,omitempty"`
	Address     *Address `json:"address,omitempty"`
	Status      Status   `json:"status,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// InsuranceSummary is one insurance policy on file for a client.
type InsuranceSummary struct {
	Provider      string     `json:"provider"`
	PolicyNumber  string     `json:"policyNumber"`
	GroupNumber   string     `json:"groupNumber,omitempty"`
	PlanType      string     `json:"planType,omitempty"`
	Primary       bool       `json:"primary"`
	CoveragePct   float64    `json:"coveragePercent,omitempty"`
	DeductibleMet bool       `json:"deductibleMet"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

// BillingEntry is one line of a client's billing history.
type BillingEntry struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"orderId,omitempty"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amountCents"`
	Status      string    `json:"status"`
	Date        time.Time `json:"date"`
}

// Query filters a client list. Zero fields are omitted from the request.
type Query struct {
	Search    string
	Status    Status
	ClinicID  string
	Tag       string
	SortBy    string
	SortOrder string
}

// Params flattens the query in a stable order.
func (q Query) Params() apiclient.Params {
	return apiclient.Params{
		{Key: "search", Value: q.Search},
		{Key: "status", Value: string(q.Status)},
		{Key: "clinicId", Value: q.ClinicID},
		{Key: "tag", Value: q.Tag},
		{Key: "sortBy", Value: q.SortBy},
		{Key: "sortOrder", Value: q.SortOrder},
	}
}
