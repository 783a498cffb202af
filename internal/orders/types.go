package orders

import (
	"time"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
)

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// OrderItem is one line of an order.
type OrderItem struct {
	ProductID      string `json:"productId,omitempty"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	TotalCents     int64  `json:"totalCents"`
}

// Order is a purchase of products or services by a client.
type Order struct {
	ID            string      `json:"id"`
	Number        string      `json:"orderNumber,omitempty"`
	ClientID      string      `json:"clientId"`
	ClinicID      string      `json:"clinicId,omitempty"`
	Items         []OrderItem `json:"items"`
	SubtotalCents int64       `json:"subtotalCents"`
	TaxCents      int64       `json:"taxCents"`
	DiscountCents int64       `json:"discountCents"`
	TotalCents    int64       `json:"totalCents"`
	Status        Status      `json:"status"`
	Notes         string      `json:"notes,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Input is the create/update payload.
type Input struct {
	ClientID      string      `json:"clientId,omitempty"`
	ClinicID      string      `json:"clinicId,omitempty"`
	Items         []OrderItem `json:"items,omitempty"`
	DiscountCents int64       `json:"discountCents,omitempty"`
	Notes         string      `json:"notes,omitempty"`
}

// Subtotal sums quantity * unit price across items.
func Subtotal(items []OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += int64(it.Quantity) * it.UnitPriceCents
	}
	return total
}

// Query filters an order list.
type Query struct {
	ClientID string
	Status   Status
	From     time.Time
	To       time.Time
	SortBy   string
}

func (q Query) Params() apiclient.Params {
	return apiclient.Params{
		{Key: "clientId", Value: q.ClientID},
		{Key: "status", Value: string(q.Status)},
		{Key: "from", Value: apiclient.Date(q.From)},
		{Key: "to", Value: apiclient.Date(q.To)},
		{Key: "sortBy", Value: q.SortBy},
	}
}
