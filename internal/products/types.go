package products

import (
	"time"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
)

// Product is a retail or treatment item the clinic stocks.
type Product struct {
	ID            string    `json:"id"`
	ClinicID      string    `json:"clinicId,omitempty"`
	SKU           string    `json:"sku"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category,omitempty"`
	PriceCents    int64     `json:"priceCents"`
	CostCents     int64     `json:"costCents,omitempty"`
	StockQuantity int       `json:"stockQuantity"`
	ReorderLevel  int       `json:"reorderLevel"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// IsLowStock reports whether stock has reached the reorder level.
func (p Product) IsLowStock() bool {
	return p.StockQuantity <= p.ReorderLevel
}

// MarginCents is price minus cost.
func (p Product) MarginCents() int64 {
	return p.PriceCents - p.CostCents
}

// Input is the create/update payload.
type Input struct {
	SKU          string `json:"sku,omitempty"`
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
	Category     string `json:"category,omitempty"`
	PriceCents   int64  `json:"priceCents,omitempty"`
	CostCents    int64  `json:"costCents,omitempty"`
	ReorderLevel int    `json:"reorderLevel,omitempty"`
	Active       *bool  `json:"active,omitempty"`
}

// StockAdjustment changes the on-hand quantity by Delta.
type StockAdjustment struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason,omitempty"`
}

// Query filters a product list.
type Query struct {
	Category string
	Active   *bool
	SortBy   string
}

func (q Query) Params() apiclient.Params {
	return apiclient.Params{
		{Key: "category", Value: q.Category},
		{Key: "active", Value: q.Active},
		{Key: "sortBy", Value: q.SortBy},
	}
}
