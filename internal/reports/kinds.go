package reports

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Kind is the report discriminator sent by the backend as "type".
type Kind string

const (
	KindRevenue      Kind = "revenue"
	KindAppointments Kind = "appointments"
	KindClients      Kind = "clients"
	KindProducts     Kind = "products"
)

// Kinds lists every report kind.
var Kinds = []Kind{KindRevenue, KindAppointments, KindClients, KindProducts}

// ErrUnknownKind is returned when decoding a report with an unrecognized type.
var ErrUnknownKind = errors.New("unknown report kind")

// ParseKind validates a user-supplied kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Report is implemented only by the four report types in this package.
type Report interface {
	Kind() Kind
	Period() DateRange
	isReport()
}

type header struct {
	Type  Kind      `json:"type"`
	Range DateRange `json:"range"`
}

func (h header) Kind() Kind        { return h.Type }
func (h header) Period() DateRange { return h.Range }
func (header) isReport()           {}

// RevenueReport summarizes takings.
type RevenueReport struct {
	header
	GrossCents   int64          `json:"grossCents"`
	RefundsCents int64          `json:"refundsCents"`
	NetCents     int64          `json:"netCents"`
	OrderCount   int            `json:"orderCount"`
	AverageCents int64          `json:"averageOrderCents"`
	ByDay        []RevenueDay   `json:"byDay"`
	ByMethod     []MethodAmount `json:"byMethod"`
}

type RevenueDay struct {
	Date        string `json:"date"`
	AmountCents int64  `json:"amountCents"`
	Orders      int    `json:"orders"`
}

type MethodAmount struct {
	Method      string `json:"method"`
	AmountCents int64  `json:"amountCents"`
}

// AppointmentReport summarizes scheduling outcomes.
type AppointmentReport struct {
	header
	Total      int            `json:"total"`
	Completed  int            `json:"completed"`
	Cancelled  int            `json:"cancelled"`
	NoShows    int            `json:"noShows"`
	ByService  []ServiceCount `json:"byService"`
	ByProvider []ServiceCount `json:"byProvider"`
}

// ServiceCount is a labelled count.
type ServiceCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CompletionRate is completed / total, or 0.
func (r *AppointmentReport) CompletionRate() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Completed) / float64(r.Total)
}

// ClientReport summarizes the client base.
type ClientReport struct {
	header
	TotalClients     int         `json:"totalClients"`
	NewClients       int         `json:"newClients"`
	ReturningClients int         `json:"returningClients"`
	RetentionRate    float64     `json:"retentionRate"`
	TopClients       []TopClient `json:"topClients"`
}

type TopClient struct {
	ClientID   string `json:"clientId"`
	Name       string `json:"name"`
	Visits     int    `json:"visits"`
	SpentCents int64  `json:"spentCents"`
}

// ProductReport summarizes retail sales.
type ProductReport struct {
	header
	UnitsSold     int            `json:"unitsSold"`
	RevenueCents  int64          `json:"revenueCents"`
	LowStockCount int            `json:"lowStockCount"`
	TopProducts   []ProductSales `json:"topProducts"`
}

type ProductSales struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	Units        int    `json:"units"`
	RevenueCents int64  `json:"revenueCents"`
}

// Decode reads a report, dispatching on its "type" field.
func Decode(raw []byte) (Report, error) {
	var h header
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("reports: decode header: %w", err)
	}
	var r Report
	switch h.Type {
	case KindRevenue:
		r = &RevenueReport{}
	case KindAppointments:
		r = &AppointmentReport{}
	case KindClients:
		r = &ClientReport{}
	case KindProducts:
		r = &ProductReport{}
	default:
		return nil, fmt.Errorf("reports: %w %q", ErrUnknownKind, h.Type)
	}
	if err := json.Unmarshal(raw, r); err != nil {
		return nil, fmt.Errorf("reports: decode %s: %w", h.Type, err)
	}
	return r, nil
}
