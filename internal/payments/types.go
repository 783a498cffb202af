package payments

import (
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/clinicdesk/internal/apiclient"
)

// Method is how a payment was tendered.
type Method string

const (
	MethodCard      Method = "card"
	MethodCash      Method = "cash"
	MethodInsurance Method = "insurance"
	MethodTransfer  Method = "transfer"
)

// Status is the settlement state of a payment.
type Status string

const (
	StatusPending           Status = "pending"
	StatusCompleted         Status = "completed"
	StatusFailed            Status = "failed"
	StatusRefunded          Status = "refunded"
	StatusPartiallyRefunded Status = "partially_refunded"
)

// Payment is money received against an order.
type Payment struct {
	ID            string     `json:"id"`
	OrderID       string     `json:"orderId"`
	ClientID      string     `json:"clientId"`
	AmountCents   int64      `json:"amountCents"`
	RefundedCents int64      `json:"refundedCents"`
	Currency      string     `json:"currency"`
	Method        Method     `json:"method"`
	Status        Status     `json:"status"`
	Reference     string     `json:"reference,omitempty"`
	PaidAt        *time.Time `json:"paidAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// RefundableCents is what remains after earlier refunds.
func (p Payment) RefundableCents() int64 {
	if p.Status != StatusCompleted && p.Status != StatusPartiallyRefunded {
		return 0
	}
	if rem := p.AmountCents - p.RefundedCents; rem > 0 {
		return rem
	}
	return 0
}

// Input is the create payload.
type Input struct {
	OrderID     string `json:"orderId"`
	ClientID    string `json:"clientId,omitempty"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency,omitempty"`
	Method      Method `json:"method"`
	Reference   string `json:"reference,omitempty"`
}

// RefundRequest asks the backend to return part or all of a payment.
// IdempotencyKey identifies one logical refund; reuse the same request when
// retrying so the backend can replay instead of refunding again.
type RefundRequest struct {
	AmountCents    int64  `json:"amountCents"`
	Reason         string `json:"reason,omitempty"`
	IdempotencyKey string `json:"-"`
}

// NewRefund builds a refund request with a fresh idempotency key.
func NewRefund(amountCents int64, reason string) RefundRequest {
	return RefundRequest{AmountCents: amountCents, Reason: reason, IdempotencyKey: uuid.NewString()}
}

// Query filters a payment list.
type Query struct {
	OrderID  string
	ClientID string
	Status   Status
	Method   Method
	From     time.Time
	To       time.Time
}

func (q Query) Params() apiclient.Params {
	return apiclient.Params{
		{Key: "orderId", Value: q.OrderID},
		{Key: "clientId", Value: q.ClientID},
		{Key: "status", Value: string(q.Status)},
		{Key: "method", Value: string(q.Method)},
		{Key: "from", Value: apiclient.Date(q.From)},
		{Key: "to", Value: apiclient.Date(q.To)},
	}
}
