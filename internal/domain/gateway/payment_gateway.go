// Package gateway declares the ports to external services the booking flow
// depends on.
package gateway

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrOrderNotFound = errors.New("payment order not found")

type PaymentOrderStatus string

const (
	PaymentOrderPending PaymentOrderStatus = "pending"
	PaymentOrderPaid    PaymentOrderStatus = "paid"
	PaymentOrderFailed  PaymentOrderStatus = "failed"
)

type CreateOrderRequest struct {
	AppointmentID uuid.UUID
	Amount        decimal.Decimal
	Currency      string
	Description   string
}

// PaymentOrder is the processor's view of a payment for one appointment.
type PaymentOrder struct {
	Ref           string
	Status        PaymentOrderStatus
	Amount        decimal.Decimal
	Currency      string
	ClientSecret  string
	AppointmentID uuid.UUID
}

func (o *PaymentOrder) IsPaid() bool {
	return o.Status == PaymentOrderPaid
}

// PaymentGateway creates and looks up payment orders. Implementations must
// honour ctx deadlines.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*PaymentOrder, error)
	FetchOrder(ctx context.Context, ref string) (*PaymentOrder, error)
}

// WebhookEvent is a verified notification pushed by the processor.
type WebhookEvent struct {
	ID       string
	Type     string
	OrderRef string
	Paid     bool
}

type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
