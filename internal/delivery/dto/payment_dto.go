package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// ConfirmPaymentRequest carries what the client received from the payment
// form. Signature is the order's client secret.
type ConfirmPaymentRequest struct {
	OrderRef  string `json:"order_ref" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// Response DTOs

type PaymentOrderResponse struct {
	AppointmentID uuid.UUID       `json:"appointment_id"`
	OrderRef      string          `json:"order_ref"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	ClientSecret  string          `json:"client_secret"`
}

type ConfirmPaymentResponse struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
	Paid          bool      `json:"paid"`
}
