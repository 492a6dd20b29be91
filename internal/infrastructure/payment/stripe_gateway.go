package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go-medical-booking/internal/domain/gateway"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

const (
	metadataAppointmentID = "appointment_id"
	eventPaymentSucceeded = "payment_intent.succeeded"
)

// StripeGateway implements the payment ports with Stripe PaymentIntents.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	log           *logrus.Logger
}

func NewStripeGateway(secretKey, webhookSecret string, log *logrus.Logger) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, webhookSecret: webhookSecret, log: log}
}

// NewStripeGatewayWithBackends points the client at custom backends, e.g. a
// local stripe-mock.
func NewStripeGatewayWithBackends(secretKey, webhookSecret string, backends *stripe.Backends, log *logrus.Logger) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeGateway{api: api, webhookSecret: webhookSecret, log: log}
}

// CreateOrder creates a PaymentIntent. The appointment id is the
// idempotency key, so retries return the same intent.
func (g *StripeGateway) CreateOrder(ctx context.Context, req gateway.CreateOrderRequest) (*gateway.PaymentOrder, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(MinorUnits(req.Amount)),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Description: stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String("appointment-" + req.AppointmentID.String())
	params.AddMetadata(metadataAppointmentID, req.AppointmentID.String())

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe create payment intent: %w", err)
	}
	g.log.Infof("Stripe payment intent created: id=%s appointment=%s", pi.ID, req.AppointmentID)
	return toOrder(pi), nil
}

func (g *StripeGateway) FetchOrder(ctx context.Context, ref string) (*gateway.PaymentOrder, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(ref, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			return nil, gateway.ErrOrderNotFound
		}
		return nil, fmt.Errorf("stripe get payment intent %s: %w", ref, err)
	}
	return toOrder(pi), nil
}

// ParseWebhook verifies the Stripe-Signature header and extracts the
// payment intent of payment events. Other event types are returned with an
// empty OrderRef.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*gateway.WebhookEvent, error) {
	if strings.TrimSpace(g.webhookSecret) == "" {
		return nil, errors.New("stripe webhook secret not configured")
	}
	evt, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("verify stripe webhook: %w", err)
	}

	out := &gateway.WebhookEvent{ID: evt.ID, Type: string(evt.Type)}
	if !strings.HasPrefix(out.Type, "payment_intent.") {
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(evt.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}
	out.OrderRef = pi.ID
	out.Paid = out.Type == eventPaymentSucceeded && pi.Status == stripe.PaymentIntentStatusSucceeded
	return out, nil
}

func toOrder(pi *stripe.PaymentIntent) *gateway.PaymentOrder {
	order := &gateway.PaymentOrder{
		Ref:          pi.ID,
		Status:       orderStatus(pi.Status),
		Amount:       decimal.New(pi.Amount, -2),
		Currency:     string(pi.Currency),
		ClientSecret: pi.ClientSecret,
	}
	if id, err := uuid.Parse(pi.Metadata[metadataAppointmentID]); err == nil {
		order.AppointmentID = id
	}
	return order
}

func orderStatus(s stripe.PaymentIntentStatus) gateway.PaymentOrderStatus {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return gateway.PaymentOrderPaid
	case stripe.PaymentIntentStatusCanceled:
		return gateway.PaymentOrderFailed
	default:
		return gateway.PaymentOrderPending
	}
}

// MinorUnits converts an amount to the smallest currency unit, e.g. cents.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
