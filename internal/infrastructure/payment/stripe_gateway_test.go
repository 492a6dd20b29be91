package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"go-medical-booking/internal/domain/gateway"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

const testWebhookSecret = "whsec_test"

func sign(payload []byte, secret string, at time.Time) string {
	ts := at.Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(eventType, status string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"api_version": "2024-06-20",
		"type": %q,
		"data": {"object": {"id": "pi_123", "object": "payment_intent", "status": %q, "amount": 15000, "currency": "usd"}}
	}`, eventType, status))
}

func TestParseWebhookPaymentSucceeded(t *testing.T) {
	g := NewStripeGateway("sk_test", testWebhookSecret, logrus.New())
	payload := eventPayload("payment_intent.succeeded", "succeeded")

	evt, err := g.ParseWebhook(payload, sign(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", evt.ID)
	assert.Equal(t, "pi_123", evt.OrderRef)
	assert.True(t, evt.Paid)
}

func TestParseWebhookRejectsBadSignature(t *testing.T) {
	g := NewStripeGateway("sk_test", testWebhookSecret, logrus.New())
	payload := eventPayload("payment_intent.succeeded", "succeeded")

	_, err := g.ParseWebhook(payload, sign(payload, "whsec_other", time.Now()))
	assert.Error(t, err)

	_, err = g.ParseWebhook(payload, sign(payload, testWebhookSecret, time.Now().Add(-time.Hour)))
	assert.Error(t, err, "stale timestamp")
}

func TestParseWebhookFailedPaymentIsNotPaid(t *testing.T) {
	g := NewStripeGateway("sk_test", testWebhookSecret, logrus.New())
	payload := eventPayload("payment_intent.payment_failed", "requires_payment_method")

	evt, err := g.ParseWebhook(payload, sign(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "pi_123", evt.OrderRef)
	assert.False(t, evt.Paid)
}

func TestToOrder(t *testing.T) {
	apptID := uuid.New()
	order := toOrder(&stripe.PaymentIntent{
		ID:           "pi_123",
		Amount:       15050,
		Currency:     stripe.CurrencyUSD,
		Status:       stripe.PaymentIntentStatusSucceeded,
		ClientSecret: "pi_123_secret_abc",
		Metadata:     map[string]string{metadataAppointmentID: apptID.String()},
	})

	assert.Equal(t, gateway.PaymentOrderPaid, order.Status)
	assert.True(t, decimal.RequireFromString("150.50").Equal(order.Amount))
	assert.Equal(t, apptID, order.AppointmentID)
	assert.Equal(t, "usd", order.Currency)

	assert.Equal(t, gateway.PaymentOrderPending, orderStatus(stripe.PaymentIntentStatusProcessing))
	assert.Equal(t, gateway.PaymentOrderFailed, orderStatus(stripe.PaymentIntentStatusCanceled))
}

func TestMinorUnits(t *testing.T) {
	assert.EqualValues(t, 15050, MinorUnits(decimal.RequireFromString("150.50")))
	assert.EqualValues(t, 100, MinorUnits(decimal.NewFromInt(1)))
}
