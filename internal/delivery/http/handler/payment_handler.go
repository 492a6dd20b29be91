package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/gateway"
	"go-medical-booking/internal/usecase"
	"go-medical-booking/pkg/apperror"
	"go-medical-booking/pkg/response"
	"go-medical-booking/pkg/validator"

	"github.com/sirupsen/logrus"
)

// maxWebhookBody matches the payload cap Stripe recommends.
const maxWebhookBody = 65536

type PaymentHandler struct {
	paymentUsecase usecase.PaymentUsecase
	webhookParser  gateway.WebhookParser
	validator      *validator.CustomValidator
	log            *logrus.Logger
}

func NewPaymentHandler(paymentUsecase usecase.PaymentUsecase, webhookParser gateway.WebhookParser, validator *validator.CustomValidator, log *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentUsecase: paymentUsecase,
		webhookParser:  webhookParser,
		validator:      validator,
		log:            log,
	}
}

// CreatePaymentOrder opens a processor order for the appointment
// @Summary Create payment order
// @Tags Payments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Appointment ID"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /patient/appointments/{id}/payment-order [post]
func (h *PaymentHandler) CreatePaymentOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}
	appointmentID, ok := uuidVar(w, r, "id", "appointment ID")
	if !ok {
		return
	}

	order, err := h.paymentUsecase.CreatePaymentOrder(r.Context(), caller, appointmentID)
	if err != nil {
		response.FromError(w, err, "Failed to create payment order")
		return
	}

	response.Success(w, http.StatusCreated, "Payment order created successfully", order)
}

// ConfirmPayment checks the order with the processor
// @Summary Confirm payment
// @Tags Payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ConfirmPaymentRequest true "Order"
// @Success 200 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /patient/payments/confirm [post]
func (h *PaymentHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	caller, ok := actor(w, r)
	if !ok {
		return
	}

	var req dto.ConfirmPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.paymentUsecase.ConfirmPayment(r.Context(), caller, &req)
	if err != nil {
		response.FromError(w, err, "Failed to confirm payment")
		return
	}

	message := "Payment not completed"
	if result.Paid {
		message = "Payment confirmed"
	}
	response.Success(w, http.StatusOK, message, result)
}

// StripeWebhook applies payment_intent notifications. A 4xx or 5xx makes
// Stripe retry, so only unverifiable payloads and transient failures get
// one. A payment for an appointment that can no longer be paid is
// acknowledged and logged for a manual refund.
func (h *PaymentHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Failed to read body", nil)
		return
	}

	event, err := h.webhookParser.ParseWebhook(payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.log.Warnf("Rejected payment webhook: %+v", err)
		response.Error(w, http.StatusBadRequest, "Invalid webhook signature", nil)
		return
	}

	if !event.Paid || event.OrderRef == "" {
		h.log.Debugf("Ignoring payment webhook %s of type %s", event.ID, event.Type)
		response.Success(w, http.StatusOK, "Event ignored", nil)
		return
	}

	if err := h.paymentUsecase.HandleOrderPaid(r.Context(), event.OrderRef); err != nil {
		if unpayable(err) {
			h.log.WithFields(logrus.Fields{
				"event_id":  event.ID,
				"order_ref": event.OrderRef,
			}).Errorf("Payment received for an appointment that cannot be paid, refund manually: %v", err)
			response.Success(w, http.StatusOK, "Event acknowledged", nil)
			return
		}
		h.log.Warnf("Failed to apply payment webhook %s for order %s: %+v", event.ID, event.OrderRef, err)
		response.FromError(w, err, "Failed to apply payment")
		return
	}

	response.Success(w, http.StatusOK, "Event processed", nil)
}

// unpayable reports a permanent state conflict. A concurrent state change is
// left retryable since the next delivery re-reads the appointment.
func unpayable(err error) bool {
	return errors.Is(err, apperror.ErrInvalidState) && !errors.Is(err, usecase.ErrAppointmentStateChange)
}
