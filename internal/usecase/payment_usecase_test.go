package usecase

import (
	"context"
	"errors"
	"testing"

	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/gateway"
	"go-medical-booking/internal/testutil"
	"go-medical-booking/pkg/apperror"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type paymentFixture struct {
	env         *testEnv
	patient     *entity.User
	doctor      *entity.DoctorProfile
	appointment *dto.AppointmentResponse
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	env := newTestEnv(t)
	doctor := testutil.SeedDoctor(t, env.db, "dr-house", 150)
	patient := testutil.SeedPatient(t, env.db, "alice")
	appt, err := env.appointments.BookAppointment(context.Background(), testutil.Actor(patient), bookReq(doctor.UserID, "2025-03-05", "10:30"))
	require.NoError(t, err)

	return &paymentFixture{env: env, patient: patient, doctor: doctor, appointment: appt}
}

func (f *paymentFixture) order(status gateway.PaymentOrderStatus) *gateway.PaymentOrder {
	return &gateway.PaymentOrder{
		Ref:           "pi_123",
		Status:        status,
		Amount:        decimal.NewFromInt(150),
		Currency:      "usd",
		ClientSecret:  "pi_123_secret_abc",
		AppointmentID: f.appointment.ID,
	}
}

func (f *paymentFixture) createOrder(t *testing.T) *dto.PaymentOrderResponse {
	t.Helper()

	f.env.gateway.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req gateway.CreateOrderRequest) bool {
		return req.AppointmentID == f.appointment.ID && req.Amount.Equal(decimal.NewFromInt(150)) && req.Currency == "usd"
	})).Return(f.order(gateway.PaymentOrderPending), nil).Once()

	resp, err := f.env.payments.CreatePaymentOrder(context.Background(), testutil.Actor(f.patient), f.appointment.ID)
	require.NoError(t, err)
	return resp
}

func TestCreatePaymentOrder(t *testing.T) {
	f := newPaymentFixture(t)

	resp := f.createOrder(t)
	assert.Equal(t, "pi_123", resp.OrderRef)
	assert.Equal(t, "pi_123_secret_abc", resp.ClientSecret)
	assert.True(t, decimal.NewFromInt(150).Equal(resp.Amount))

	stored, err := f.env.appointmentRepo.FindByID(f.env.db, f.appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_123", stored.PaymentOrderRef)
	assert.False(t, stored.Paid)
	assert.EqualValues(t, 1, f.env.countAudit(t, entity.AuditActionPaymentOrderCreate))
	f.env.gateway.AssertExpectations(t)
}

func TestCreatePaymentOrderRejectsOtherUsers(t *testing.T) {
	f := newPaymentFixture(t)
	bob := testutil.SeedPatient(t, f.env.db, "bob")

	_, err := f.env.payments.CreatePaymentOrder(context.Background(), testutil.Actor(bob), f.appointment.ID)
	assert.ErrorIs(t, err, entity.ErrAppointmentNotOwned)
	_, err = f.env.payments.CreatePaymentOrder(context.Background(), testutil.Actor(&f.doctor.User), f.appointment.ID)
	assert.ErrorIs(t, err, entity.ErrAppointmentNotOwned)
	f.env.gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCreatePaymentOrderForCancelledAppointment(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()

	_, err := f.env.appointments.CancelAppointment(ctx, testutil.Actor(f.patient), f.appointment.ID)
	require.NoError(t, err)

	_, err = f.env.payments.CreatePaymentOrder(ctx, testutil.Actor(f.patient), f.appointment.ID)
	assert.ErrorIs(t, err, entity.ErrAppointmentCancelled)
	f.env.gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCreatePaymentOrderProcessorDown(t *testing.T) {
	f := newPaymentFixture(t)
	f.env.gateway.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset")).Once()

	_, err := f.env.payments.CreatePaymentOrder(context.Background(), testutil.Actor(f.patient), f.appointment.ID)
	assert.ErrorIs(t, err, ErrPaymentUnavailable)
	assert.ErrorIs(t, err, apperror.ErrExternalService)

	stored, err := f.env.appointmentRepo.FindByID(f.env.db, f.appointment.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.PaymentOrderRef)
}

func TestConfirmPayment(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	f.createOrder(t)

	f.env.gateway.On("FetchOrder", mock.Anything, "pi_123").Return(f.order(gateway.PaymentOrderPaid), nil).Once()

	req := &dto.ConfirmPaymentRequest{OrderRef: "pi_123", Signature: "pi_123_secret_abc"}
	resp, err := f.env.payments.ConfirmPayment(ctx, testutil.Actor(f.patient), req)
	require.NoError(t, err)
	assert.True(t, resp.Paid)
	assert.Equal(t, f.appointment.ID, resp.AppointmentID)

	// Already paid: answered locally without asking the processor again.
	again, err := f.env.payments.ConfirmPayment(ctx, testutil.Actor(f.patient), req)
	require.NoError(t, err)
	assert.True(t, again.Paid)

	stored, err := f.env.appointmentRepo.FindByID(f.env.db, f.appointment.ID)
	require.NoError(t, err)
	assert.True(t, stored.Paid)
	assert.NotNil(t, stored.PaidAt)
	assert.EqualValues(t, 1, f.env.countOutbox(t, entity.EventAppointmentPaid, f.appointment.ID))
	assert.EqualValues(t, 1, f.env.countAudit(t, entity.AuditActionAppointmentPay))
	f.env.gateway.AssertNumberOfCalls(t, "FetchOrder", 1)
}

func TestConfirmPaymentFailures(t *testing.T) {
	tests := []struct {
		name      string
		signature string
		order     func(f *paymentFixture) (*gateway.PaymentOrder, error)
		wantErr   error
		wantPaid  bool
	}{
		{
			name:      "processor unreachable",
			signature: "pi_123_secret_abc",
			order: func(f *paymentFixture) (*gateway.PaymentOrder, error) {
				return nil, errors.New("i/o timeout")
			},
			wantErr: apperror.ErrExternalService,
		},
		{
			name:      "processor lost the order",
			signature: "pi_123_secret_abc",
			order: func(f *paymentFixture) (*gateway.PaymentOrder, error) {
				return nil, gateway.ErrOrderNotFound
			},
			wantErr: ErrPaymentOrderNotFound,
		},
		{
			name:      "bad signature",
			signature: "forged",
			order: func(f *paymentFixture) (*gateway.PaymentOrder, error) {
				return f.order(gateway.PaymentOrderPaid), nil
			},
			wantErr: ErrInvalidPaymentSig,
		},
		{
			name:      "order for another appointment",
			signature: "pi_123_secret_abc",
			order: func(f *paymentFixture) (*gateway.PaymentOrder, error) {
				o := f.order(gateway.PaymentOrderPaid)
				o.AppointmentID = f.doctor.UserID
				return o, nil
			},
			wantErr: ErrPaymentOrderMismatch,
		},
		{
			name:      "still pending",
			signature: "pi_123_secret_abc",
			order: func(f *paymentFixture) (*gateway.PaymentOrder, error) {
				return f.order(gateway.PaymentOrderPending), nil
			},
		},
		{
			name:      "declined",
			signature: "pi_123_secret_abc",
			order: func(f *paymentFixture) (*gateway.PaymentOrder, error) {
				return f.order(gateway.PaymentOrderFailed), nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPaymentFixture(t)
			f.createOrder(t)
			order, orderErr := tt.order(f)
			f.env.gateway.On("FetchOrder", mock.Anything, "pi_123").Return(order, orderErr).Once()

			resp, err := f.env.payments.ConfirmPayment(context.Background(), testutil.Actor(f.patient), &dto.ConfirmPaymentRequest{
				OrderRef:  "pi_123",
				Signature: tt.signature,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantPaid, resp.Paid)
			}

			stored, err := f.env.appointmentRepo.FindByID(f.env.db, f.appointment.ID)
			require.NoError(t, err)
			assert.False(t, stored.Paid)
			assert.EqualValues(t, 0, f.env.countOutbox(t, entity.EventAppointmentPaid, f.appointment.ID))
		})
	}
}

func TestConfirmPaymentUnknownOrder(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.env.payments.ConfirmPayment(context.Background(), testutil.Actor(f.patient), &dto.ConfirmPaymentRequest{
		OrderRef:  "pi_missing",
		Signature: "whatever",
	})
	assert.ErrorIs(t, err, ErrPaymentOrderNotFound)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestConfirmPaymentAfterCancellation(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	f.createOrder(t)

	_, err := f.env.appointments.CancelAppointment(ctx, testutil.Actor(f.patient), f.appointment.ID)
	require.NoError(t, err)

	f.env.gateway.On("FetchOrder", mock.Anything, "pi_123").Return(f.order(gateway.PaymentOrderPaid), nil).Once()
	_, err = f.env.payments.ConfirmPayment(ctx, testutil.Actor(f.patient), &dto.ConfirmPaymentRequest{
		OrderRef:  "pi_123",
		Signature: "pi_123_secret_abc",
	})
	assert.ErrorIs(t, err, entity.ErrAppointmentCancelled)
	assert.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestHandleOrderPaidIsIdempotent(t *testing.T) {
	f := newPaymentFixture(t)
	ctx := context.Background()
	f.createOrder(t)

	require.NoError(t, f.env.payments.HandleOrderPaid(ctx, "pi_123"))
	require.NoError(t, f.env.payments.HandleOrderPaid(ctx, "pi_123"))

	stored, err := f.env.appointmentRepo.FindByID(f.env.db, f.appointment.ID)
	require.NoError(t, err)
	assert.True(t, stored.Paid)
	assert.EqualValues(t, 1, f.env.countOutbox(t, entity.EventAppointmentPaid, f.appointment.ID))

	assert.ErrorIs(t, f.env.payments.HandleOrderPaid(ctx, "pi_unknown"), ErrPaymentOrderNotFound)

	// Payment does not free or move the slot.
	f.env.assertReservationsMatchLiveAppointments(t)
	f.env.gateway.AssertNotCalled(t, "FetchOrder", mock.Anything, mock.Anything)
}
