package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"go-medical-booking/internal/converter"
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/gateway"
	"go-medical-booking/internal/domain/repository"
	"go-medical-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PaymentUsecase interface {
	CreatePaymentOrder(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.PaymentOrderResponse, error)
	ConfirmPayment(ctx context.Context, actor entity.Actor, req *dto.ConfirmPaymentRequest) (*dto.ConfirmPaymentResponse, error)
	HandleOrderPaid(ctx context.Context, orderRef string) error
}

type paymentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	policy          BookingPolicy
	appointmentRepo repository.AppointmentRepository
	outboxRepo      repository.OutboxRepository
	auditService    service.AuditService
	gateway         gateway.PaymentGateway
	timeout         time.Duration
}

func NewPaymentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	policy BookingPolicy,
	appointmentRepo repository.AppointmentRepository,
	outboxRepo repository.OutboxRepository,
	auditService service.AuditService,
	paymentGateway gateway.PaymentGateway,
	timeout time.Duration,
) PaymentUsecase {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &paymentUsecase{
		db:              db,
		log:             log,
		policy:          policy,
		appointmentRepo: appointmentRepo,
		outboxRepo:      outboxRepo,
		auditService:    auditService,
		gateway:         paymentGateway,
		timeout:         timeout,
	}
}

// CreatePaymentOrder opens a processor order for the appointment's amount.
// The processor deduplicates on the appointment id, so calling this twice
// returns the same order.
func (u *paymentUsecase) CreatePaymentOrder(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.PaymentOrderResponse, error) {
	db := u.db.WithContext(ctx)

	appt, err := u.appointmentRepo.FindByID(db, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appt == nil {
		return nil, entity.ErrAppointmentNotFound
	}
	if !actor.IsPatient() || appt.PatientID != actor.UserID {
		return nil, entity.ErrAppointmentNotOwned
	}
	if err := appt.CanPay(); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	order, err := u.gateway.CreateOrder(callCtx, gateway.CreateOrderRequest{
		AppointmentID: appt.ID,
		Amount:        appt.Amount,
		Currency:      appt.Currency,
		Description:   fmt.Sprintf("Appointment %s", appt.BookingCode),
	})
	if err != nil {
		u.log.Warnf("Failed to create payment order for appointment %s: %+v", appt.ID, err)
		return nil, ErrPaymentUnavailable.Wrap(err)
	}

	tx := db.Begin()
	defer tx.Rollback()

	rows, err := u.appointmentRepo.SetPaymentOrderRef(tx, appt.ID, order.Ref)
	if err != nil {
		u.log.Warnf("Failed to store payment order ref for appointment %s: %+v", appt.ID, err)
		return nil, err
	}
	if rows == 0 {
		current, err := u.appointmentRepo.FindByID(tx, appt.ID)
		if err != nil {
			return nil, err
		}
		if current != nil {
			if err := current.CanPay(); err != nil {
				return nil, err
			}
		}
		return nil, ErrAppointmentStateChange
	}

	if err := u.auditService.LogCreate(tx, &actor.UserID, entity.AuditActionPaymentOrderCreate, "appointment", appt.ID.String(), map[string]interface{}{
		"order_ref": order.Ref,
		"amount":    appt.Amount,
		"currency":  appt.Currency,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return &dto.PaymentOrderResponse{
		AppointmentID: appt.ID,
		OrderRef:      order.Ref,
		Amount:        appt.Amount,
		Currency:      appt.Currency,
		ClientSecret:  order.ClientSecret,
	}, nil
}

// ConfirmPayment asks the processor for the order state and marks the
// appointment paid only when the processor reports it paid. A processor
// failure leaves the appointment untouched.
func (u *paymentUsecase) ConfirmPayment(ctx context.Context, actor entity.Actor, req *dto.ConfirmPaymentRequest) (*dto.ConfirmPaymentResponse, error) {
	db := u.db.WithContext(ctx)

	appt, err := u.appointmentRepo.FindByPaymentOrderRef(db, req.OrderRef)
	if err != nil {
		u.log.Warnf("Failed to find appointment for order %s: %+v", req.OrderRef, err)
		return nil, err
	}
	if appt == nil {
		return nil, ErrPaymentOrderNotFound
	}
	if !actor.CanAccess(appt) {
		return nil, entity.ErrAppointmentNotOwned
	}
	if appt.Paid {
		return &dto.ConfirmPaymentResponse{AppointmentID: appt.ID, Paid: true}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	order, err := u.gateway.FetchOrder(callCtx, req.OrderRef)
	if err != nil {
		if errors.Is(err, gateway.ErrOrderNotFound) {
			return nil, ErrPaymentOrderNotFound
		}
		u.log.Warnf("Failed to fetch payment order %s: %+v", req.OrderRef, err)
		return nil, ErrPaymentUnavailable.Wrap(err)
	}

	if subtle.ConstantTimeCompare([]byte(order.ClientSecret), []byte(req.Signature)) != 1 {
		return nil, ErrInvalidPaymentSig
	}
	if order.AppointmentID != uuid.Nil && order.AppointmentID != appt.ID {
		return nil, ErrPaymentOrderMismatch
	}
	if !order.IsPaid() {
		return &dto.ConfirmPaymentResponse{AppointmentID: appt.ID, Paid: false}, nil
	}

	if err := u.markPaid(ctx, appt, order.Ref, &actor.UserID); err != nil {
		return nil, err
	}
	return &dto.ConfirmPaymentResponse{AppointmentID: appt.ID, Paid: true}, nil
}

// HandleOrderPaid applies a verified processor notification. Repeated
// notifications for the same order are no-ops.
func (u *paymentUsecase) HandleOrderPaid(ctx context.Context, orderRef string) error {
	appt, err := u.appointmentRepo.FindByPaymentOrderRef(u.db.WithContext(ctx), orderRef)
	if err != nil {
		u.log.Warnf("Failed to find appointment for order %s: %+v", orderRef, err)
		return err
	}
	if appt == nil {
		return ErrPaymentOrderNotFound
	}
	return u.markPaid(ctx, appt, orderRef, nil)
}

func (u *paymentUsecase) markPaid(ctx context.Context, appt *entity.Appointment, orderRef string, by *uuid.UUID) error {
	oldValue := converter.AppointmentToResponse(appt)
	if err := appt.MarkPaid(orderRef, u.policy.now()); err != nil {
		if errors.Is(err, entity.ErrAppointmentPaid) {
			return nil
		}
		u.log.Warnf("Payment received for appointment %s that cannot be paid: %+v", appt.ID, err)
		return err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	rows, err := u.appointmentRepo.MarkPaid(tx, appt)
	if err != nil {
		u.log.Warnf("Failed to mark appointment %s paid: %+v", appt.ID, err)
		return err
	}
	if rows == 0 {
		current, err := u.appointmentRepo.FindByID(tx, appt.ID)
		if err != nil {
			return err
		}
		if current == nil {
			return entity.ErrAppointmentNotFound
		}
		if current.Paid {
			return nil
		}
		if err := current.CanPay(); err != nil {
			return err
		}
		return ErrAppointmentStateChange
	}

	if err := u.outboxRepo.Create(tx, entity.NewAppointmentEvent(entity.EventAppointmentPaid, appt)); err != nil {
		u.log.Warnf("Failed to write outbox event: %+v", err)
		return err
	}

	newValue := converter.AppointmentToResponse(appt)
	if err := u.auditService.LogUpdate(tx, by, entity.AuditActionAppointmentPay, "appointment", appt.ID.String(), oldValue, newValue); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.log.Infof("Appointment paid: id=%s, order=%s", appt.ID, orderRef)
	return nil
}
