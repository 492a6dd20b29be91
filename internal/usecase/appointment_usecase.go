package usecase

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"go-medical-booking/internal/converter"
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/calendar"
	"go-medical-booking/internal/domain/entity"
	"go-medical-booking/internal/domain/repository"
	"go-medical-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AppointmentUsecase interface {
	BookAppointment(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	CompleteAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	GetAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	GetMyAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error)
	GetAllAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
}

type appointmentUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	policy             BookingPolicy
	appointmentRepo    repository.AppointmentRepository
	availabilityRepo   repository.AvailabilityRepository
	doctorProfileRepo  repository.DoctorProfileRepository
	patientProfileRepo repository.PatientProfileRepository
	outboxRepo         repository.OutboxRepository
	auditService       service.AuditService
	slotCache          *service.SlotCacheService
	newBookingCode     func(entity.SlotDate) string
}

// bookingCodeAttempts bounds redraws after a booking code collision.
const bookingCodeAttempts = 3

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	policy BookingPolicy,
	appointmentRepo repository.AppointmentRepository,
	availabilityRepo repository.AvailabilityRepository,
	doctorProfileRepo repository.DoctorProfileRepository,
	patientProfileRepo repository.PatientProfileRepository,
	outboxRepo repository.OutboxRepository,
	auditService service.AuditService,
	slotCache *service.SlotCacheService,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:                 db,
		log:                log,
		policy:             policy,
		appointmentRepo:    appointmentRepo,
		availabilityRepo:   availabilityRepo,
		doctorProfileRepo:  doctorProfileRepo,
		patientProfileRepo: patientProfileRepo,
		outboxRepo:         outboxRepo,
		auditService:       auditService,
		slotCache:          slotCache,
		newBookingCode:     generateBookingCode,
	}
}

// BookAppointment claims a slot for the calling patient.
//
// Flow:
// 1. Validate patient, doctor and slot (working hours, not started, inside the window)
// 2. In one transaction: insert appointment, reserve slot, outbox event, audit log
// 3. A lost reservation race rolls everything back and returns ErrSlotTaken
// 4. After commit, update the Redis projection (best effort)
func (u *appointmentUsecase) BookAppointment(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	if !actor.IsPatient() {
		return nil, ErrPatientOnly
	}

	db := u.db.WithContext(ctx)

	patient, err := u.patientProfileRepo.FindByUserID(db, actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile %s: %+v", actor.UserID, err)
		return nil, err
	}
	if patient == nil {
		return nil, entity.ErrPatientNotFound
	}

	doctor, err := u.doctorProfileRepo.FindByUserID(db, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, entity.ErrDoctorNotFound
	}
	if !doctor.IsAvailable() {
		return nil, entity.ErrDoctorUnavailable
	}

	slotDate, slotTime, err := parseSlot(req.SlotDate, req.SlotTime)
	if err != nil {
		return nil, err
	}
	if !doctor.WorkingHours().Contains(slotTime) {
		return nil, entity.ErrSlotOutsideHours
	}

	now := u.policy.now()
	if !slotDate.At(slotTime, now.Location()).After(now) {
		return nil, entity.ErrSlotStarted
	}
	if !slotDate.Before(entity.NewSlotDate(now).AddDays(calendar.WindowDays)) {
		return nil, entity.ErrSlotOutsideWindow
	}

	appt := &entity.Appointment{
		ID:        uuid.New(),
		PatientID: actor.UserID,
		DoctorID:  doctor.UserID,
		SlotDate:  slotDate,
		SlotTime:  slotTime,
		Amount:    doctor.Fees,
		Currency:  u.policy.Currency,
	}

	tx := db.Begin()
	defer tx.Rollback()

	if err := u.createWithFreshCode(tx, appt); err != nil {
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	reserved, err := u.availabilityRepo.Reserve(tx, &entity.SlotReservation{
		DoctorID:      appt.DoctorID,
		SlotDate:      appt.SlotDate,
		SlotTime:      appt.SlotTime,
		AppointmentID: appt.ID,
	})
	if err != nil {
		u.log.Warnf("Failed to reserve slot %s %s for doctor %s: %+v", slotDate, slotTime, doctor.UserID, err)
		return nil, err
	}
	if !reserved {
		return nil, entity.ErrSlotTaken
	}

	if err := u.outboxRepo.Create(tx, entity.NewAppointmentEvent(entity.EventAppointmentBooked, appt)); err != nil {
		u.log.Warnf("Failed to write outbox event: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(tx, &actor.UserID, entity.AuditActionAppointmentBook, "appointment", appt.ID.String(), converter.AppointmentToResponse(appt)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	if err := u.slotCache.MarkBooked(ctx, appt.DoctorID, appt.SlotDate, appt.SlotTime); err != nil {
		u.log.Warnf("Failed to update slot cache for doctor %s (non-fatal): %+v", appt.DoctorID, err)
		u.dropCachedDay(ctx, appt)
	}

	u.log.Infof("Appointment booked: id=%s, doctor=%s, slot=%s %s, code=%s", appt.ID, appt.DoctorID, appt.SlotDate, appt.SlotTime, appt.BookingCode)

	appt.Doctor = doctor
	appt.Patient = &patient.User
	return converter.AppointmentToResponse(appt), nil
}

// CancelAppointment cancels a booked appointment and frees its slot.
// Cancelling an already cancelled appointment returns it unchanged.
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	db := u.db.WithContext(ctx)

	appt, err := u.findAccessible(db, actor, appointmentID)
	if err != nil {
		return nil, err
	}

	oldValue := converter.AppointmentToResponse(appt)
	changed, err := appt.Cancel(actor.UserID, u.policy.now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return oldValue, nil
	}

	tx := db.Begin()
	defer tx.Rollback()

	rows, err := u.appointmentRepo.MarkCancelled(tx, appt)
	if err != nil {
		u.log.Warnf("Failed to cancel appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if rows == 0 {
		// Lost a race with another cancel or a completion.
		current, err := u.appointmentRepo.FindByID(tx, appointmentID)
		if err != nil {
			return nil, err
		}
		if current != nil && current.Cancelled {
			return converter.AppointmentToResponse(current), nil
		}
		if current != nil && current.Completed {
			return nil, entity.ErrAppointmentCompleted
		}
		return nil, ErrAppointmentStateChange
	}

	if _, err := u.availabilityRepo.Release(tx, appt.DoctorID, appt.SlotDate, appt.SlotTime); err != nil {
		u.log.Warnf("Failed to release slot for appointment %s: %+v", appointmentID, err)
		return nil, err
	}

	if err := u.outboxRepo.Create(tx, entity.NewAppointmentEvent(entity.EventAppointmentCancelled, appt)); err != nil {
		u.log.Warnf("Failed to write outbox event: %+v", err)
		return nil, err
	}

	newValue := converter.AppointmentToResponse(appt)
	if err := u.auditService.LogUpdate(tx, &actor.UserID, entity.AuditActionAppointmentCancel, "appointment", appt.ID.String(), oldValue, newValue); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	if err := u.slotCache.MarkReleased(ctx, appt.DoctorID, appt.SlotDate, appt.SlotTime); err != nil {
		u.log.Warnf("Failed to update slot cache for doctor %s (non-fatal): %+v", appt.DoctorID, err)
		u.dropCachedDay(ctx, appt)
	}

	u.log.Infof("Appointment cancelled: id=%s, by=%s", appt.ID, actor.UserID)
	return newValue, nil
}

// CompleteAppointment marks an appointment as attended. Only the treating
// doctor may do so; the slot stays occupied.
func (u *appointmentUsecase) CompleteAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	db := u.db.WithContext(ctx)

	appt, err := u.appointmentRepo.FindByID(db, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appt == nil {
		return nil, entity.ErrAppointmentNotFound
	}
	if !actor.IsDoctor() || appt.DoctorID != actor.UserID {
		return nil, ErrDoctorOnly
	}

	oldValue := converter.AppointmentToResponse(appt)
	changed, err := appt.Complete(u.policy.now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return oldValue, nil
	}

	tx := db.Begin()
	defer tx.Rollback()

	rows, err := u.appointmentRepo.MarkCompleted(tx, appt)
	if err != nil {
		u.log.Warnf("Failed to complete appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if rows == 0 {
		current, err := u.appointmentRepo.FindByID(tx, appointmentID)
		if err != nil {
			return nil, err
		}
		if current != nil && current.Completed {
			return converter.AppointmentToResponse(current), nil
		}
		if current != nil && current.Cancelled {
			return nil, entity.ErrAppointmentCancelled
		}
		return nil, ErrAppointmentStateChange
	}

	if err := u.outboxRepo.Create(tx, entity.NewAppointmentEvent(entity.EventAppointmentCompleted, appt)); err != nil {
		u.log.Warnf("Failed to write outbox event: %+v", err)
		return nil, err
	}

	newValue := converter.AppointmentToResponse(appt)
	if err := u.auditService.LogUpdate(tx, &actor.UserID, entity.AuditActionAppointmentComplete, "appointment", appt.ID.String(), oldValue, newValue); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Appointment completed: id=%s", appt.ID)
	return newValue, nil
}

func (u *appointmentUsecase) GetAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	appt, err := u.findAccessible(u.db.WithContext(ctx), actor, appointmentID)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appt), nil
}

// GetMyAppointments lists the caller's appointments: a patient's bookings or
// a doctor's patients.
func (u *appointmentUsecase) GetMyAppointments(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error) {
	db := u.db.WithContext(ctx)

	var (
		appts []entity.Appointment
		err   error
	)
	switch {
	case actor.IsPatient():
		appts, err = u.appointmentRepo.FindByPatientID(db, actor.UserID)
	case actor.IsDoctor():
		appts, err = u.appointmentRepo.FindByDoctorID(db, actor.UserID)
	default:
		appts, err = u.appointmentRepo.FindAll(db)
	}
	if err != nil {
		u.log.Warnf("Failed to find appointments for %s: %+v", actor.UserID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appts),
		Total:        len(appts),
	}, nil
}

func (u *appointmentUsecase) GetAllAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	appts, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to find all appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appts),
		Total:        len(appts),
	}, nil
}

func (u *appointmentUsecase) findAccessible(db *gorm.DB, actor entity.Actor, appointmentID uuid.UUID) (*entity.Appointment, error) {
	appt, err := u.appointmentRepo.FindByID(db, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appt == nil {
		return nil, entity.ErrAppointmentNotFound
	}
	if !actor.CanAccess(appt) {
		return nil, entity.ErrAppointmentNotOwned
	}
	return appt, nil
}

func parseSlot(rawDate, rawTime string) (entity.SlotDate, entity.SlotTime, error) {
	date, err := entity.ParseSlotDate(rawDate)
	if err != nil {
		return entity.SlotDate{}, 0, entity.ErrInvalidSlot.Wrap(err)
	}
	at, err := entity.ParseSlotTime(rawTime)
	if err != nil {
		return entity.SlotDate{}, 0, entity.ErrInvalidSlot.Wrap(err)
	}
	return date, at, nil
}

// generateBookingCode generates a unique booking code: BK-YYYYMMDD-XXXXXX
func generateBookingCode(date entity.SlotDate) string {
	randomBytes := make([]byte, 3)
	_, _ = rand.Read(randomBytes)
	return fmt.Sprintf("BK-%s-%06X", date.Time(time.UTC).Format("20060102"), randomBytes)
}

// createWithFreshCode inserts appt, drawing another booking code when the
// drawn one is taken. The savepoint keeps tx usable after the failed insert.
func (u *appointmentUsecase) createWithFreshCode(tx *gorm.DB, appt *entity.Appointment) error {
	for attempt := 1; ; attempt++ {
		appt.BookingCode = u.newBookingCode(appt.SlotDate)
		if err := tx.SavePoint("booking_code").Error; err != nil {
			return err
		}
		err := u.appointmentRepo.Create(tx, appt)
		if err == nil {
			return nil
		}
		if !repository.IsUniqueViolation(err) || attempt == bookingCodeAttempts {
			return err
		}
		if err := tx.RollbackTo("booking_code").Error; err != nil {
			return err
		}
		u.log.Warnf("Booking code %s already taken, drawing another", appt.BookingCode)
	}
}

// dropCachedDay evicts a day set that could not be patched so readers reload it.
func (u *appointmentUsecase) dropCachedDay(ctx context.Context, appt *entity.Appointment) {
	if err := u.slotCache.Invalidate(ctx, appt.DoctorID, appt.SlotDate); err != nil {
		u.log.Warnf("Failed to invalidate slot cache for doctor %s: %+v", appt.DoctorID, err)
	}
}
