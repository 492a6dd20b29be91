package repository

import (
	"errors"

	"go-medical-booking/internal/domain/entity"
	domainRepo "go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appt *entity.Appointment) error {
	return db.Omit("Patient", "Doctor").Create(appt).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := db.Preload("Patient").Preload("Doctor.User").Where("id = ?", id).First(&appt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepository) FindByPaymentOrderRef(db *gorm.DB, ref string) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := db.Where("payment_order_ref = ?", ref).First(&appt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	var appts []entity.Appointment
	err := db.Preload("Doctor.User").
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *appointmentRepository) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Appointment, error) {
	var appts []entity.Appointment
	err := db.Preload("Patient").
		Where("doctor_id = ?", doctorID).
		Order("created_at DESC").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

// FindLatest returns the most recently booked appointments, optionally for
// one doctor only.
func (r *appointmentRepository) FindLatest(db *gorm.DB, doctorID *uuid.UUID, limit int) ([]entity.Appointment, error) {
	var appts []entity.Appointment
	query := db.Preload("Patient").Preload("Doctor.User")
	if doctorID != nil {
		query = query.Where("doctor_id = ?", *doctorID)
	}
	err := query.Order("created_at DESC").Limit(limit).Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *appointmentRepository) FindAll(db *gorm.DB) ([]entity.Appointment, error) {
	var appts []entity.Appointment
	err := db.Preload("Patient").Preload("Doctor.User").Order("created_at DESC").Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

// MarkCancelled persists a cancellation only if the row is still booked.
// 0 affected rows means another request already cancelled or completed it.
func (r *appointmentRepository) MarkCancelled(db *gorm.DB, appt *entity.Appointment) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND cancelled = ? AND completed = ?", appt.ID, false, false).
		Updates(map[string]interface{}{
			"cancelled":    true,
			"cancelled_by": appt.CancelledBy,
			"cancelled_at": appt.CancelledAt,
		})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) MarkCompleted(db *gorm.DB, appt *entity.Appointment) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND cancelled = ? AND completed = ?", appt.ID, false, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": appt.CompletedAt,
		})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) MarkPaid(db *gorm.DB, appt *entity.Appointment) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND cancelled = ? AND completed = ? AND paid = ?", appt.ID, false, false, false).
		Updates(map[string]interface{}{
			"paid":              true,
			"paid_at":           appt.PaidAt,
			"payment_order_ref": appt.PaymentOrderRef,
		})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) SetPaymentOrderRef(db *gorm.DB, id uuid.UUID, ref string) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ? AND cancelled = ? AND completed = ? AND paid = ?", id, false, false, false).
		Update("payment_order_ref", ref)
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) Count(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&entity.Appointment{}).Count(&count).Error
	return count, err
}

func (r *appointmentRepository) CountDistinctPatients(db *gorm.DB, doctorID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&entity.Appointment{}).
		Where("doctor_id = ?", doctorID).
		Distinct("patient_id").
		Count(&count).Error
	return count, err
}

// SumEarnings adds up the amount of every appointment that was completed or
// paid for.
func (r *appointmentRepository) SumEarnings(db *gorm.DB, doctorID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := db.Model(&entity.Appointment{}).
		Select("SUM(amount)").
		Where("doctor_id = ? AND (completed = ? OR paid = ?)", doctorID, true, true).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
