package repository

import (
	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AppointmentRepository persists appointments. The Mark* methods are
// conditional updates: they return 0 affected rows when the stored row is no
// longer in the state the transition requires.
type AppointmentRepository interface {
	Create(db *gorm.DB, appt *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindByPaymentOrderRef(db *gorm.DB, ref string) (*entity.Appointment, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error)
	FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Appointment, error)
	FindLatest(db *gorm.DB, doctorID *uuid.UUID, limit int) ([]entity.Appointment, error)
	FindAll(db *gorm.DB) ([]entity.Appointment, error)

	MarkCancelled(db *gorm.DB, appt *entity.Appointment) (int64, error)
	MarkCompleted(db *gorm.DB, appt *entity.Appointment) (int64, error)
	MarkPaid(db *gorm.DB, appt *entity.Appointment) (int64, error)
	SetPaymentOrderRef(db *gorm.DB, id uuid.UUID, ref string) (int64, error)

	Count(db *gorm.DB) (int64, error)
	CountDistinctPatients(db *gorm.DB, doctorID uuid.UUID) (int64, error)
	SumEarnings(db *gorm.DB, doctorID uuid.UUID) (decimal.Decimal, error)
}
