package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AppointmentStatus is derived from the cancelled and completed flags.
type AppointmentStatus string

const (
	AppointmentStatusBooked    AppointmentStatus = "booked"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// Appointment is one patient's claim on one doctor slot. Rows are never
// deleted; cancelled and completed are terminal and mutually exclusive, paid
// is independent of both.
type Appointment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	BookingCode     string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"booking_code"`
	PatientID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"doctor_id"`
	SlotDate        SlotDate        `gorm:"type:date;not null;index" json:"slot_date"`
	SlotTime        SlotTime        `gorm:"type:varchar(5);not null" json:"slot_time"`
	Amount          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency        string          `gorm:"type:varchar(3);not null" json:"currency"`
	Cancelled       bool            `gorm:"not null;default:false;index" json:"cancelled"`
	Completed       bool            `gorm:"not null;default:false" json:"completed"`
	Paid            bool            `gorm:"not null;default:false" json:"paid"`
	CancelledBy     *uuid.UUID      `gorm:"type:uuid" json:"cancelled_by,omitempty"`
	PaymentOrderRef string          `gorm:"type:varchar(255);index" json:"payment_order_ref,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient *User          `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  *DoctorProfile `gorm:"foreignKey:DoctorID;references:UserID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a *Appointment) Status() AppointmentStatus {
	switch {
	case a.Cancelled:
		return AppointmentStatusCancelled
	case a.Completed:
		return AppointmentStatusCompleted
	default:
		return AppointmentStatusBooked
	}
}

func (a *Appointment) IsBooked() bool {
	return !a.Cancelled && !a.Completed
}

// StartsAt returns the slot start instant in loc.
func (a *Appointment) StartsAt(loc *time.Location) time.Time {
	return a.SlotDate.At(a.SlotTime, loc)
}

// Cancel moves a booked appointment to cancelled. Cancelling twice is a
// no-op reported as changed=false so the caller does not release the slot
// again.
func (a *Appointment) Cancel(by uuid.UUID, at time.Time) (bool, error) {
	if a.Cancelled {
		return false, nil
	}
	if a.Completed {
		return false, ErrAppointmentCompleted
	}
	a.Cancelled = true
	a.CancelledBy = &by
	a.CancelledAt = &at
	return true, nil
}

// Complete moves a booked appointment to completed. Completing twice is a
// no-op.
func (a *Appointment) Complete(at time.Time) (bool, error) {
	if a.Completed {
		return false, nil
	}
	if a.Cancelled {
		return false, ErrAppointmentCancelled
	}
	a.Completed = true
	a.CompletedAt = &at
	return true, nil
}

// CanPay reports why a payment may not be taken, or nil if it may.
func (a *Appointment) CanPay() error {
	switch {
	case a.Cancelled:
		return ErrAppointmentCancelled
	case a.Completed:
		return ErrAppointmentCompleted
	case a.Paid:
		return ErrAppointmentPaid
	}
	return nil
}

// MarkPaid sets the paid flag. Only a booked, unpaid appointment can be paid.
func (a *Appointment) MarkPaid(orderRef string, at time.Time) error {
	if err := a.CanPay(); err != nil {
		return err
	}
	a.Paid = true
	a.PaidAt = &at
	if orderRef != "" {
		a.PaymentOrderRef = orderRef
	}
	return nil
}
