package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// CreateAppointmentRequest takes the slot in either encoding: the date as
// "2025-03-05" or "5_3_2025", the time as "10:30" or "10:30 AM".
type CreateAppointmentRequest struct {
	DoctorID uuid.UUID `json:"doctor_id" validate:"required"`
	SlotDate string    `json:"slot_date" validate:"required"`
	SlotTime string    `json:"slot_time" validate:"required"`
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID       `json:"id"`
	BookingCode     string          `json:"booking_code"`
	PatientID       uuid.UUID       `json:"patient_id"`
	PatientName     string          `json:"patient_name,omitempty"`
	DoctorID        uuid.UUID       `json:"doctor_id"`
	DoctorName      string          `json:"doctor_name,omitempty"`
	Specialization  string          `json:"specialization,omitempty"`
	SlotDate        string          `json:"slot_date"`
	SlotDateKey     string          `json:"slot_date_key"`
	SlotTime        string          `json:"slot_time"`
	LegacyLabel     string          `json:"legacy_label"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Status          string          `json:"status"`
	Paid            bool            `json:"paid"`
	PaymentOrderRef string          `json:"payment_order_ref,omitempty"`
	CancelledBy     *uuid.UUID      `json:"cancelled_by,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type SlotResponse struct {
	Time        string    `json:"time"`
	LegacyLabel string    `json:"legacy_label"`
	StartsAt    time.Time `json:"starts_at"`
}

type SlotDayResponse struct {
	Date    string         `json:"date"`
	DateKey string         `json:"date_key"`
	Slots   []SlotResponse `json:"slots"`
}

type DoctorSlotsResponse struct {
	DoctorID    uuid.UUID           `json:"doctor_id"`
	Fees        decimal.Decimal     `json:"fees"`
	Days        []SlotDayResponse   `json:"days"`
	SlotsBooked map[string][]string `json:"slots_booked"`
}
