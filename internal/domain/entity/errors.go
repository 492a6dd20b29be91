package entity

import "go-medical-booking/pkg/apperror"

// Slot and booking errors
var (
	ErrSlotTaken          = apperror.Conflict("slot is already booked")
	ErrInvalidSlot        = apperror.Validation("invalid slot date or time")
	ErrSlotOutsideHours   = apperror.Validation("slot is outside the doctor's working hours")
	ErrSlotStarted        = apperror.Validation("slot has already started")
	ErrSlotOutsideWindow  = apperror.Validation("slot is beyond the booking window")
	ErrDoctorUnavailable  = apperror.Validation("doctor is not available")
	ErrDoctorNotFound     = apperror.NotFound("doctor not found")
	ErrPatientNotFound    = apperror.NotFound("patient not found")
	ErrInvalidWorkingTime = apperror.Validation("invalid working hours")
	ErrInvalidFees        = apperror.Validation("fees must not be negative")
)

// Appointment lifecycle errors
var (
	ErrAppointmentNotFound  = apperror.NotFound("appointment not found")
	ErrAppointmentCancelled = apperror.InvalidState("appointment is cancelled")
	ErrAppointmentCompleted = apperror.InvalidState("appointment is already completed")
	ErrAppointmentPaid      = apperror.InvalidState("appointment is already paid")
	ErrAppointmentNotOwned  = apperror.Authorization("appointment does not belong to you")
)
