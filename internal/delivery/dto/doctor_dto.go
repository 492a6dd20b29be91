package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// CreateDoctorRequest is used by admins. Working hours default to the clinic
// hours when omitted.
type CreateDoctorRequest struct {
	Email             string          `json:"email" validate:"required,email"`
	Password          string          `json:"password" validate:"required,min=6"`
	FullName          string          `json:"full_name" validate:"required,min=2"`
	LicenseNumber     string          `json:"license_number" validate:"required"`
	Specialization    string          `json:"specialization" validate:"required"`
	Degree            string          `json:"degree" validate:"omitempty"`
	Experience        string          `json:"experience" validate:"omitempty"`
	Biography         string          `json:"biography" validate:"omitempty"`
	Address           string          `json:"address" validate:"omitempty"`
	Fees              decimal.Decimal `json:"fees" validate:"required"`
	WorkingHoursStart string          `json:"working_hours_start" validate:"omitempty,hhmm"`
	WorkingHoursEnd   string          `json:"working_hours_end" validate:"omitempty,hhmm"`
}

type UpdateDoctorRequest struct {
	Email             string           `json:"email" validate:"omitempty,email"`
	FullName          string           `json:"full_name" validate:"omitempty,min=2"`
	LicenseNumber     string           `json:"license_number" validate:"omitempty"`
	Specialization    string           `json:"specialization" validate:"omitempty"`
	Degree            string           `json:"degree" validate:"omitempty"`
	Experience        string           `json:"experience" validate:"omitempty"`
	Biography         string           `json:"biography" validate:"omitempty"`
	Address           string           `json:"address" validate:"omitempty"`
	Fees              *decimal.Decimal `json:"fees" validate:"omitempty"`
	WorkingHoursStart string           `json:"working_hours_start" validate:"omitempty,hhmm"`
	WorkingHoursEnd   string           `json:"working_hours_end" validate:"omitempty,hhmm"`
	IsActive          *bool            `json:"is_active" validate:"omitempty"`
}

// DoctorUpdateSelfRequest lists the fields a doctor may change on their own
// profile. Changing the password requires the old one.
type DoctorUpdateSelfRequest struct {
	OldPassword string           `json:"old_password" validate:"required_with=Password"`
	Password    string           `json:"password" validate:"omitempty,min=6"`
	Biography   string           `json:"biography" validate:"omitempty"`
	Address     string           `json:"address" validate:"omitempty"`
	Fees        *decimal.Decimal `json:"fees" validate:"omitempty"`
}

type SetAvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

// Response DTOs

type DoctorProfileResponse struct {
	LicenseNumber  string          `json:"license_number"`
	Specialization string          `json:"specialization"`
	Fees           decimal.Decimal `json:"fees"`
	Available      bool            `json:"available"`
}

type DoctorResponse struct {
	ID                uuid.UUID       `json:"id"`
	Email             string          `json:"email"`
	FullName          string          `json:"full_name"`
	LicenseNumber     string          `json:"license_number"`
	Specialization    string          `json:"specialization"`
	Degree            string          `json:"degree,omitempty"`
	Experience        string          `json:"experience,omitempty"`
	Biography         string          `json:"biography,omitempty"`
	Address           string          `json:"address,omitempty"`
	Fees              decimal.Decimal `json:"fees"`
	WorkingHoursStart string          `json:"working_hours_start"`
	WorkingHoursEnd   string          `json:"working_hours_end"`
	SlotMinutes       int             `json:"slot_minutes"`
	Available         bool            `json:"available"`
	IsActive          *bool           `json:"is_active"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
