package converter

import (
	"time"

	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
)

// PatientProfileToResponse merges a patient's profile and user account.
func PatientProfileToResponse(profile *entity.PatientProfile, user *entity.User) *dto.PatientResponse {
	if profile == nil || user == nil {
		return nil
	}

	return &dto.PatientResponse{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		PhoneNumber: profile.PhoneNumber,
		DateOfBirth: formatDate(profile.DateOfBirth),
		Gender:      profile.Gender,
		Address:     profile.Address,
		IsActive:    user.IsActive,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   profile.UpdatedAt,
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
