package repository

import (
	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DoctorFilter narrows doctor listings. Zero values match everything.
type DoctorFilter struct {
	Name           string
	Specialization string
	AvailableOnly  bool
}

type DoctorProfileRepository interface {
	Create(db *gorm.DB, profile *entity.DoctorProfile) error
	FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.DoctorProfile, error)
	FindAll(db *gorm.DB, filter DoctorFilter) ([]entity.DoctorProfile, error)
	Update(db *gorm.DB, profile *entity.DoctorProfile) error
	SetAvailability(db *gorm.DB, userID uuid.UUID, available bool) (int64, error)
}
