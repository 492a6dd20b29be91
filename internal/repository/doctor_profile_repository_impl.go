package repository

import (
	"errors"
	"strings"

	"go-medical-booking/internal/domain/entity"
	domainRepo "go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorProfileRepository struct{}

func NewDoctorProfileRepository() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{}
}

func (r *doctorProfileRepository) Create(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Omit("User").Create(profile).Error
}

func (r *doctorProfileRepository) FindByUserID(db *gorm.DB, doctorID uuid.UUID) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := db.Preload("User").Where("user_id = ?", doctorID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// FindAll lists doctors whose user account is active, applying the optional
// name and specialization filters case-insensitively.
func (r *doctorProfileRepository) FindAll(db *gorm.DB, filter domainRepo.DoctorFilter) ([]entity.DoctorProfile, error) {
	var profiles []entity.DoctorProfile
	query := db.
		Joins("JOIN users ON users.id = doctor_profiles.user_id").
		Where("users.is_active = ?", true)

	if filter.Name != "" {
		query = query.Where("LOWER(users.full_name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.Specialization != "" {
		query = query.Where("LOWER(doctor_profiles.specialization) LIKE ?", "%"+strings.ToLower(filter.Specialization)+"%")
	}
	if filter.AvailableOnly {
		query = query.Where("doctor_profiles.available = ?", true)
	}

	err := query.Preload("User").Order("users.full_name ASC").Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *doctorProfileRepository) Update(db *gorm.DB, profile *entity.DoctorProfile) error {
	return db.Omit("User").Save(profile).Error
}

func (r *doctorProfileRepository) SetAvailability(db *gorm.DB, doctorID uuid.UUID, available bool) (int64, error) {
	result := db.Model(&entity.DoctorProfile{}).
		Where("user_id = ?", doctorID).
		Update("available", available)
	return result.RowsAffected, result.Error
}
