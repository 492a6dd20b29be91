package repository

import (
	"go-medical-booking/internal/domain/entity"
	domainRepo "go-medical-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type availabilityRepository struct{}

func NewAvailabilityRepository() domainRepo.AvailabilityRepository {
	return &availabilityRepository{}
}

func (r *availabilityRepository) IsBooked(db *gorm.DB, doctorID uuid.UUID, date entity.SlotDate, at entity.SlotTime) (bool, error) {
	var count int64
	err := db.Model(&entity.SlotReservation{}).
		Where("doctor_id = ? AND slot_date = ? AND slot_time = ?", doctorID, date, at).
		Count(&count).Error
	return count > 0, err
}

// Reserve relies on the unique slot index: a concurrent insert for the same
// slot waits for the first transaction and then inserts nothing.
func (r *availabilityRepository) Reserve(db *gorm.DB, reservation *entity.SlotReservation) (bool, error) {
	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(reservation)
	if result.Error != nil {
		if domainRepo.IsUniqueViolation(result.Error) {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *availabilityRepository) Release(db *gorm.DB, doctorID uuid.UUID, date entity.SlotDate, at entity.SlotTime) (int64, error) {
	result := db.
		Where("doctor_id = ? AND slot_date = ? AND slot_time = ?", doctorID, date, at).
		Delete(&entity.SlotReservation{})
	return result.RowsAffected, result.Error
}

func (r *availabilityRepository) Load(db *gorm.DB, doctorID uuid.UUID, from, to entity.SlotDate) (*entity.AvailabilityRecord, error) {
	var reservations []entity.SlotReservation
	err := db.
		Where("doctor_id = ? AND slot_date >= ? AND slot_date <= ?", doctorID, from, to).
		Order("slot_date ASC, slot_time ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, err
	}
	return entity.NewAvailabilityRecord(doctorID, reservations), nil
}
