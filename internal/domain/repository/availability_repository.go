package repository

import (
	"go-medical-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvailabilityRepository owns the slot_reservations table, the
// authoritative record of occupied slots.
type AvailabilityRepository interface {
	IsBooked(db *gorm.DB, doctorID uuid.UUID, date entity.SlotDate, at entity.SlotTime) (bool, error)
	// Reserve inserts the reservation unless the slot is taken. It reports
	// false, with no error, when another reservation already holds the slot.
	Reserve(db *gorm.DB, reservation *entity.SlotReservation) (bool, error)
	// Release deletes the reservation. Releasing a free slot affects 0 rows
	// and is not an error.
	Release(db *gorm.DB, doctorID uuid.UUID, date entity.SlotDate, at entity.SlotTime) (int64, error)
	Load(db *gorm.DB, doctorID uuid.UUID, from, to entity.SlotDate) (*entity.AvailabilityRecord, error)
}
