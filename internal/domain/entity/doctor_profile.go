package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DoctorProfile holds the practitioner data the booking flow depends on:
// working hours, consultation fee and the admin-controlled availability flag.
type DoctorProfile struct {
	UserID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"user_id"`
	LicenseNumber     string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"license_number"`
	Specialization    string          `gorm:"type:varchar(100);not null;index" json:"specialization"`
	Degree            string          `gorm:"type:varchar(100)" json:"degree,omitempty"`
	Experience        string          `gorm:"type:varchar(50)" json:"experience,omitempty"`
	Biography         string          `gorm:"type:text" json:"biography,omitempty"`
	Address           string          `gorm:"type:text" json:"address,omitempty"`
	Fees              decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"fees"`
	WorkingHoursStart SlotTime        `gorm:"type:varchar(5);not null" json:"working_hours_start"`
	WorkingHoursEnd   SlotTime        `gorm:"type:varchar(5);not null" json:"working_hours_end"`
	SlotMinutes       int             `gorm:"not null" json:"slot_minutes"`
	Available         *bool           `gorm:"not null;default:true;index" json:"available"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

func (p *DoctorProfile) WorkingHours() WorkingHours {
	return WorkingHours{
		Start:       p.WorkingHoursStart,
		End:         p.WorkingHoursEnd,
		SlotMinutes: p.SlotMinutes,
	}
}

// IsAvailable reports whether the doctor accepts new bookings. An inactive
// user account is never available.
func (p *DoctorProfile) IsAvailable() bool {
	if p.Available != nil && !*p.Available {
		return false
	}
	if p.User.ID != uuid.Nil && !p.User.Active() {
		return false
	}
	return true
}
