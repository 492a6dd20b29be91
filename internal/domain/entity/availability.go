package entity

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SlotReservation is one occupied (doctor, date, time) triple. The unique
// index is what prevents two live appointments on the same slot.
type SlotReservation struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DoctorID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_slot_reservations_slot,priority:1" json:"doctor_id"`
	SlotDate      SlotDate  `gorm:"type:date;not null;uniqueIndex:idx_slot_reservations_slot,priority:2" json:"slot_date"`
	SlotTime      SlotTime  `gorm:"type:varchar(5);not null;uniqueIndex:idx_slot_reservations_slot,priority:3" json:"slot_time"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"appointment_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SlotReservation) TableName() string {
	return "slot_reservations"
}

func (r *SlotReservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// AvailabilityRecord is a read-only snapshot of a doctor's occupied slots.
// The slot_reservations table is the only writable copy.
type AvailabilityRecord struct {
	DoctorID uuid.UUID

	booked map[SlotDate]map[SlotTime]struct{}
}

func NewAvailabilityRecord(doctorID uuid.UUID, reservations []SlotReservation) *AvailabilityRecord {
	r := &AvailabilityRecord{
		DoctorID: doctorID,
		booked:   make(map[SlotDate]map[SlotTime]struct{}),
	}
	for _, res := range reservations {
		day, ok := r.booked[res.SlotDate]
		if !ok {
			day = make(map[SlotTime]struct{})
			r.booked[res.SlotDate] = day
		}
		day[res.SlotTime] = struct{}{}
	}
	return r
}

func (r *AvailabilityRecord) IsBooked(d SlotDate, t SlotTime) bool {
	_, ok := r.booked[d][t]
	return ok
}

// BookedOn returns the occupied times of one day in ascending order.
func (r *AvailabilityRecord) BookedOn(d SlotDate) []SlotTime {
	times := make([]SlotTime, 0, len(r.booked[d]))
	for t := range r.booked[d] {
		times = append(times, t)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times
}

// SlotsBooked renders the record in its external form: date key to
// 12-hour slot labels.
func (r *AvailabilityRecord) SlotsBooked() map[string][]string {
	out := make(map[string][]string, len(r.booked))
	for d := range r.booked {
		times := r.BookedOn(d)
		if len(times) == 0 {
			continue
		}
		labels := make([]string, len(times))
		for i, t := range times {
			labels[i] = t.Label()
		}
		out[d.Key()] = labels
	}
	return out
}
