package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAvailabilityRecordSnapshot(t *testing.T) {
	day := SlotDate{2025, time.March, 5}
	rec := NewAvailabilityRecord(uuid.New(), []SlotReservation{
		{SlotDate: day, SlotTime: NewSlotTime(11, 0)},
		{SlotDate: day, SlotTime: NewSlotTime(10, 30)},
	})

	assert.True(t, rec.IsBooked(day, NewSlotTime(10, 30)))
	assert.False(t, rec.IsBooked(day, NewSlotTime(12, 0)))
	assert.False(t, rec.IsBooked(day.AddDays(1), NewSlotTime(10, 30)))
	assert.Equal(t, []SlotTime{NewSlotTime(10, 30), NewSlotTime(11, 0)}, rec.BookedOn(day))
	assert.Equal(t, map[string][]string{"5_3_2025": {"10:30 AM", "11:00 AM"}}, rec.SlotsBooked())
}

func TestEmptyAvailabilityRecord(t *testing.T) {
	rec := NewAvailabilityRecord(uuid.New(), nil)
	day := SlotDate{2025, time.March, 5}

	assert.False(t, rec.IsBooked(day, NewSlotTime(10, 30)))
	assert.Empty(t, rec.BookedOn(day))
	assert.NotNil(t, rec.BookedOn(day))
	assert.Empty(t, rec.SlotsBooked())
}
