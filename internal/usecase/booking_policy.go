package usecase

import (
	"fmt"
	"strings"
	"time"

	"go-medical-booking/config"
	"go-medical-booking/internal/domain/entity"
)

// BookingPolicy holds the clinic-wide settings shared by the booking flows.
type BookingPolicy struct {
	Location     *time.Location
	Currency     string
	DefaultHours entity.WorkingHours

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func NewBookingPolicy(cfg config.BookingConfig) (BookingPolicy, error) {
	start, err := entity.ParseSlotTime(cfg.DefaultStart)
	if err != nil {
		return BookingPolicy{}, fmt.Errorf("default working hours start: %w", err)
	}
	end, err := entity.ParseSlotTime(cfg.DefaultEnd)
	if err != nil {
		return BookingPolicy{}, fmt.Errorf("default working hours end: %w", err)
	}
	slotMinutes := cfg.SlotMinutes
	if slotMinutes <= 0 {
		slotMinutes = entity.DefaultSlotMinutes
	}
	hours := entity.WorkingHours{Start: start, End: end, SlotMinutes: slotMinutes}
	if err := hours.Validate(); err != nil {
		return BookingPolicy{}, err
	}

	return BookingPolicy{
		Location:     cfg.Location(),
		Currency:     strings.ToLower(cfg.Currency),
		DefaultHours: hours,
	}, nil
}

// now returns the current time in the clinic's location.
func (p BookingPolicy) now() time.Time {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	if p.Now != nil {
		return p.Now().In(loc)
	}
	return time.Now().In(loc)
}
