// Package calendar builds the list of bookable slots a patient is offered.
// The result is advisory; the reservation table decides who gets a slot.
package calendar

import (
	"time"

	"go-medical-booking/internal/domain/entity"
)

// WindowDays is how many calendar days, starting today, are offered.
const WindowDays = 7

// BookedChecker reports whether a slot is already taken.
type BookedChecker interface {
	IsBooked(date entity.SlotDate, at entity.SlotTime) bool
}

// Slot is one bookable start time.
type Slot struct {
	At   time.Time
	Time entity.SlotTime
}

// Day groups the free slots of one calendar day. Days with no free slots
// are still returned.
type Day struct {
	Date  entity.SlotDate
	Slots []Slot
}

// Generate returns WindowDays buckets starting at now's calendar day, in
// now's location. Every slot start lies on the grid of hours, the closing
// time itself included, and booked slots are left out.
//
// Today starts at the next whole hour once the clinic has opened, rounded
// to :30 when the current minute is past the half hour. This rounding
// applies to the hour and minute independently, so at 14:45 the first slot
// is 15:30. A result off the doctor's slot grid moves forward onto it.
func Generate(hours entity.WorkingHours, now time.Time, booked BookedChecker) []Day {
	step := hours.SlotMinutes
	if step <= 0 {
		step = entity.DefaultSlotMinutes
	}

	today := entity.NewSlotDate(now)
	days := make([]Day, 0, WindowDays)
	for i := 0; i < WindowDays; i++ {
		date := today.AddDays(i)
		start := hours.Start
		if i == 0 {
			start = todayStart(hours, now, step)
		}

		day := Day{Date: date, Slots: []Slot{}}
		for t := start; t <= hours.End; t = t.Add(step) {
			if booked != nil && booked.IsBooked(date, t) {
				continue
			}
			day.Slots = append(day.Slots, Slot{At: date.At(t, now.Location()), Time: t})
		}
		days = append(days, day)
	}
	return days
}

func todayStart(hours entity.WorkingHours, now time.Time, step int) entity.SlotTime {
	hour := hours.Start.Hour()
	if now.Hour() > hour {
		hour = now.Hour() + 1
	}
	minute := 0
	if now.Minute() > 30 {
		minute = 30
	}
	start := entity.NewSlotTime(hour, minute)
	if start < hours.Start {
		return hours.Start
	}
	if off := int(start-hours.Start) % step; off != 0 {
		start = start.Add(step - off)
	}
	return start
}
