package entity

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultSlotMinutes is the fixed length of every bookable slot.
const DefaultSlotMinutes = 30

const (
	isoDateLayout     = "2006-01-02"
	clockLayout       = "15:04"
	legacyClockLayout = "03:04 PM"
)

// SlotDate is a calendar day with no time zone attached.
type SlotDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewSlotDate returns the calendar day of t in t's location.
func NewSlotDate(t time.Time) SlotDate {
	y, m, d := t.Date()
	return SlotDate{Year: y, Month: m, Day: d}
}

// ParseDateKey parses the legacy "{day}_{month}_{year}" key, e.g. "5_3_2025".
func ParseDateKey(key string) (SlotDate, error) {
	parts := strings.Split(key, "_")
	if len(parts) != 3 {
		return SlotDate{}, fmt.Errorf("invalid date key %q", key)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return SlotDate{}, fmt.Errorf("invalid date key %q", key)
		}
		nums[i] = n
	}
	d := SlotDate{Year: nums[2], Month: time.Month(nums[1]), Day: nums[0]}
	if !d.valid() {
		return SlotDate{}, fmt.Errorf("invalid date key %q", key)
	}
	return d, nil
}

// ParseSlotDate accepts either an ISO date ("2025-03-05") or a legacy date key.
func ParseSlotDate(s string) (SlotDate, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(isoDateLayout, s); err == nil {
		return NewSlotDate(t), nil
	}
	return ParseDateKey(s)
}

func (d SlotDate) valid() bool {
	if d.Month < time.January || d.Month > time.December || d.Day < 1 || d.Year < 1 {
		return false
	}
	return NewSlotDate(d.Time(time.UTC)) == d
}

// Time returns midnight of d in loc.
func (d SlotDate) Time(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// At returns the instant of clock time t on day d in loc.
func (d SlotDate) At(t SlotTime, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, t.Hour(), t.Minute(), 0, 0, loc)
}

// AddDays moves d by n calendar days, rolling months and years as needed.
func (d SlotDate) AddDays(n int) SlotDate {
	return NewSlotDate(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}

func (d SlotDate) Before(other SlotDate) bool {
	return d.Time(time.UTC).Before(other.Time(time.UTC))
}

func (d SlotDate) IsZero() bool {
	return d == SlotDate{}
}

// Key is the legacy external encoding: day_month_year without zero padding.
func (d SlotDate) Key() string {
	return fmt.Sprintf("%d_%d_%d", d.Day, int(d.Month), d.Year)
}

func (d SlotDate) String() string {
	return d.Time(time.UTC).Format(isoDateLayout)
}

func (d SlotDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *SlotDate) UnmarshalText(b []byte) error {
	parsed, err := ParseSlotDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer
func (d SlotDate) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan implements sql.Scanner
func (d *SlotDate) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = SlotDate{}
		return nil
	case time.Time:
		*d = NewSlotDate(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into SlotDate", value)
	}
}

func (d *SlotDate) scanString(s string) error {
	if len(s) > len(isoDateLayout) {
		s = s[:len(isoDateLayout)]
	}
	t, err := time.Parse(isoDateLayout, s)
	if err != nil {
		return fmt.Errorf("scan SlotDate: %w", err)
	}
	*d = NewSlotDate(t)
	return nil
}

// SlotTime is a clock time expressed as minutes since midnight.
type SlotTime int

func NewSlotTime(hour, minute int) SlotTime {
	return SlotTime(hour*60 + minute)
}

// SlotTimeOf returns the clock time of t in t's location, truncated to the minute.
func SlotTimeOf(t time.Time) SlotTime {
	return NewSlotTime(t.Hour(), t.Minute())
}

// ParseSlotTime accepts the canonical "15:04" form and the legacy 12-hour
// label ("10:30 AM", "9:00 PM").
func ParseSlotTime(s string) (SlotTime, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range []string{clockLayout, legacyClockLayout, "3:04 PM", "03:04PM", "3:04PM"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewSlotTime(t.Hour(), t.Minute()), nil
		}
	}
	return 0, fmt.Errorf("invalid slot time %q", s)
}

func (t SlotTime) Hour() int   { return int(t) / 60 }
func (t SlotTime) Minute() int { return int(t) % 60 }

// Add returns t shifted by minutes. The result may pass midnight; callers
// compare against a closing time before using it.
func (t SlotTime) Add(minutes int) SlotTime {
	return t + SlotTime(minutes)
}

// String is the canonical 24-hour encoding, e.g. "09:30".
func (t SlotTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Label is the legacy 12-hour encoding, e.g. "09:30 AM".
func (t SlotTime) Label() string {
	return time.Date(2000, 1, 1, t.Hour(), t.Minute(), 0, 0, time.UTC).Format(legacyClockLayout)
}

func (t SlotTime) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *SlotTime) UnmarshalText(b []byte) error {
	parsed, err := ParseSlotTime(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer
func (t SlotTime) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan implements sql.Scanner
func (t *SlotTime) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time:
		*t = SlotTimeOf(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into SlotTime", value)
	}
	parsed, err := ParseSlotTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// WorkingHours describes when a doctor accepts appointments. End is the
// start of the last bookable slot.
type WorkingHours struct {
	Start       SlotTime
	End         SlotTime
	SlotMinutes int
}

// Contains reports whether t is a slot start on the working-hours grid.
func (h WorkingHours) Contains(t SlotTime) bool {
	if t < h.Start || t > h.End {
		return false
	}
	step := h.SlotMinutes
	if step <= 0 {
		step = DefaultSlotMinutes
	}
	return int(t-h.Start)%step == 0
}

func (h WorkingHours) Validate() error {
	if h.Start < 0 || h.End >= NewSlotTime(24, 0) {
		return fmt.Errorf("working hours must be within one day")
	}
	if h.End < h.Start {
		return fmt.Errorf("working hours end %s is before start %s", h.End, h.Start)
	}
	if h.SlotMinutes <= 0 {
		return fmt.Errorf("slot length must be positive")
	}
	if int(h.Start)%h.SlotMinutes != 0 || int(h.End)%h.SlotMinutes != 0 {
		return fmt.Errorf("working hours %s-%s must fall on the %d-minute slot grid", h.Start, h.End, h.SlotMinutes)
	}
	return nil
}
