package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateKeyRoundTrip(t *testing.T) {
	d := SlotDate{Year: 2025, Month: time.March, Day: 5}
	assert.Equal(t, "5_3_2025", d.Key())
	assert.Equal(t, "2025-03-05", d.String())

	parsed, err := ParseDateKey("5_3_2025")
	require.NoError(t, err)
	assert.Equal(t, d, parsed)

	iso, err := ParseSlotDate("2025-03-05")
	require.NoError(t, err)
	assert.Equal(t, d, iso)
}

func TestParseDateKeyRejectsMalformed(t *testing.T) {
	for _, key := range []string{"", "5-3-2025", "5_3", "32_1_2025", "29_2_2025", "a_b_c", "0_1_2025"} {
		_, err := ParseDateKey(key)
		assert.Error(t, err, key)
	}
}

func TestAddDaysRollsOver(t *testing.T) {
	assert.Equal(t, SlotDate{Year: 2026, Month: time.January, Day: 2}, SlotDate{Year: 2025, Month: time.December, Day: 29}.AddDays(4))
	assert.Equal(t, SlotDate{Year: 2024, Month: time.February, Day: 29}, SlotDate{Year: 2024, Month: time.February, Day: 28}.AddDays(1))
}

func TestParseSlotTimeAcceptsBothEncodings(t *testing.T) {
	tests := []struct {
		in   string
		want SlotTime
	}{
		{"10:30", NewSlotTime(10, 30)},
		{"10:30 AM", NewSlotTime(10, 30)},
		{"09:00 PM", NewSlotTime(21, 0)},
		{"9:00 pm", NewSlotTime(21, 0)},
		{"12:00 PM", NewSlotTime(12, 0)},
		{"00:00", 0},
	}
	for _, tt := range tests {
		got, err := ParseSlotTime(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseSlotTime("25:00")
	assert.Error(t, err)
}

func TestSlotTimeEncodings(t *testing.T) {
	st := NewSlotTime(21, 0)
	assert.Equal(t, "21:00", st.String())
	assert.Equal(t, "09:00 PM", st.Label())
	assert.Equal(t, "10:30 AM", NewSlotTime(10, 30).Label())
}

func TestSlotTypesScan(t *testing.T) {
	var d SlotDate
	require.NoError(t, d.Scan("2025-03-05"))
	assert.Equal(t, "5_3_2025", d.Key())
	require.NoError(t, d.Scan([]byte("2025-03-06T00:00:00Z")))
	assert.Equal(t, "6_3_2025", d.Key())
	require.NoError(t, d.Scan(time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "7_3_2025", d.Key())

	var st SlotTime
	require.NoError(t, st.Scan("14:30"))
	assert.Equal(t, NewSlotTime(14, 30), st)
	assert.Error(t, st.Scan(42))
}

func TestSlotTypesJSON(t *testing.T) {
	payload := struct {
		Date SlotDate `json:"date"`
		Time SlotTime `json:"time"`
	}{SlotDate{2025, time.March, 5}, NewSlotTime(10, 30)}

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-03-05","time":"10:30"}`, string(raw))
}

func TestWorkingHoursContains(t *testing.T) {
	h := WorkingHours{Start: NewSlotTime(10, 0), End: NewSlotTime(21, 0), SlotMinutes: 30}

	assert.True(t, h.Contains(NewSlotTime(10, 0)))
	assert.True(t, h.Contains(NewSlotTime(21, 0)), "closing time is the last bookable slot")
	assert.False(t, h.Contains(NewSlotTime(21, 30)))
	assert.False(t, h.Contains(NewSlotTime(9, 30)))
	assert.False(t, h.Contains(NewSlotTime(10, 15)), "off-grid")
	assert.NoError(t, h.Validate())
	assert.Error(t, WorkingHours{Start: NewSlotTime(12, 0), End: NewSlotTime(10, 0), SlotMinutes: 30}.Validate())
	assert.Error(t, WorkingHours{Start: NewSlotTime(10, 15), End: NewSlotTime(21, 0), SlotMinutes: 30}.Validate(), "start off the grid")
	assert.Error(t, WorkingHours{Start: NewSlotTime(10, 0), End: NewSlotTime(20, 45), SlotMinutes: 30}.Validate(), "end off the grid")
	assert.NoError(t, WorkingHours{Start: NewSlotTime(9, 0), End: NewSlotTime(17, 0), SlotMinutes: 60}.Validate())
}
