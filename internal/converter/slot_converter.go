package converter

import (
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/calendar"
)

// SlotDaysToResponses converts generated calendar days to their DTOs. Days
// without free slots keep an empty, non-nil slot list.
func SlotDaysToResponses(days []calendar.Day) []dto.SlotDayResponse {
	responses := make([]dto.SlotDayResponse, len(days))
	for i, day := range days {
		slots := make([]dto.SlotResponse, len(day.Slots))
		for j, s := range day.Slots {
			slots[j] = dto.SlotResponse{
				Time:        s.Time.String(),
				LegacyLabel: s.Time.Label(),
				StartsAt:    s.At,
			}
		}
		responses[i] = dto.SlotDayResponse{
			Date:    day.Date.String(),
			DateKey: day.Date.Key(),
			Slots:   slots,
		}
	}
	return responses
}
