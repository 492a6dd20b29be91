package converter

import (
	"go-medical-booking/internal/delivery/dto"
	"go-medical-booking/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse
// DTO. Patient and doctor names are filled when the relations are loaded.
func AppointmentToResponse(appt *entity.Appointment) *dto.AppointmentResponse {
	if appt == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:              appt.ID,
		BookingCode:     appt.BookingCode,
		PatientID:       appt.PatientID,
		DoctorID:        appt.DoctorID,
		SlotDate:        appt.SlotDate.String(),
		SlotDateKey:     appt.SlotDate.Key(),
		SlotTime:        appt.SlotTime.String(),
		LegacyLabel:     appt.SlotTime.Label(),
		Amount:          appt.Amount,
		Currency:        appt.Currency,
		Status:          string(appt.Status()),
		Paid:            appt.Paid,
		PaymentOrderRef: appt.PaymentOrderRef,
		CancelledBy:     appt.CancelledBy,
		CancelledAt:     appt.CancelledAt,
		CompletedAt:     appt.CompletedAt,
		PaidAt:          appt.PaidAt,
		CreatedAt:       appt.CreatedAt,
	}

	if appt.Patient != nil {
		response.PatientName = appt.Patient.FullName
	}
	if appt.Doctor != nil {
		response.DoctorName = appt.Doctor.User.FullName
		response.Specialization = appt.Doctor.Specialization
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appts []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appts))
	for i := range appts {
		responses[i] = *AppointmentToResponse(&appts[i])
	}
	return responses
}
