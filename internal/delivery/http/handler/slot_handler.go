package handler

import (
	"net/http"

	"go-medical-booking/internal/usecase"
	"go-medical-booking/pkg/response"
)

type SlotHandler struct {
	slotUsecase usecase.SlotUsecase
}

func NewSlotHandler(slotUsecase usecase.SlotUsecase) *SlotHandler {
	return &SlotHandler{slotUsecase: slotUsecase}
}

// GetDoctorSlots lists the doctor's free slots for the coming week
// @Summary List available slots
// @Tags Doctors
// @Produce json
// @Param id path string true "Doctor ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /doctors/{id}/slots [get]
func (h *SlotHandler) GetDoctorSlots(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := uuidVar(w, r, "id", "doctor ID")
	if !ok {
		return
	}

	slots, err := h.slotUsecase.GetDoctorSlots(r.Context(), doctorID)
	if err != nil {
		response.FromError(w, err, "Failed to get slots")
		return
	}

	response.Success(w, http.StatusOK, "Slots retrieved successfully", slots)
}
