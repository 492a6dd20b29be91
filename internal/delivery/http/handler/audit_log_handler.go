package handler

import (
	"net/http"
	"strconv"

	"go-medical-booking/internal/domain/repository"
	"go-medical-booking/internal/usecase"
	"go-medical-booking/pkg/response"

	"github.com/gorilla/mux"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
	}
}

func (h *AuditLogHandler) GetAuditLog(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid audit log ID", nil)
		return
	}

	auditLog, err := h.auditLogUsecase.GetAuditLog(r.Context(), id)
	if err != nil {
		response.FromError(w, err, "Failed to get audit log")
		return
	}

	response.Success(w, http.StatusOK, "Audit log retrieved successfully", auditLog)
}

// GetAllAuditLogs lists audit entries, newest first. Query: action, page, limit.
func (h *AuditLogHandler) GetAllAuditLogs(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	auditLogs, err := h.auditLogUsecase.GetAllAuditLogs(r.Context(), repository.AuditLogFilter{
		Action: r.URL.Query().Get("action"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		response.FromError(w, err, "Failed to get audit logs")
		return
	}

	totalPages := int((auditLogs.Total + int64(limit) - 1) / int64(limit))
	response.SuccessWithMeta(w, http.StatusOK, "Audit logs retrieved successfully", auditLogs.Logs, &response.Meta{
		Page:       page,
		Limit:      limit,
		Total:      auditLogs.Total,
		TotalPages: totalPages,
	})
}
