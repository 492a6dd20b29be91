package response

import (
	"encoding/json"
	"net/http"

	"go-medical-booking/pkg/apperror"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func Success(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	JSON(w, statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func SuccessWithMeta(w http.ResponseWriter, statusCode int, message string, data interface{}, meta *Meta) {
	JSON(w, statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

func Error(w http.ResponseWriter, statusCode int, message string, err interface{}) {
	JSON(w, statusCode, Response{
		Success: false,
		Message: message,
		Error:   err,
	})
}

func ValidationError(w http.ResponseWriter, errors interface{}) {
	JSON(w, http.StatusBadRequest, Response{
		Success: false,
		Message: "Validation failed",
		Error:   errors,
	})
}

func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	Error(w, http.StatusUnauthorized, message, nil)
}

func NotFound(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Error(w, http.StatusNotFound, message, nil)
}

func InternalServerError(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Internal server error"
	}
	Error(w, http.StatusInternalServerError, message, nil)
}

func Forbidden(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Forbidden"
	}
	Error(w, http.StatusForbidden, message, nil)
}

func Conflict(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Conflict"
	}
	Error(w, http.StatusConflict, message, nil)
}

// FromError writes the status matching err's apperror kind. Errors without a
// kind are reported as 500 with fallback as the message.
func FromError(w http.ResponseWriter, err error, fallback string) {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		Error(w, http.StatusBadRequest, err.Error(), apperror.KindValidation)
	case apperror.KindConflict:
		Error(w, http.StatusConflict, err.Error(), apperror.KindConflict)
	case apperror.KindNotFound:
		NotFound(w, err.Error())
	case apperror.KindAuthorization:
		Forbidden(w, err.Error())
	case apperror.KindUnauthenticated:
		Unauthorized(w, err.Error())
	case apperror.KindInvalidState:
		Error(w, http.StatusConflict, err.Error(), apperror.KindInvalidState)
	case apperror.KindExternalService:
		Error(w, http.StatusBadGateway, err.Error(), apperror.KindExternalService)
	default:
		InternalServerError(w, fallback)
	}
}
