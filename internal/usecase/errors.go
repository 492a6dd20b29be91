package usecase

import "go-medical-booking/pkg/apperror"

var (
	ErrEmailAlreadyExists   = apperror.Conflict("email already exists")
	ErrLicenseAlreadyExists = apperror.Conflict("license number already exists")
	ErrInvalidCredentials   = apperror.Unauthenticated("invalid email or password")
	ErrInvalidToken         = apperror.Unauthenticated("invalid or expired token")
	ErrTokenRevoked         = apperror.Unauthenticated("token has been revoked")
	ErrAccountInactive      = apperror.Authorization("account is inactive")
	ErrUserNotFound         = apperror.NotFound("user not found")
	ErrInvalidDateFormat    = apperror.Validation("invalid date format, use YYYY-MM-DD")
	ErrInvalidOldPassword   = apperror.Validation("invalid old password")
	ErrAuditLogNotFound     = apperror.NotFound("audit log not found")
)

var (
	ErrPatientOnly            = apperror.Authorization("only patients can book appointments")
	ErrDoctorOnly             = apperror.Authorization("only the treating doctor can complete an appointment")
	ErrPaymentUnavailable     = apperror.ExternalService("payment processor unavailable")
	ErrPaymentOrderNotFound   = apperror.NotFound("payment order not found")
	ErrInvalidPaymentSig      = apperror.Validation("invalid payment signature")
	ErrPaymentOrderMismatch   = apperror.Validation("payment order does not belong to this appointment")
	ErrAppointmentStateChange = apperror.InvalidState("appointment changed concurrently, retry")
)
