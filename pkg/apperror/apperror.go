package apperror

import "errors"

// Kind classifies an error so the delivery layer can pick a status code
// without knowing every domain sentinel.
type Kind string

const (
	KindValidation      Kind = "validation"
	KindConflict        Kind = "conflict"
	KindNotFound        Kind = "not_found"
	KindAuthorization   Kind = "authorization"
	KindUnauthenticated Kind = "unauthenticated"
	KindInvalidState    Kind = "invalid_state"
	KindExternalService Kind = "external_service"
)

// Kind sentinels. errors.Is(err, ErrConflict) is true for every conflict error.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrAuthorization   = &Error{Kind: KindAuthorization}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrInvalidState    = &Error{Kind: KindInvalidState}
	ErrExternalService = &Error{Kind: KindExternalService}
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches kind sentinels (no message) by kind, and wrapped copies of a
// domain sentinel by kind and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind != e.Kind {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// Wrap returns a copy of e carrying cause. The copy still matches e's kind.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: cause}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Validation(message string) *Error      { return New(KindValidation, message) }
func Conflict(message string) *Error        { return New(KindConflict, message) }
func NotFound(message string) *Error        { return New(KindNotFound, message) }
func Authorization(message string) *Error   { return New(KindAuthorization, message) }
func Unauthenticated(message string) *Error { return New(KindUnauthenticated, message) }
func InvalidState(message string) *Error    { return New(KindInvalidState, message) }
func ExternalService(message string) *Error { return New(KindExternalService, message) }

// KindOf reports the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
