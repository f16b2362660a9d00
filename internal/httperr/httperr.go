package httperr

import (
	"fmt"
	"net/http"
)

// Kind is the client-facing error type name written into the response body
// and the error log.
type Kind string

const (
	KindMissingToken          Kind = "MissingToken"
	KindMalformedToken        Kind = "MalformedToken"
	KindInvalidOrExpiredToken Kind = "InvalidOrExpiredToken"
	KindRevokedToken          Kind = "RevokedToken"
	KindSessionInvalidated    Kind = "SessionInvalidated"
	KindForbidden             Kind = "Forbidden"
	KindNotFound              Kind = "NotFound"
	KindBadCredential         Kind = "BadCredential"
	KindDuplicateRecord       Kind = "DuplicateRecord"
	KindValidationError       Kind = "ValidationError"
	KindUnclassified          Kind = "UnclassifiedServerError"
)

type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) Status() int {
	switch e.Kind {
	case KindMissingToken, KindMalformedToken, KindInvalidOrExpiredToken,
		KindRevokedToken, KindSessionInvalidated, KindBadCredential:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateRecord:
		return http.StatusConflict
	case KindValidationError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
