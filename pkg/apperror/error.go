package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies a failure so callers can branch on the category
// instead of matching message strings.
type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindStorage        Kind = "storage"
	KindDatabase       Kind = "database"
	KindInternal       Kind = "internal"
)

type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(kind Kind, code int, message string, err error) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func Unauthenticated(message string) *AppError {
	return New(KindAuthentication, http.StatusUnauthorized, message, nil)
}

func Validation(message string) *AppError {
	return New(KindValidation, http.StatusBadRequest, message, nil)
}

func NotFound(message string) *AppError {
	return New(KindNotFound, http.StatusNotFound, message, nil)
}

func Storage(message string, err error) *AppError {
	return New(KindStorage, http.StatusInternalServerError, message, err)
}

func Database(message string, err error) *AppError {
	return New(KindDatabase, http.StatusInternalServerError, message, err)
}

func Internal(err error) *AppError {
	return New(KindInternal, http.StatusInternalServerError, "Internal Server Error", err)
}

// KindOf extracts the error kind, or KindInternal for plain errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
