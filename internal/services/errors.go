package services

import "errors"

// ErrorCode classifies a service failure so transport layers can map it
// to a status without inspecting messages.
type ErrorCode string

const (
	ErrorMissingField       ErrorCode = "missing_field"
	ErrorInvalidValue       ErrorCode = "invalid_value"
	ErrorNotFound           ErrorCode = "not_found"
	ErrorDuplicateID        ErrorCode = "duplicate_identifier"
	ErrorStorageUnavailable ErrorCode = "storage_unavailable"
	ErrorUnauthorized       ErrorCode = "unauthorized"
	ErrorConflict           ErrorCode = "conflict"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewMissingFieldError(msg string) error {
	return &ServiceError{Code: ErrorMissingField, Message: msg}
}

func NewInvalidValueError(msg string) error {
	return &ServiceError{Code: ErrorInvalidValue, Message: msg}
}

func NewNotFoundError(msg string) error { return &ServiceError{Code: ErrorNotFound, Message: msg} }

func NewDuplicateIDError(msg string) error {
	return &ServiceError{Code: ErrorDuplicateID, Message: msg}
}

func NewStorageUnavailableError(msg string) error {
	return &ServiceError{Code: ErrorStorageUnavailable, Message: msg}
}

func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func NewConflictError(msg string) error { return &ServiceError{Code: ErrorConflict, Message: msg} }

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
