package apiclient

import (
	"errors"
	"fmt"

	"go-directory/internal/form"
)

// Codes carried in the error envelope of the directory API.
const (
	codeValidation = "VALIDATION_ERROR"
	codeNotFound   = "NOT_FOUND"
	codeConflict   = "CONFLICT"
	codeStore      = "STORE_ERROR"
)

var (
	ErrNotFound = errors.New("employee not found")
	ErrConflict = errors.New("employee conflict")
)

// APIError is any failure reported by the directory API.
type APIError struct {
	Status  int
	Code    string
	Message string
	Detail  string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == codeNotFound
	case ErrConflict:
		return e.Code == codeConflict
	}
	return false
}

type ValidationError struct {
	APIError
	Violations form.Violations
}

type StoreError struct {
	APIError
}
