package apperror

import "net/http"

var (
	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrInternal = New(
		CodeInternalError,
		"Internal server error",
		http.StatusInternalServerError,
	)

	ErrInvalidInput = New(
		CodeValidationError,
		"The provided input is invalid",
		http.StatusBadRequest,
	)

	ErrInvalidBody = New(
		CodeValidationError,
		"Invalid request body",
		http.StatusBadRequest,
	)
)

func RequiredField(field string) *AppError {
	return New(CodeValidationError, field+" is required", http.StatusBadRequest)
}

func InvalidField(field string) *AppError {
	return New(CodeValidationError, field+" is invalid", http.StatusBadRequest)
}

// StoreFailure classifies an unexpected persistence failure.
func StoreFailure(err error, message string) *AppError {
	return Wrap(err, CodeStoreError, message, http.StatusInternalServerError)
}
