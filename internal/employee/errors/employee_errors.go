package employeeerrors

import (
	"go-directory/internal/shared/apperror"
	"net/http"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee with the same email already exists",
		http.StatusConflict,
	)
	ErrInvalidEmployee = apperror.New(
		apperror.CodeValidationError,
		"Employee data violates store constraints",
		http.StatusBadRequest,
	)
)

// Store failure messages, one per operation.
const (
	MsgCreateFailed = "Error creating employee"
	MsgListFailed   = "Error fetching employees"
	MsgGetFailed    = "Error fetching employee"
	MsgUpdateFailed = "Error updating employee"
	MsgDeleteFailed = "Error deleting employee"
)
