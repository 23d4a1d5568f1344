package employee

import (
	"errors"
	"strings"

	employeeerrors "go-directory/internal/employee/errors"
	"go-directory/internal/shared/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const emailConstraint = "uq_employees_email"

// mapRepositoryError classifies every store error; anything not recognised
// is a STORE_ERROR carrying failMsg and the cause.
func mapRepositoryError(err error, failMsg string) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperror.MapValidationError(verrs)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			if pgErr.ConstraintName == emailConstraint {
				return employeeerrors.ErrEmployeeAlreadyExists
			}
		case "23502", "23514":
			return employeeerrors.ErrInvalidEmployee.WithCause(err)
		case "22P02":
			return employeeerrors.ErrEmployeeNotFound
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, emailConstraint) {
		return employeeerrors.ErrEmployeeAlreadyExists
	}

	return apperror.StoreFailure(err, failMsg)
}
