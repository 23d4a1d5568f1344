package apperror

import (
	"errors"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FieldViolation describes one rejected field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func formatFieldName(s string) string {
	// recipient_phone / imageUrl -> recipient phone / image Url
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_':
			b.WriteRune(' ')
		case i > 0 && unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}

	caser := cases.Title(language.English)
	return caser.String(b.String())
}

func violationMessage(e validator.FieldError) string {
	field := formatFieldName(e.Field())
	switch e.Tag() {
	case "required":
		return RequiredField(field).Message
	case "min":
		return field + " must be at least " + e.Param() + " characters"
	case "email":
		return field + " must be a valid email address"
	case "url":
		return field + " must be a valid URL"
	default:
		return InvalidField(field).Message
	}
}

// MapValidationError converts validator errors into a VALIDATION_ERROR carrying
// every field violation, in struct field order. The message is the first one.
func MapValidationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		violations := make([]FieldViolation, 0, len(errs))
		for _, e := range errs {
			violations = append(violations, FieldViolation{
				Field:   e.Field(),
				Message: violationMessage(e),
			})
		}

		return New(
			CodeValidationError,
			violations[0].Message,
			http.StatusBadRequest,
		).WithDetails(violations)
	}

	return New(
		CodeValidationError,
		"Invalid input",
		http.StatusBadRequest,
	)
}
