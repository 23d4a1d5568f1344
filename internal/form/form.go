// Package form pre-checks employee form input before it is sent to the API.
// Passing here does not guarantee the server accepts the record: uniqueness
// is only known to the store.
package form

import (
	"errors"
	"strings"
	"sync"

	"go-directory/internal/shared/validation"

	"github.com/go-playground/validator/v10"
)

// Input is the raw form as typed by the user.
type Input struct {
	Name     string `json:"name" validate:"min=3"`
	Phone    string `json:"phone" validate:"min=10"`
	Email    string `json:"email" validate:"email"`
	Address  string `json:"address" validate:"min=10"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
}

// Values is accepted input, trimmed.
type Values Input

type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations lists rejected fields in form order.
type Violations []Violation

func (v Violations) Error() string {
	msgs := make([]string, len(v))
	for i, viol := range v {
		msgs[i] = viol.Message
	}
	return strings.Join(msgs, "; ")
}

// For returns the message for field, or "".
func (v Violations) For(field string) string {
	for _, viol := range v {
		if viol.Field == field {
			return viol.Message
		}
	}
	return ""
}

var messages = map[string]string{
	"name":     "Name must be at least 3 characters",
	"phone":    "Phone must be at least 10 characters",
	"email":    "Invalid email address",
	"address":  "Address must be at least 10 characters",
	"imageUrl": "Invalid URL",
}

var (
	once   sync.Once
	engine *validator.Validate
)

func formEngine() *validator.Validate {
	once.Do(func() {
		engine = validator.New()
		engine.RegisterTagNameFunc(validation.JSONTagName)
	})
	return engine
}

// Validate trims every field and checks the form rules. On rejection the
// error is Violations.
func Validate(in Input) (Values, error) {
	normalized := Input{
		Name:     strings.TrimSpace(in.Name),
		Phone:    strings.TrimSpace(in.Phone),
		Email:    strings.TrimSpace(in.Email),
		Address:  strings.TrimSpace(in.Address),
		ImageURL: strings.TrimSpace(in.ImageURL),
	}

	err := formEngine().Struct(normalized)
	if err == nil {
		return Values(normalized), nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Values{}, err
	}

	violations := make(Violations, 0, len(verrs))
	for _, fe := range verrs {
		violations = append(violations, Violation{Field: fe.Field(), Message: messages[fe.Field()]})
	}
	return Values{}, violations
}
