// Package validation holds the validator engine behind the record store schema.
package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once   sync.Once
	engine *validator.Validate
)

// Engine returns the shared validator, reporting fields by their json name.
func Engine() *validator.Validate {
	once.Do(func() {
		engine = validator.New(validator.WithRequiredStructEnabled())
		engine.RegisterTagNameFunc(JSONTagName)
	})
	return engine
}

// Struct validates v against its `validate` tags.
func Struct(v any) error {
	return Engine().Struct(v)
}

// JSONTagName names a struct field after its json tag.
func JSONTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
