package httpapi

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/empire-go/internal/domain/shared"
)

// requestValidator checks decoded request bodies. Field names in errors are
// the JSON names the client sent.
var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// validateRequest reports the first failed rule as a ValidationError
func validateRequest(req interface{}) error {
	err := requestValidator.Struct(req)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		e := errs[0]
		rule := e.Tag()
		if e.Param() != "" {
			rule += "=" + e.Param()
		}
		return shared.NewValidationError(e.Field(), "failed rule "+rule)
	}
	return shared.NewValidationError("body", err.Error())
}
