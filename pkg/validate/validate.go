package validate

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

type CustomValidator struct {
	validator *validator.Validate
}

// NewCustomValidator returns the echo validator. Field names in errors are taken
// from the form tag, then the json tag, so they match what the browser posted.
func NewCustomValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank) //nolint:errcheck
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
