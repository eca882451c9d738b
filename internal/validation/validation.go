// Package validation checks request payloads before they reach the services.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"

	"github.com/go-playground/validator/v10"
)

var phoneRegex = regexp.MustCompile(`^\+7\s?\(?\d{3}\)?\s?\d{3}-?\d{2}-?\d{2}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(fl.Field().String())
	})
	return v
}

// Struct validates s against its `validate` tags. Violations come back as a single
// BadRequest AppError listing "field: rule" pairs.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return models.NewBadRequestError(err.Error())
	}

	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule = fmt.Sprintf("%s=%s", rule, fe.Param())
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), rule))
	}
	return models.NewBadRequestError(strings.Join(parts, "; "))
}

// ValidatePhone reports whether phone is a +7 number in one of the accepted layouts.
func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(phone) {
		return errors.New("phone must look like +7 (000) 000-00-00")
	}
	return nil
}
