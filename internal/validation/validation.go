package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("jwt3", isThreePartToken)
	return v
}

// isThreePartToken accepts header.payload.signature with no empty part.
// The stock "jwt" tag demands a base64 signature segment, which tokens
// from older backends do not always carry.
func isThreePartToken(fl validator.FieldLevel) bool {
	parts := strings.Split(fl.Field().String(), ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
	}
	return true
}

var messages = map[string]string{
	"required": "the field '%s' is required",
	"email":    "the field '%s' must be a valid email address",
	"oneof":    "the field '%s' must be one of [%s]",
	"min":      "the field '%s' must be at least %s",
	"max":      "the field '%s' must be at most %s",
	"gte":      "the field '%s' must be greater than or equal to %s",
	"lte":      "the field '%s' must be less than or equal to %s",
	"url":      "the field '%s' must be a URL",
	"eqfield":  "the field '%s' must match '%s'",
	"jwt3":     "the field '%s' must be a three part token",
}

// FieldErrors maps a JSON field name to a readable message
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, fe[f])
	}
	return strings.Join(msgs, "; ")
}

// Struct validates s against its validate tags. It returns nil when s is
// valid.
func Struct(s any) FieldErrors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return FieldErrors{"": err.Error()}
	}

	fe := make(FieldErrors, len(validationErrs))
	for _, e := range validationErrs {
		fe[e.Field()] = message(e)
	}
	return fe
}

func message(e validator.FieldError) string {
	msg, ok := messages[e.Tag()]
	if !ok {
		return fmt.Sprintf("the field '%s' is invalid: %s", e.Field(), e.Tag())
	}
	if strings.Count(msg, "%s") == 2 {
		return fmt.Sprintf(msg, e.Field(), e.Param())
	}
	return fmt.Sprintf(msg, e.Field())
}
