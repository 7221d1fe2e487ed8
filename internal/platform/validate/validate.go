// Package validate wraps go-playground/validator with the custom rules and
// field-level messages used across the service.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"bookreview/internal/apperror"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var (
	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	numberRe  = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	validate.RegisterValidation("password_strength", validatePasswordStrength)
	validate.RegisterValidation("not_future_year", validateNotFutureYear)
}

// MustRegister adds a custom rule. It panics on a bad tag, so call it from init.
func MustRegister(tag string, fn func(value string) bool) {
	err := validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("validate: register %q: %v", tag, err))
	}
}

func validatePasswordStrength(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 8 {
		return false
	}
	return upperRe.MatchString(password) &&
		lowerRe.MatchString(password) &&
		numberRe.MatchString(password) &&
		specialRe.MatchString(password)
}

func validateNotFutureYear(fl validator.FieldLevel) bool {
	return fl.Field().Int() <= int64(time.Now().Year())
}

// Struct validates s and returns nil or an *apperror.ValidationError.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperror.FieldError{
			Field:   fe.Field(),
			Message: message(fe),
		})
	}
	return &apperror.ValidationError{Fields: fields}
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()
	isText := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if isText {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isText {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", field)
	case "password_strength":
		return fmt.Sprintf("%s must be at least 8 characters with uppercase, lowercase, number, and special character", field)
	case "not_future_year":
		return fmt.Sprintf("%s cannot be in the future", field)
	case "genre":
		return fmt.Sprintf("%s is not a supported genre", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
