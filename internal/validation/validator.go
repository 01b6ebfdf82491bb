// Package validation wraps go-playground/validator with the rules used for
// crew input: identifiers, non-blank text, roles and statuses.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/YusovID/turnaround-service/internal/apperrors"
	"github.com/YusovID/turnaround-service/internal/domain"
	"github.com/go-playground/validator/v10"
)

var (
	validate = validator.New()
	idRe     = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

func init() {
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}

		return name
	})

	rules := map[string]validator.Func{
		// Empty strings are left to the 'required' tag.
		"custom_id": func(fl validator.FieldLevel) bool {
			v := fl.Field().String()
			return v == "" || idRe.MatchString(v)
		},
		"not_blank": func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		},
		"crew_role": func(fl validator.FieldLevel) bool {
			return domain.Role(fl.Field().String()).Valid()
		},
		"turnaround_status": func(fl validator.FieldLevel) bool {
			return domain.TurnaroundStatus(fl.Field().String()).Valid()
		},
	}

	for tag, fn := range rules {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register validation %q: %v", tag, err))
		}
	}
}

// ValidationError collects user-facing messages, one per rejected field.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return strings.Join(v.Errors, ", ")
}

func (v *ValidationError) Is(target error) bool { return target == apperrors.ErrValidation }

// Fail builds a single-field ValidationError for checks that do not map onto a
// struct tag.
func Fail(field, message string) *ValidationError {
	return &ValidationError{Errors: []string{fmt.Sprintf("field '%s' %s", field, message)}}
}

// ValidateStruct validates s against its `validate` tags.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validation.ValidateStruct: %w", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, message(fe))
	}

	return &ValidationError{Errors: messages}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "custom_id":
		return fmt.Sprintf("field '%s' must contain only letters, numbers, hyphens, and underscores", fe.Field())
	case "not_blank":
		return fmt.Sprintf("field '%s' must not be blank", fe.Field())
	case "gt":
		return fmt.Sprintf("field '%s' must be greater than %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("field '%s' must be at most %s", fe.Field(), fe.Param())
	case "crew_role":
		return fmt.Sprintf("field '%s' must be one of Supervisor, Ramp Agent, Maintenance Engineer, Catering", fe.Field())
	case "turnaround_status":
		return fmt.Sprintf("field '%s' must be one of On Time, In Progress, Delayed, Completed", fe.Field())
	default:
		return fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
	}
}
