// Package validator adapts go-playground/validator to echo and reports every
// failed field as a separate message.
package validator

import (
	"fmt"
	"reflect"
	"strings"

	domainerrors "safeguard/internal/domain/errors"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/pkg/errors"
)

// CustomValidator implements echo.Validator.
type CustomValidator struct {
	validate *validator.Validate
}

// New creates a validator that names fields by their json tag.
func New() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}

		return name
	})

	_ = v.RegisterValidation("notblank", validators.NotBlank)

	return &CustomValidator{validate: v}
}

// Validate returns a *domainerrors.ValidationError listing every violation.
func (cv *CustomValidator) Validate(i any) error {
	err := cv.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "validate request")
	}

	verr := domainerrors.NewValidationError()
	for _, fe := range fieldErrs {
		verr.Add(message(fe))
	}

	return verr
}

func message(fe validator.FieldError) string {
	field := fieldPath(fe)

	switch fe.Tag() {
	case "required", "required_with":
		return fmt.Sprintf("%s is required", field)
	case "latitude":
		return fmt.Sprintf("%s must be between -90 and 90", field)
	case "longitude":
		return fmt.Sprintf("%s must be between -180 and 180", field)
	case "gte", "min":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid user id", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "notblank":
		return fmt.Sprintf("%s cannot be empty", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// fieldPath drops the top-level struct name from the namespace, e.g. "share_with[1]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}

	return fe.Field()
}
