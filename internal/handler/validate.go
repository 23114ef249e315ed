package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindAndValidate decodes the request body into req and runs its validate tags.
// On failure it writes the problem response and returns ok=false.
func bindAndValidate(c echo.Context, req interface{}) (ok bool, err error) {
	if err := c.Bind(req); err != nil {
		return false, NewValidationError(c, "Invalid request body", nil)
	}
	if err := validate.Struct(req); err != nil {
		return false, NewValidationError(c, "Validation failed", validationErrors(err))
	}
	return true, nil
}

func validationErrors(err error) []ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationError{{Field: "", Message: err.Error()}}
	}

	result := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		result = append(result, ValidationError{Field: fe.Field(), Message: validationMessage(fe)})
	}
	return result
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be %s characters or less", fe.Param())
		}
		return "Must be at most " + fe.Param()
	case "min":
		return "Must be at least " + fe.Param()
	case "gte":
		return "Must be greater than or equal to " + fe.Param()
	case "lte":
		return "Must be less than or equal to " + fe.Param()
	case "gt":
		return "Must be greater than " + fe.Param()
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return "Failed " + fe.Tag() + " validation"
}
