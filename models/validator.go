package models

import (
	"fmt"
	"strings"

	"github.com/apppanel/apiclient-core/utils"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("url_scheme", func(fl validator.FieldLevel) bool {
		return utils.ValidateURLScheme(fl.Field().String()) == nil
	})
}

// ValidateStruct validates a struct using the validator and reports the
// failures as ValidationErrors keyed by json field path.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors := parseValidationErrors(err)
	if len(validationErrors) == 0 {
		return err
	}
	return ValidationErrors{Errors: validationErrors}
}

func parseValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range validationErrs {
			validationError := ValidationError{
				Field:   getJSONFieldName(fieldErr),
				Tag:     fieldErr.Tag(),
				Message: getValidationMessage(fieldErr),
			}
			validationErrors = append(validationErrors, validationError)
		}
	}

	return validationErrors
}

func getJSONFieldName(fieldErr validator.FieldError) string {
	// e.g., "UploadRequest.FieldName" -> "fieldName"
	namespace := fieldErr.Namespace()
	parts := strings.Split(namespace, ".")

	if len(parts) <= 1 {
		return toLowerFirst(fieldErr.Field())
	}

	jsonParts := make([]string, 0, len(parts)-1)
	for i := 1; i < len(parts); i++ {
		jsonParts = append(jsonParts, toLowerFirst(parts[i]))
	}

	return strings.Join(jsonParts, ".")
}

func toLowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func getValidationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", getJSONFieldName(fieldErr))
	case "url":
		return fmt.Sprintf("Field '%s' must be a valid URL", getJSONFieldName(fieldErr))
	case "url_scheme":
		return fmt.Sprintf("Field '%s' has an invalid URL scheme", getJSONFieldName(fieldErr))
	case "oneof":
		return fmt.Sprintf("Field '%s' must be one of [%s]", getJSONFieldName(fieldErr), fieldErr.Param())
	case "gt":
		return fmt.Sprintf("Field '%s' must be greater than %s", getJSONFieldName(fieldErr), fieldErr.Param())
	case "gte", "min":
		return fmt.Sprintf("Field '%s' must be at least %s", getJSONFieldName(fieldErr), fieldErr.Param())
	default:
		return fmt.Sprintf("Field '%s' failed validation on '%s' tag", getJSONFieldName(fieldErr), fieldErr.Tag())
	}
}
