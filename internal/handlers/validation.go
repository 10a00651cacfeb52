package handlers

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/atlas-travel/atlas-auth/internal/models"
	"github.com/atlas-travel/atlas-auth/pkg/validation"
	"github.com/go-playground/validator/v10"
)

// Global validator instance (reused across all handlers)
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report json field names so error messages match the wire format
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// The form contract uses a looser email shape than the RFC validator
	_ = v.RegisterValidation("email_basic", func(fl validator.FieldLevel) bool {
		return validation.IsValidEmail(fl.Field().String())
	})

	return v
}

// ValidateRequest validates a request struct, returning the first failure
// as the user-facing message from the catalog.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
		return fmt.Errorf("%s", formatFieldError(ve[0]))
	}
	return fmt.Errorf("validation failed: %w", err)
}

// formatFieldError maps a failed field to its catalog message.
func formatFieldError(fe validator.FieldError) string {
	switch fe.Field() {
	case "email":
		if fe.Tag() == "required" {
			return models.MsgEmailRequired
		}
		return models.MsgEmailInvalidFormat
	case "username":
		if fe.Tag() == "required" {
			return models.MsgUsernameRequired
		}
		return models.MsgUsernameMinLength
	case "password":
		if fe.Tag() == "required" {
			return models.MsgPasswordRequired
		}
		return models.MsgPasswordMinLength
	case "name":
		return models.MsgNameRequired
	case "token":
		return models.MsgResetPasswordFieldsMissing
	case "usernameOrEmail":
		return models.MsgUsernameOrEmailRequired
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must have a minimum of %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must have a maximum of %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", fe.Field(), fe.Tag())
	}
}
