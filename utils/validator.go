package utils

import (
	"fmt"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	// Format validation errors
	var errors []string
	for _, err := range err.(validator.ValidationErrors) {
		field := strings.ToLower(err.Field())
		tag := err.Tag()
		param := err.Param()

		switch tag {
		case "required":
			errors = append(errors, field+" is required")
		case "min":
			errors = append(errors, field+" must be at least "+param+" characters")
		case "max":
			errors = append(errors, field+" must be at most "+param+" characters")
		case "email":
			errors = append(errors, field+" must be a valid email")
		case "oneof":
			errors = append(errors, field+" must be one of: "+param)
		default:
			errors = append(errors, field+" is invalid")
		}
	}

	return fmt.Errorf(strings.Join(errors, ", "))
}

// ValidateEmailFormat checks email syntax without touching the network.
func ValidateEmailFormat(email string) error {
	return checkmail.ValidateFormat(email)
}

// ValidateEmailDomain checks syntax and that the domain resolves MX
// records. Used on single-subscriber creation only; bulk import skips
// the DNS round trip.
func ValidateEmailDomain(email string) error {
	if err := checkmail.ValidateFormat(email); err != nil {
		return err
	}
	return checkmail.ValidateHost(email)
}
