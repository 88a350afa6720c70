package serverutils

import (
	"github.com/go-playground/validator/v10"

	"subscription-billing-be/internal/apperror"
)

var validate = validator.New()

// ValidateRequest checks DTO validator tags and converts failures into the
// billing validation error so the error middleware answers 400.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return apperror.Validation("%v", err)
	}
	return nil
}
