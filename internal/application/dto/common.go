package dto

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pasalhq/pasal-erp/internal/domain"
)

// ErrorResponse is the JSON error body returned by every handler.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate runs struct-tag validation and converts the first failure into a
// domain ValidationError, so handlers map it without knowing the validator.
func Validate(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if ok := errorsAs(err, &verrs); ok && len(verrs) > 0 {
		fe := verrs[0]
		return &domain.ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: "failed validation rule '" + fe.Tag() + "'",
		}
	}
	return &domain.ValidationError{Message: err.Error()}
}

// errorsAs is a tiny wrapper to keep the errors import local to one spot.
func errorsAs(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return false
	}
	*target = verrs
	return true
}
