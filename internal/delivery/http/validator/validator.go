// Package validator adapts go-playground/validator to Echo's Validator interface.
package validator

import (
	"net/http"

	domainerrors "loyalty/internal/domain/errors"
	"loyalty/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type echoValidator struct {
	validate *validator.Validate
}

// New creates an Echo validator backed by go-playground/validator.
// Struct fields opt in through `validate` tags.
func New() echo.Validator {
	return &echoValidator{
		validate: validator.New(),
	}
}

// Validate implements echo.Validator.
func (v *echoValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return domainerrors.ErrValidationFailed.WithDetails(validationErrs.Error())
		}

		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return nil
}
