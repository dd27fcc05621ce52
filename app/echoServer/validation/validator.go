package validation

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validator adapts go-playground/validator to echo's Validator interface,
// mapping struct validation failures to a 400.
type Validator struct {
	check *validator.Validate
}

func New() *Validator { return &Validator{check: validator.New()} }

func (v *Validator) Validate(i interface{}) error {
	if err := v.check.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
