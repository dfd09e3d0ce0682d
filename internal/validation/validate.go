package validation

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// InvalidInputMessage is the only detail clients get for a schema mismatch.
const InvalidInputMessage = "invalid input"

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrInvalidInput is returned for every decode or validation failure.
var ErrInvalidInput = fiber.NewError(fiber.StatusBadRequest, InvalidInputMessage)

// ParseBody decodes the JSON body into dst and validates its struct tags.
func ParseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return ErrInvalidInput
	}
	return Struct(dst)
}

func Struct(v any) error {
	if err := validate.Struct(v); err != nil {
		return ErrInvalidInput
	}
	return nil
}

// ParamID reads a positive integer path parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, ErrInvalidInput
	}
	return uint(id), nil
}
