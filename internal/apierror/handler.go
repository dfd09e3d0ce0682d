// Package apierror renders handler errors as {"message": "..."} bodies.
package apierror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Response struct {
	Message string `json:"message"`
}

// Handler is the app-wide fiber.ErrorHandler. Store errors that reach it
// unhandled become a generic 500 and are logged with their cause.
func Handler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		switch {
		case errors.As(err, &fe):
			return c.Status(fe.Code).JSON(Response{Message: fe.Message})
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(Response{Message: "not found"})
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return c.Status(fiber.StatusConflict).JSON(Response{Message: "already exists"})
		}

		log.WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).WithError(err).Error("unexpected error")

		return c.Status(fiber.StatusInternalServerError).JSON(Response{Message: "internal server error"})
	}
}
