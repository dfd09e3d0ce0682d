package chat

import (
	"strings"

	"building-backend/internal/auth"
	"building-backend/internal/models"
	"building-backend/internal/notify"
	"building-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SendMessageRequest struct {
	Message    string            `json:"message" validate:"required,max=2000"`
	SenderType models.SenderType `json:"senderType" validate:"omitempty,oneof=admin resident"`
	UnitID     *uint             `json:"unitId"`
}

var errUnitForbidden = fiber.NewError(fiber.StatusForbidden, "access to this unit is not allowed")

// unitParam resolves :unitId and enforces resident scoping.
func unitParam(c *fiber.Ctx) (uint, *auth.Identity, error) {
	unitID, err := validation.ParamID(c, "unitId")
	if err != nil {
		return 0, nil, err
	}
	identity, ok := auth.CurrentIdentity(c)
	if !ok || !identity.CanAccessUnit(unitID) {
		return 0, nil, errUnitForbidden
	}
	return unitID, identity, nil
}

// GET /api/chats/:unitId/messages
func ListMessagesHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		unitID, _, err := unitParam(c)
		if err != nil {
			return err
		}

		messages := make([]models.Message, 0)
		if err := db.Where("unit_id = ?", unitID).
			Order("created_at, id").
			Find(&messages).Error; err != nil {
			return err
		}

		return c.JSON(messages)
	}
}

// POST /api/chats/:unitId/messages
// The sender type always follows the caller's role.
func SendMessageHandler(db *gorm.DB, pub notify.Publisher, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		unitID, identity, err := unitParam(c)
		if err != nil {
			return err
		}

		var body SendMessageRequest
		if err := validation.ParseBody(c, &body); err != nil {
			return err
		}
		if body.UnitID != nil && *body.UnitID != unitID {
			return validation.ErrInvalidInput
		}

		sender := models.SenderTypeFor(identity.Role)
		if body.SenderType != "" && body.SenderType != sender {
			return fiber.NewError(fiber.StatusForbidden, "sender type does not match role")
		}

		text := strings.TrimSpace(body.Message)
		if text == "" {
			return validation.ErrInvalidInput
		}

		msg := models.Message{
			UnitID:     unitID,
			SenderType: sender,
			Message:    text,
		}
		if err := db.Create(&msg).Error; err != nil {
			return err
		}

		notify.Send(pub, log, notify.Event{
			Type:    notify.EventMessageCreated,
			UnitID:  unitID,
			Payload: msg,
		})

		return c.Status(fiber.StatusCreated).JSON(msg)
	}
}
