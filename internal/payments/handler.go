package payments

import (
	"errors"
	"fmt"
	"strings"

	"building-backend/internal/audit"
	"building-backend/internal/auth"
	"building-backend/internal/models"
	"building-backend/internal/notify"
	"building-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const auditEntity = "payment"

type CreatePaymentRequest struct {
	UnitID      uint                 `json:"unitId" validate:"required"`
	Amount      *int64               `json:"amount" validate:"required,gte=0"`
	Period      string               `json:"period" validate:"required,max=50"`
	Status      models.PaymentStatus `json:"status" validate:"omitempty,oneof=pending paid"`
	Description *string              `json:"description" validate:"omitnil,max=255"`
}

type UpdateStatusRequest struct {
	Status models.PaymentStatus `json:"status" validate:"required,oneof=pending paid"`
}

// GET /api/payments
// Residents only see payments of their own unit.
func ListPaymentsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := auth.CurrentIdentity(c)
		if !ok {
			return fiber.ErrForbidden
		}

		payments := make([]models.Payment, 0)
		q := db.Order("id")
		if !identity.Role.IsAdmin() {
			if identity.UnitID == nil {
				return c.JSON(payments)
			}
			q = q.Where("unit_id = ?", *identity.UnitID)
		}
		if err := q.Find(&payments).Error; err != nil {
			return err
		}

		return c.JSON(payments)
	}
}

// POST /api/payments
func CreatePaymentHandler(db *gorm.DB, pub notify.Publisher, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreatePaymentRequest
		if err := validation.ParseBody(c, &body); err != nil {
			return err
		}

		payment := models.Payment{
			UnitID:      body.UnitID,
			Amount:      *body.Amount,
			Period:      strings.TrimSpace(body.Period),
			Status:      body.Status,
			Description: body.Description,
		}
		if payment.Period == "" {
			return validation.ErrInvalidInput
		}
		if payment.Status == "" {
			payment.Status = models.PaymentStatusPending
		}

		if err := db.Create(&payment).Error; err != nil {
			return err
		}

		notify.Send(pub, log, notify.Event{
			Type:    notify.EventPaymentCreated,
			UnitID:  payment.UnitID,
			Payload: payment,
		})

		return c.Status(fiber.StatusCreated).JSON(payment)
	}
}

// PATCH /api/payments/:id/status
// The status change and its audit entry are committed together.
func UpdatePaymentStatusHandler(db *gorm.DB, pub notify.Publisher, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}

		var body UpdateStatusRequest
		if err := validation.ParseBody(c, &body); err != nil {
			return err
		}

		identity, ok := auth.CurrentIdentity(c)
		if !ok {
			return fiber.ErrForbidden
		}

		var payment models.Payment
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.First(&payment, id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "payment not found")
				}
				return err
			}
			if payment.Status == body.Status {
				return fiber.NewError(fiber.StatusConflict, fmt.Sprintf("payment is already %s", body.Status))
			}

			before := payment
			res := tx.Model(&models.Payment{}).
				Where("id = ? AND status = ?", payment.ID, before.Status).
				Update("status", body.Status)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fiber.NewError(fiber.StatusConflict, "payment was modified concurrently")
			}
			if err := tx.First(&payment, id).Error; err != nil {
				return err
			}

			return audit.WriteLog(tx, audit.LogOptions{
				UserID:      identity.UserID,
				Username:    identity.Username,
				EntityType:  auditEntity,
				EntityID:    payment.ID,
				Action:      models.AuditActionStatusChange,
				Description: fmt.Sprintf("%s -> %s", before.Status, payment.Status),
				Before:      before,
				After:       payment,
			})
		})
		if err != nil {
			return err
		}

		log.WithFields(logrus.Fields{
			"payment_id": payment.ID,
			"status":     payment.Status,
			"user_id":    identity.UserID,
		}).Info("payment status changed")

		notify.Send(pub, log, notify.Event{
			Type:    notify.EventPaymentStatus,
			UnitID:  payment.UnitID,
			Payload: payment,
		})

		return c.JSON(payment)
	}
}
