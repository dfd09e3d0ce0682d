package audit

import (
	"building-backend/internal/models"
	"building-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type listQuery struct {
	EntityType string `query:"entityType" validate:"omitempty,max=50"`
	EntityID   uint   `query:"entityId"`
}

// GET /api/audit-logs?entityType=payment&entityId=1
func ListAuditLogsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q listQuery
		if err := c.QueryParser(&q); err != nil {
			return validation.ErrInvalidInput
		}
		if err := validation.Struct(&q); err != nil {
			return err
		}

		dbq := db.Model(&models.AuditLog{})
		if q.EntityType != "" {
			dbq = dbq.Where("entity_type = ?", q.EntityType)
		}
		if q.EntityID != 0 {
			dbq = dbq.Where("entity_id = ?", q.EntityID)
		}

		logs := make([]models.AuditLog, 0)
		if err := dbq.Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
			return err
		}

		return c.JSON(logs)
	}
}
