package units

import (
	"errors"
	"strings"

	"building-backend/internal/auth"
	"building-backend/internal/models"
	"building-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CreateUnitRequest struct {
	UnitNumber string            `json:"unitNumber" validate:"required,max=50"`
	Floor      *int              `json:"floor" validate:"required"`
	Status     models.UnitStatus `json:"status" validate:"omitempty,oneof=active inactive"`
	ResidentID *uint             `json:"residentId"`
}

// UpdateUnitRequest carries only the fields being changed.
type UpdateUnitRequest struct {
	UnitNumber *string            `json:"unitNumber" validate:"omitnil,min=1,max=50"`
	Floor      *int               `json:"floor"`
	Status     *models.UnitStatus `json:"status" validate:"omitnil,oneof=active inactive"`
	ResidentID *uint              `json:"residentId"`
}

type DebtResponse struct {
	UnitID       uint  `json:"unitId"`
	PendingTotal int64 `json:"pendingTotal"`
	PendingCount int64 `json:"pendingCount"`
}

var errNotFound = fiber.NewError(fiber.StatusNotFound, "unit not found")

func findUnit(db *gorm.DB, id uint) (*models.Unit, error) {
	var unit models.Unit
	if err := db.First(&unit, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNotFound
		}
		return nil, err
	}
	return &unit, nil
}

// unitParam resolves :id and enforces resident scoping.
func unitParam(c *fiber.Ctx) (uint, error) {
	id, err := validation.ParamID(c, "id")
	if err != nil {
		return 0, err
	}
	identity, ok := auth.CurrentIdentity(c)
	if !ok || !identity.CanAccessUnit(id) {
		return 0, fiber.NewError(fiber.StatusForbidden, "access to this unit is not allowed")
	}
	return id, nil
}

// GET /api/units
func ListUnitsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := auth.CurrentIdentity(c)
		if !ok {
			return fiber.ErrForbidden
		}

		units := make([]models.Unit, 0)
		q := db.Order("id")
		if !identity.Role.IsAdmin() {
			if identity.UnitID == nil {
				return c.JSON(units)
			}
			q = q.Where("id = ?", *identity.UnitID)
		}
		if err := q.Find(&units).Error; err != nil {
			return err
		}

		return c.JSON(units)
	}
}

// POST /api/units
func CreateUnitHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUnitRequest
		if err := validation.ParseBody(c, &body); err != nil {
			return err
		}

		unit := models.Unit{
			UnitNumber: strings.TrimSpace(body.UnitNumber),
			Floor:      *body.Floor,
			Status:     body.Status,
			ResidentID: body.ResidentID,
		}
		if unit.UnitNumber == "" {
			return validation.ErrInvalidInput
		}
		if unit.Status == "" {
			unit.Status = models.UnitStatusActive
		}

		if err := db.Create(&unit).Error; err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(unit)
	}
}

// GET /api/units/:id
func GetUnitHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := unitParam(c)
		if err != nil {
			return err
		}

		unit, err := findUnit(db, id)
		if err != nil {
			return err
		}
		return c.JSON(unit)
	}
}

// clearsResident reports whether the body sets residentId to an explicit null,
// which unassigns the resident. An absent key leaves it unchanged.
func clearsResident(c *fiber.Ctx) bool {
	var raw map[string]any
	if err := c.App().Config().JSONDecoder(c.Body(), &raw); err != nil {
		return false
	}
	v, present := raw["residentId"]
	return present && v == nil
}

// PATCH /api/units/:id
func UpdateUnitHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := validation.ParamID(c, "id")
		if err != nil {
			return err
		}

		var body UpdateUnitRequest
		if err := validation.ParseBody(c, &body); err != nil {
			return err
		}

		updates := map[string]any{}
		if body.UnitNumber != nil {
			number := strings.TrimSpace(*body.UnitNumber)
			if number == "" {
				return validation.ErrInvalidInput
			}
			updates["unit_number"] = number
		}
		if body.Floor != nil {
			updates["floor"] = *body.Floor
		}
		if body.Status != nil {
			updates["status"] = *body.Status
		}
		if body.ResidentID != nil {
			updates["resident_id"] = *body.ResidentID
		} else if clearsResident(c) {
			updates["resident_id"] = nil
		}

		unit, err := findUnit(db, id)
		if err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := db.Model(unit).Updates(updates).Error; err != nil {
				return err
			}
			if unit, err = findUnit(db, id); err != nil {
				return err
			}
		}

		return c.JSON(unit)
	}
}

// GET /api/units/:id/debt
func UnitDebtHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := unitParam(c)
		if err != nil {
			return err
		}

		if _, err := findUnit(db, id); err != nil {
			return err
		}

		resp := DebtResponse{UnitID: id}
		if err := db.Model(&models.Payment{}).
			Select("CAST(COALESCE(SUM(amount), 0) AS BIGINT), COUNT(*)").
			Where("unit_id = ? AND status = ?", id, models.PaymentStatusPending).
			Row().
			Scan(&resp.PendingTotal, &resp.PendingCount); err != nil {
			return err
		}

		return c.JSON(resp)
	}
}
