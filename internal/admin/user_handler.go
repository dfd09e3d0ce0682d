package admin

import (
	"errors"
	"fmt"
	"strings"

	"building-backend/internal/auth"
	"building-backend/internal/models"
	"building-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateUserRequest is shared by both account endpoints. Each endpoint pins
// Role to the one value it accepts.
type CreateUserRequest struct {
	Name     string          `json:"name" validate:"required,max=100"`
	Username string          `json:"username" validate:"required,max=100"`
	Password string          `json:"password" validate:"required,max=128"`
	Role     models.UserRole `json:"role" validate:"required"`
	UnitID   *uint           `json:"unitId"`
}

var errUsernameTaken = fiber.NewError(fiber.StatusConflict, "username already exists")

// POST /api/admins/create (super_admin)
func CreateBuildingAdminHandler(db *gorm.DB, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := validation.ParseBody(c, &body); err != nil {
			return err
		}
		if body.Role != models.RoleBuildingAdmin || body.UnitID != nil {
			return validation.ErrInvalidInput
		}

		user, err := createUser(db, body)
		if err != nil {
			return err
		}

		logCreated(c, log, user)
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

// POST /api/residents/create (building_admin)
func CreateResidentHandler(db *gorm.DB, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := validation.ParseBody(c, &body); err != nil {
			return err
		}
		if body.Role != models.RoleResident || body.UnitID == nil || *body.UnitID == 0 {
			return validation.ErrInvalidInput
		}

		var unit models.Unit
		if err := db.First(&unit, *body.UnitID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "unit not found")
			}
			return err
		}

		user, err := createUser(db, body)
		if err != nil {
			return err
		}

		logCreated(c, log, user)
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

func createUser(db *gorm.DB, body CreateUserRequest) (*models.User, error) {
	name := strings.TrimSpace(body.Name)
	username := strings.TrimSpace(body.Username)
	if name == "" || username == "" || body.Password == "" {
		return nil, validation.ErrInvalidInput
	}

	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Username:     username,
		PasswordHash: hash,
		Role:         body.Role,
		UnitID:       body.UnitID,
	}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

func logCreated(c *fiber.Ctx, log *logrus.Logger, user *models.User) {
	fields := logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	}
	if creator, ok := auth.CurrentUserID(c); ok {
		fields["created_by"] = creator
	}
	log.WithFields(fields).Info("account created")
}
