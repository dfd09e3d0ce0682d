package auth

import (
	"errors"
	"fmt"
	"strings"

	"building-backend/internal/models"
	"building-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const invalidCredentialsMessage = "invalid username or password"

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// dummyHash is verified against when the username does not exist so that
// unknown users cost the same as a wrong password.
var dummyHash = mustHash("timing-equaliser")

func mustHash(p string) string {
	h, err := HashPassword(p)
	if err != nil {
		panic(err)
	}
	return h
}

func FindUserByUsername(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// POST /api/auth/login
func LoginHandler(db *gorm.DB, issuer *TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := validation.ParseBody(c, &body); err != nil {
			return err
		}
		body.Username = strings.TrimSpace(body.Username)

		user, err := FindUserByUsername(db, body.Username)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("looking up user: %w", err)
			}
			_, _ = VerifyPassword(body.Password, dummyHash)
			return fiber.NewError(fiber.StatusUnauthorized, invalidCredentialsMessage)
		}

		ok, err := VerifyPassword(body.Password, user.PasswordHash)
		if err != nil {
			return fmt.Errorf("verifying password for user %d: %w", user.ID, err)
		}
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, invalidCredentialsMessage)
		}

		token, err := issuer.Issue(user)
		if err != nil {
			return err
		}

		return c.JSON(LoginResponse{Token: token, User: user})
	}
}

// GET /api/auth/me
func MeHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return reject(c, fiber.StatusUnauthorized)
		}

		var user models.User
		if err := db.First(&user, identity.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return reject(c, fiber.StatusUnauthorized)
			}
			return fmt.Errorf("loading current user: %w", err)
		}

		return c.JSON(user)
	}
}
