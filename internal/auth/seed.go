package auth

import (
	"errors"
	"fmt"

	"building-backend/internal/config"
	"building-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SeedSuperAdmin creates the configured super admin on first boot. It is a
// no-op when credentials are not configured or the username already exists.
// Reports whether an account was created.
func SeedSuperAdmin(db *gorm.DB, cfg config.SuperAdminConfig, log *logrus.Logger) (bool, error) {
	if cfg.Username == "" || cfg.Password == "" {
		log.Info("super admin credentials not configured, skipping seed")
		return false, nil
	}

	_, err := FindUserByUsername(db, cfg.Username)
	if err == nil {
		log.WithField("username", cfg.Username).Info("super admin already exists, skipping seed")
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("checking existing super admin: %w", err)
	}

	hash, err := HashPassword(cfg.Password)
	if err != nil {
		return false, fmt.Errorf("hashing super admin password: %w", err)
	}

	name := cfg.Name
	if name == "" {
		name = "Super Admin"
	}

	user := models.User{
		Name:         name,
		Username:     cfg.Username,
		PasswordHash: hash,
		Role:         models.RoleSuperAdmin,
	}
	if err := db.Create(&user).Error; err != nil {
		return false, fmt.Errorf("creating super admin: %w", err)
	}

	log.WithField("username", user.Username).Warn("super admin account seeded")
	return true, nil
}
