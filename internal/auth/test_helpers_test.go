package auth

import (
	"strings"
	"testing"

	"building-backend/internal/config"
	"building-backend/internal/database"
	"building-backend/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Open(&config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabaseDSN:    "file:" + name + "?mode=memory&cache=shared",
	}, nil)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func createUser(t *testing.T, db *gorm.DB, username, password string, role models.UserRole, unitID *uint) *models.User {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	user := &models.User{Name: username, Username: username, PasswordHash: hash, Role: role, UnitID: unitID}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func quietLogger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}
