// Package testutil holds helpers shared by handler tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"building-backend/internal/apierror"
	"building-backend/internal/auth"
	"building-backend/internal/config"
	"building-backend/internal/database"
	"building-backend/internal/models"
	"building-backend/internal/notify"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gorm.io/gorm"
)

const Secret = "test-secret-key-for-jwt-signing-000"

// OpenDB opens a migrated in-memory SQLite database private to the test.
func OpenDB(t *testing.T) *gorm.DB {
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

func Issuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer(Secret, time.Hour)
}

func Logger() *logrus.Logger {
	logger, _ := test.NewNullLogger()
	return logger
}

// CreateUser inserts a user with a real password hash.
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.UserRole, unitID *uint) *models.User {
	t.Helper()
	hash, err := auth.HashPassword("password")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{Name: username, Username: username, PasswordHash: hash, Role: role, UnitID: unitID}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// Token issues a bearer token for user.
func Token(t *testing.T, issuer *auth.TokenIssuer, user *models.User) string {
	t.Helper()
	token, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// Do sends a request with an optional JSON body and bearer token. body may be
// a string (sent verbatim) or any value marshalled to JSON.
func Do(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

// Decode unmarshals a response body into T.
func Decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %q: %v", string(data), err)
	}
	return v
}

func Ptr[T any](v T) *T {
	return &v
}

// NewApp returns a Fiber app with the production error handler.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: apierror.Handler(Logger())})
}

// Recorder is a notify.Publisher that keeps every event it receives. Err, when
// set, is returned from Publish after the event is recorded.
type Recorder struct {
	mu     sync.Mutex
	events []notify.Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, e notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.Err
}

func (r *Recorder) Events() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events...)
}
