package router

import (
	"net/http/httptest"
	"strconv"
	"testing"

	"building-backend/internal/auth"
	"building-backend/internal/config"
	"building-backend/internal/models"
	"building-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T, rateLimit int) (*fiber.App, *gorm.DB, *testutil.Recorder) {
	t.Helper()
	db := testutil.OpenDB(t)
	notifier := &testutil.Recorder{}
	cfg := &config.Config{
		CORSOrigins:    "http://localhost:5173",
		LoginRateLimit: rateLimit,
	}
	app := New(Deps{
		Config:   cfg,
		DB:       db,
		Issuer:   testutil.Issuer(),
		Notifier: notifier,
		Log:      testutil.Logger(),
	})
	return app, db, notifier
}

func login(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	resp, body := testutil.Do(t, app, "POST", "/api/auth/login", "",
		map[string]string{"username": username, "password": "password"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	return testutil.Decode[auth.LoginResponse](t, body).Token
}

func TestHealth(t *testing.T) {
	app, _, _ := newTestApp(t, 10)

	resp, body := testutil.Do(t, app, "GET", "/api/health", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestBuildingLifecycle(t *testing.T) {
	app, db, notifier := newTestApp(t, 100)
	testutil.CreateUser(t, db, "root", models.RoleSuperAdmin, nil)

	rootToken := login(t, app, "root")

	// super admin creates a building admin
	resp, body := testutil.Do(t, app, "POST", "/api/admins/create", rootToken, map[string]any{
		"name": "Manager", "username": "manager", "password": "password", "role": "building_admin",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	managerToken := login(t, app, "manager")

	// super admin may not manage units
	resp, _ = testutil.Do(t, app, "POST", "/api/units", rootToken, map[string]any{"unitNumber": "1", "floor": 0})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body = testutil.Do(t, app, "POST", "/api/units", managerToken, map[string]any{"unitNumber": "101", "floor": 1})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	unit := testutil.Decode[models.Unit](t, body)
	unitPath := strconv.FormatUint(uint64(unit.ID), 10)

	resp, body = testutil.Do(t, app, "POST", "/api/residents/create", managerToken, map[string]any{
		"name": "Resident", "username": "resident", "password": "password", "role": "resident", "unitId": unit.ID,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	residentToken := login(t, app, "resident")

	resp, body = testutil.Do(t, app, "POST", "/api/payments", managerToken, map[string]any{
		"unitId": unit.ID, "amount": 2000000, "period": "1403-08",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))
	payment := testutil.Decode[models.Payment](t, body)

	resp, body = testutil.Do(t, app, "GET", "/api/units/"+unitPath+"/debt", residentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))
	assert.JSONEq(t, `{"unitId":`+unitPath+`,"pendingTotal":2000000,"pendingCount":1}`, string(body))

	resp, body = testutil.Do(t, app, "POST", "/api/chats/"+unitPath+"/messages", residentToken, map[string]any{"message": "paid by transfer"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, string(body))

	// residents cannot mark payments paid
	statusPath := "/api/payments/" + strconv.FormatUint(uint64(payment.ID), 10) + "/status"
	resp, _ = testutil.Do(t, app, "PATCH", statusPath, residentToken, map[string]any{"status": "paid"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body = testutil.Do(t, app, "PATCH", statusPath, managerToken, map[string]any{"status": "paid"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(body))

	resp, body = testutil.Do(t, app, "GET", "/api/units/"+unitPath+"/debt", residentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"unitId":`+unitPath+`,"pendingTotal":0,"pendingCount":0}`, string(body))

	resp, body = testutil.Do(t, app, "GET", "/api/audit-logs?entityType=payment", rootToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, testutil.Decode[[]models.AuditLog](t, body), 1)

	resp, _ = testutil.Do(t, app, "GET", "/api/audit-logs", residentToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, body = testutil.Do(t, app, "GET", "/api/auth/me", residentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "resident", testutil.Decode[models.User](t, body).Username)

	assert.Len(t, notifier.Events(), 3)
}

func TestAuthFailuresHaveNoBody(t *testing.T) {
	app, _, _ := newTestApp(t, 10)

	resp, body := testutil.Do(t, app, "GET", "/api/units", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, body)

	resp, body = testutil.Do(t, app, "GET", "/api/units", "not-a-token", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Empty(t, body)
}

func TestLoginRateLimited(t *testing.T) {
	app, _, _ := newTestApp(t, 2)

	bad := map[string]string{"username": "nobody", "password": "wrong"}
	for i := 0; i < 2; i++ {
		resp, _ := testutil.Do(t, app, "POST", "/api/auth/login", "", bad)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	}

	resp, body := testutil.Do(t, app, "POST", "/api/auth/login", "", bad)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.JSONEq(t, `{"message":"too many login attempts"}`, string(body))
}

func TestCORSPreflight(t *testing.T) {
	app, _, _ := newTestApp(t, 10)

	req := httptest.NewRequest("OPTIONS", "/api/units", nil)
	req.Header.Set(fiber.HeaderOrigin, "http://localhost:5173")
	req.Header.Set(fiber.HeaderAccessControlRequestMethod, "PATCH")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}

func TestUnknownRoute(t *testing.T) {
	app, _, _ := newTestApp(t, 10)

	resp, body := testutil.Do(t, app, "GET", "/nowhere", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), `"message"`)
}
