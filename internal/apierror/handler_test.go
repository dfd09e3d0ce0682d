package apierror

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestHandler(t *testing.T) {
	logger, hook := test.NewNullLogger()
	app := fiber.New(fiber.Config{ErrorHandler: Handler(logger)})

	errs := map[string]error{
		"/fiber":     fiber.NewError(fiber.StatusBadRequest, "invalid input"),
		"/missing":   fmt.Errorf("loading: %w", gorm.ErrRecordNotFound),
		"/duplicate": gorm.ErrDuplicatedKey,
		"/boom":      errors.New("connection reset"),
	}
	for path, err := range errs {
		err := err
		app.Get(path, func(*fiber.Ctx) error { return err })
	}

	cases := []struct {
		path   string
		status int
		body   string
	}{
		{"/fiber", 400, `{"message":"invalid input"}`},
		{"/missing", 404, `{"message":"not found"}`},
		{"/duplicate", 409, `{"message":"already exists"}`},
		{"/boom", 500, `{"message":"internal server error"}`},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil))
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, tc.status, resp.StatusCode, tc.path)
		assert.JSONEq(t, tc.body, string(body), tc.path)
	}

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "connection reset", hook.LastEntry().Data["error"].(error).Error())
}
