package validation

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string `json:"name" validate:"required"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive"`
	Floor  *int   `json:"floor" validate:"required"`
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Post("/items/:id", func(c *fiber.Ctx) error {
		if _, err := ParamID(c, "id"); err != nil {
			return err
		}
		var body sample
		if err := ParseBody(c, &body); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusCreated)
	})
	return app
}

func post(t *testing.T, app *fiber.App, path, body string) int {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestParseBody(t *testing.T) {
	app := newApp()

	cases := []struct {
		name string
		path string
		body string
		want int
	}{
		{"valid", "/items/1", `{"name":"a","floor":0}`, fiber.StatusCreated},
		{"valid with status", "/items/1", `{"name":"a","floor":2,"status":"inactive"}`, fiber.StatusCreated},
		{"missing name", "/items/1", `{"floor":1}`, fiber.StatusBadRequest},
		{"missing floor", "/items/1", `{"name":"a"}`, fiber.StatusBadRequest},
		{"bad enum", "/items/1", `{"name":"a","floor":1,"status":"ACTIVE"}`, fiber.StatusBadRequest},
		{"wrong type", "/items/1", `{"name":"a","floor":"1"}`, fiber.StatusBadRequest},
		{"not json", "/items/1", `{`, fiber.StatusBadRequest},
		{"bad id", "/items/abc", `{"name":"a","floor":1}`, fiber.StatusBadRequest},
		{"zero id", "/items/0", `{"name":"a","floor":1}`, fiber.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, post(t, app, tc.path, tc.body))
		})
	}
}
