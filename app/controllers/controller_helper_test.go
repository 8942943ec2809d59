package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/LearnFox/internal/pkg/apperr"
	"github.com/ManuelReschke/LearnFox/internal/pkg/payment"
	"github.com/ManuelReschke/LearnFox/internal/pkg/usercontext"
)

// loginAs stands in for the JWT middleware
func loginAs(studentID, role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(usercontext.KeyUserContext, usercontext.UserContext{
			StudentID:  studentID,
			Role:       role,
			IsLoggedIn: true,
		})
		return c.Next()
	}
}

func readBody(t *testing.T, r io.Reader) string {
	t.Helper()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", payment.ErrCourseNotFound, fiber.StatusNotFound},
		{"gorm not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), fiber.StatusNotFound},
		{"conflict", apperr.Conflict("x", "y"), fiber.StatusConflict},
		{"capacity", payment.ErrCapacityExceeded, fiber.StatusConflict},
		{"validation", payment.ErrMalformedCallback, fiber.StatusUnprocessableEntity},
		{"unreadable", apperr.Wrap(payment.ErrUnreadableCallback, errors.New("eof")), fiber.StatusBadRequest},
		{"bad body", errInvalidBody, fiber.StatusBadRequest},
		{"signature", payment.ErrSignatureMismatch, fiber.StatusUnauthorized},
		{"upstream", payment.ErrGatewayUnavailable, fiber.StatusBadGateway},
		{"plain", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestRespondErrorHidesInternalErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return respondError(c, errors.New("dial tcp 10.0.0.3:3306: connection refused"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body := readBody(t, resp.Body)
	assert.Contains(t, body, "internal_server_error")
	assert.NotContains(t, body, "10.0.0.3")
}

func TestPagination(t *testing.T) {
	tests := []struct {
		query  string
		offset int
		limit  int
	}{
		{"", 0, defaultPageSize},
		{"?page=3&per_page=10", 20, 10},
		{"?page=0&per_page=-5", 0, defaultPageSize},
		{"?per_page=1000", 0, maxPageSize},
		{"?page=abc", 0, defaultPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			app := fiber.New()
			var offset, limit int
			app.Get("/", func(c *fiber.Ctx) error {
				offset, limit = pagination(c)
				return nil
			})
			_, err := app.Test(httptest.NewRequest("GET", "/"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.limit, limit)
		})
	}
}

func TestParseAndValidate(t *testing.T) {
	type body struct {
		Name string `json:"name" validate:"required"`
	}

	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var b body
		if err := parseAndValidate(c, &b); err != nil {
			return respondError(c, err)
		}
		return c.SendString(b.Name)
	})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"valid", `{"name":"fox"}`, fiber.StatusOK},
		{"missing field", `{}`, fiber.StatusUnprocessableEntity},
		{"broken json", `{"name":`, fiber.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
