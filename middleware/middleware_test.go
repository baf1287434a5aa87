package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tictactoe-arena/services"
)

func gatewayApp() *fiber.App {
	app := fiber.New()
	app.Use(GatewayAuthMiddleware("s3cret"))
	app.Use(UserContextMiddleware())
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": UserID(c), "name": UserName(c)})
	})
	return app
}

func TestGatewayAuth(t *testing.T) {
	app := gatewayApp()
	cases := []struct {
		name   string
		auth   string
		status int
	}{
		{"missing", "", fiber.StatusUnauthorized},
		{"wrong", "Bearer nope", fiber.StatusUnauthorized},
		{"bearer", "Bearer s3cret", fiber.StatusOK},
		{"raw", "s3cret", fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.auth != "" {
				req.Header.Set("Authorization", tc.auth)
			}
			req.Header.Set("X-User-ID", "u1")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestUserContextRequiresIdentity(t *testing.T) {
	app := gatewayApp()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

type fakeValidator struct {
	resp *services.ValidateResponse
	err  error
}

func (v fakeValidator) ValidateToken(context.Context, string, string) (*services.ValidateResponse, error) {
	return v.resp, v.err
}

func TestSocketAuth(t *testing.T) {
	var seen *services.ValidateResponse
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = SocketUser(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	ok := SocketAuth(fakeValidator{resp: &services.ValidateResponse{UserID: "u1"}})(next)
	rec := httptest.NewRecorder()
	ok.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws?token=t&device_id=d", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "u1", seen.UserID)

	rec = httptest.NewRecorder()
	ok.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws?token=t", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	denied := SocketAuth(fakeValidator{err: errors.New("expired")})(next)
	rec = httptest.NewRecorder()
	denied.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws?token=t&device_id=d", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
