package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "middleware-secret"

func sign(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJWTProtected(t *testing.T) {
	app := fiber.New()
	app.Get("/me", middleware.JWTProtected(&config.Config{JWTSecret: secret}), func(c *fiber.Ctx) error {
		return c.SendString(session.FromFiber(c).UserID.String())
	})

	userID := uuid.New()
	exp := time.Now().Add(time.Minute).Unix()

	cases := map[string]struct {
		token string
		want  int
	}{
		"valid":       {sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": userID.String(), "exp": exp}), http.StatusOK},
		"missing":     {"", http.StatusUnauthorized},
		"no subject":  {sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"email": "a@b.c", "exp": exp}), http.StatusUnauthorized},
		"bad subject": {sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin", "exp": exp}), http.StatusUnauthorized},
		"other alg":   {sign(t, jwt.SigningMethodHS384, jwt.MapClaims{"sub": userID.String(), "exp": exp}), http.StatusUnauthorized},
		"expired":     {sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": userID.String(), "exp": time.Now().Add(-time.Minute).Unix()}), http.StatusUnauthorized},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}
