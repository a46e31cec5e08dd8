package session

import (
	"net/http/httptest"
	"testing"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/apperr"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFiberReadsClaims(t *testing.T) {
	userID := uuid.New()
	app := fiber.New()

	var got Session
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals("user", &jwt.Token{Claims: jwt.MapClaims{
			"sub":   userID.String(),
			"email": "a@b.com",
			"sid":   "sess-claim",
		}})
		got = FromFiber(c)
		return nil
	})

	req := httptest.NewRequest("GET", "/", nil)
	_, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, "a@b.com", got.Email)
	assert.Equal(t, "sess-claim", got.SessionID)
	assert.True(t, got.Authenticated())
}

func TestFromFiberHeaderSessionWins(t *testing.T) {
	app := fiber.New()
	var got Session
	app.Get("/", func(c *fiber.Ctx) error {
		got = FromFiber(c)
		return nil
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderSessionID, "sess-header")
	_, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, "sess-header", got.SessionID)
	assert.False(t, got.Authenticated())
}

func TestRequire(t *testing.T) {
	err := Session{}.Require("record.load")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.True(t, apperr.Is(err, apperr.KindAuth))

	assert.NoError(t, Session{UserID: uuid.New()}.Require("record.load"))
}
