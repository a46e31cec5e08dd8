// Package session carries the signed-in user and browser session through a
// request explicitly instead of through package-level state.
package session

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/apperr"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNotAuthenticated = errors.New("not authenticated")

const (
	HeaderSessionID = "X-Session-ID"

	// LocalsKey is where the JWT middleware stores the parsed token.
	LocalsKey = "user"
)

// Session identifies who is acting and from which browser session.
type Session struct {
	UserID    uuid.UUID
	Email     string
	SessionID string
	UserAgent string
	PageURL   string
}

func (s Session) Authenticated() bool {
	return s.UserID != uuid.Nil
}

// Require returns ErrNotAuthenticated (as an auth error) for anonymous sessions.
func (s Session) Require(op string) error {
	if !s.Authenticated() {
		return apperr.Auth(op, ErrNotAuthenticated)
	}
	return nil
}

// FromFiber builds a Session from the JWT placed in locals by the auth middleware.
// Missing or malformed tokens yield an anonymous session.
func FromFiber(c *fiber.Ctx) Session {
	s := Session{
		SessionID: c.Get(HeaderSessionID),
		UserAgent: c.Get(fiber.HeaderUserAgent),
		PageURL:   c.Get(fiber.HeaderReferer),
	}

	token, ok := c.Locals(LocalsKey).(*jwt.Token)
	if !ok || token == nil {
		return s
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return s
	}

	if sub, ok := claims["sub"].(string); ok {
		if id, err := uuid.Parse(sub); err == nil {
			s.UserID = id
		}
	}
	s.Email, _ = claims["email"].(string)
	if sid, ok := claims["sid"].(string); ok && sid != "" && s.SessionID == "" {
		s.SessionID = sid
	}
	return s
}
