package services

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/session"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct{ to, subject, body string }

type captureMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *captureMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

// token pulls the token query parameter out of the last mailed link.
func (m *captureMailer) token(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	body := m.sent[len(m.sent)-1].body
	u, err := url.Parse(body[strings.Index(body, "http"):])
	require.NoError(t, err)
	return u.Query().Get("token")
}

type activityLog struct{ types []string }

func (a *activityLog) Track(_ context.Context, _ session.Session, typ string, _ map[string]any) {
	a.types = append(a.types, typ)
}

func newAuth(t *testing.T, requireConfirm bool) (*AuthService, *captureMailer, *activityLog) {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:                "test-secret",
		JWTAccessExpiry:          15 * time.Minute,
		JWTRefreshExpiry:         time.Hour,
		PasswordResetExpiry:      time.Hour,
		PublicURL:                "http://localhost:8080",
		RequireEmailConfirmation: requireConfirm,
	}
	m := &captureMailer{}
	a := &activityLog{}
	return NewAuthService(testutil.NewDB(t), cfg, m, a), m, a
}

func TestSignUpAndSignIn(t *testing.T) {
	svc, mailer, acts := newAuth(t, false)
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, &dto.SignUpRequest{Email: " Sam@Example.com ", Password: "password123", DisplayName: "Sam"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "sam@example.com", resp.User.Email)
	assert.Equal(t, "Sam", resp.User.DisplayName)
	assert.Len(t, mailer.sent, 1)

	token, err := jwt.Parse(resp.AccessToken, func(*jwt.Token) (any, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, resp.User.ID.String(), claims["sub"])
	assert.Equal(t, resp.SessionID, claims["sid"])

	in, err := svc.SignIn(ctx, &dto.SignInRequest{Email: "SAM@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, in.User.ID)
	assert.NotEqual(t, resp.SessionID, in.SessionID)
	assert.Equal(t, []string{"register", "login"}, acts.types)
}

func TestSignUpValidation(t *testing.T) {
	svc, _, _ := newAuth(t, false)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, &dto.SignUpRequest{Email: "sam@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.SignUp(ctx, &dto.SignUpRequest{Email: "not-an-email", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.SignUp(ctx, &dto.SignUpRequest{Email: "sam@example.com", Password: "password123"})
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, &dto.SignUpRequest{Email: "Sam@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignInWrongPassword(t *testing.T) {
	svc, _, _ := newAuth(t, false)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, &dto.SignUpRequest{Email: "sam@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, &dto.SignInRequest{Email: "sam@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))

	_, err = svc.SignIn(ctx, &dto.SignInRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEmailConfirmationRequired(t *testing.T) {
	svc, mailer, _ := newAuth(t, true)
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, &dto.SignUpRequest{Email: "sam@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.True(t, resp.ConfirmationRequired)
	assert.Empty(t, resp.AccessToken)

	_, err = svc.SignIn(ctx, &dto.SignInRequest{Email: "sam@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrEmailNotConfirmed)

	token := mailer.token(t)
	require.NoError(t, svc.ConfirmEmail(ctx, token))
	assert.ErrorIs(t, svc.ConfirmEmail(ctx, token), ErrInvalidToken)

	in, err := svc.SignIn(ctx, &dto.SignInRequest{Email: "sam@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.True(t, in.User.EmailConfirmed)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, _ := newAuth(t, false)
	ctx := context.Background()
	resp, err := svc.SignUp(ctx, &dto.SignUpRequest{Email: "sam@example.com", Password: "password123"})
	require.NoError(t, err)

	next, err := svc.Refresh(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, next.RefreshToken)
	assert.Equal(t, resp.SessionID, next.SessionID)

	_, err = svc.Refresh(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	require.NoError(t, svc.SignOut(ctx, session.Session{}, next.RefreshToken))
	_, err = svc.Refresh(ctx, next.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordReset(t *testing.T) {
	svc, mailer, _ := newAuth(t, false)
	ctx := context.Background()
	resp, err := svc.SignUp(ctx, &dto.SignUpRequest{Email: "sam@example.com", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, "nobody@example.com"))
	assert.Len(t, mailer.sent, 1)

	require.NoError(t, svc.ResetPassword(ctx, "sam@example.com"))
	require.Len(t, mailer.sent, 2)
	token := mailer.token(t)

	assert.ErrorIs(t, svc.ConfirmPasswordReset(ctx, token, "short"), ErrWeakPassword)
	require.NoError(t, svc.ConfirmPasswordReset(ctx, token, "new-password"))

	_, err = svc.SignIn(ctx, &dto.SignInRequest{Email: "sam@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, &dto.SignInRequest{Email: "sam@example.com", Password: "new-password"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredResetToken(t *testing.T) {
	svc, mailer, _ := newAuth(t, false)
	ctx := context.Background()
	_, err := svc.SignUp(ctx, &dto.SignUpRequest{Email: "sam@example.com", Password: "password123"})
	require.NoError(t, err)
	require.NoError(t, svc.ResetPassword(ctx, "sam@example.com"))

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	err = svc.ConfirmPasswordReset(ctx, mailer.token(t), "new-password")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCurrentUser(t *testing.T) {
	svc, _, _ := newAuth(t, false)
	ctx := context.Background()
	resp, err := svc.SignUp(ctx, &dto.SignUpRequest{Email: "sam@example.com", Password: "password123"})
	require.NoError(t, err)

	me, err := svc.CurrentUser(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "sam", me.DisplayName)

	_, err = svc.CurrentUser(ctx, uuid.Nil)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
