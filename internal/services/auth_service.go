package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/session"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MinPasswordLength = 8

const (
	activityLogin    = "login"
	activityLogout   = "logout"
	activityRegister = "register"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("a valid email address is required")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotConfirmed  = errors.New("email address has not been confirmed")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
)

type AuthService struct {
	db       *gorm.DB
	cfg      *config.Config
	mailer   Mailer
	activity record.ActivityRecorder
	now      func() time.Time
}

func NewAuthService(db *gorm.DB, cfg *config.Config, mailer Mailer, activity record.ActivityRecorder) *AuthService {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &AuthService{db: db, cfg: cfg, mailer: mailer, activity: activity, now: time.Now}
}

func (s *AuthService) track(ctx context.Context, user *models.User, sid, typ string) {
	if s.activity == nil {
		return
	}
	s.activity.Track(ctx, session.Session{UserID: user.ID, Email: user.Email, SessionID: sid}, typ, map[string]any{"method": "email"})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) SignUp(ctx context.Context, req *dto.SignUpRequest) (*dto.AuthResponse, error) {
	const op = "auth.sign_up"
	email := normalizeEmail(req.Email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, apperr.Validation(op, ErrInvalidEmail)
	}
	if len(req.Password) < MinPasswordLength {
		return nil, apperr.Validation(op, ErrWeakPassword)
	}

	db := s.db.WithContext(ctx)
	var existing models.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, apperr.Validation(op, ErrEmailTaken)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Storage(op, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = strings.Split(email, "@")[0]
	}
	user := models.User{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: displayName,
		Password:    string(hash),
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, apperr.Storage(op, fmt.Errorf("failed to create user: %w", err))
	}

	if err := s.sendConfirmation(ctx, &user); err != nil {
		slog.ErrorContext(ctx, "confirmation email failed", "user_id", user.ID, "error", err)
	}
	s.track(ctx, &user, "", activityRegister)

	if s.cfg.RequireEmailConfirmation {
		return &dto.AuthResponse{ConfirmationRequired: true, User: userResponse(&user)}, nil
	}
	resp, err := s.generateTokenPair(ctx, &user, uuid.NewString())
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	return resp, nil
}

func (s *AuthService) SignIn(ctx context.Context, req *dto.SignInRequest) (*dto.AuthResponse, error) {
	const op = "auth.sign_in"
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Auth(op, ErrInvalidCredentials)
		}
		return nil, apperr.Storage(op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Auth(op, ErrInvalidCredentials)
	}
	if s.cfg.RequireEmailConfirmation && !user.EmailConfirmed() {
		return nil, apperr.Auth(op, ErrEmailNotConfirmed)
	}

	sid := uuid.NewString()
	resp, err := s.generateTokenPair(ctx, &user, sid)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	s.track(ctx, &user, sid, activityLogin)
	return resp, nil
}

// Refresh rotates a refresh token. The browser session id is carried over.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	const op = "auth.refresh"
	db := s.db.WithContext(ctx)

	var stored models.RefreshToken
	if err := db.Where("token_hash = ? AND revoked = ?", hashToken(refreshToken), false).First(&stored).Error; err != nil {
		return nil, apperr.Auth(op, ErrInvalidToken)
	}

	db.Model(&stored).Update("revoked", true)
	if s.now().After(stored.ExpiresAt) {
		return nil, apperr.Auth(op, ErrInvalidToken)
	}

	var user models.User
	if err := db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, apperr.Auth(op, ErrUserNotFound)
	}

	sid := stored.SessionID
	if sid == "" {
		sid = uuid.NewString()
	}
	resp, err := s.generateTokenPair(ctx, &user, sid)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	return resp, nil
}

// SignOut revokes the refresh token. Unknown tokens are ignored.
func (s *AuthService) SignOut(ctx context.Context, sess session.Session, refreshToken string) error {
	err := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashToken(refreshToken)).
		Update("revoked", true).Error
	if err != nil {
		return apperr.Storage("auth.sign_out", err)
	}
	if sess.Authenticated() && s.activity != nil {
		s.activity.Track(ctx, sess, activityLogout, nil)
	}
	return nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("auth.current_user", ErrUserNotFound)
		}
		return nil, apperr.Storage("auth.current_user", err)
	}
	resp := userResponse(&user)
	return &resp, nil
}

// ResetPassword mails a reset link when the address belongs to an account.
// It reports success either way so callers cannot probe for accounts.
func (s *AuthService) ResetPassword(ctx context.Context, email string) error {
	const op = "auth.reset_password"
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperr.Storage(op, err)
	}

	raw, err := s.issueToken(ctx, &user, models.TokenPurposePasswordReset, s.cfg.PasswordResetExpiry)
	if err != nil {
		return apperr.Storage(op, err)
	}
	link := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(s.cfg.PublicURL, "/"), raw)
	if err := s.mailer.Send(ctx, user.Email, "Reset your Bus2College password", "Use this link to choose a new password: "+link); err != nil {
		slog.ErrorContext(ctx, "password reset email failed", "user_id", user.ID, "error", err)
	}
	return nil
}

// ConfirmPasswordReset sets a new password and revokes every refresh token
// the user holds.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	const op = "auth.confirm_password_reset"
	if len(newPassword) < MinPasswordLength {
		return apperr.Validation(op, ErrWeakPassword)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.consumeToken(ctx, op, token, models.TokenPurposePasswordReset, func(tx *gorm.DB, userID uuid.UUID) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Update("password", string(hash)).Error; err != nil {
			return err
		}
		return tx.Model(&models.RefreshToken{}).Where("user_id = ?", userID).Update("revoked", true).Error
	})
}

func (s *AuthService) ConfirmEmail(ctx context.Context, token string) error {
	now := s.now()
	return s.consumeToken(ctx, "auth.confirm_email", token, models.TokenPurposeEmailConfirm, func(tx *gorm.DB, userID uuid.UUID) error {
		return tx.Model(&models.User{}).Where("id = ?", userID).Update("email_confirmed_at", now).Error
	})
}

func (s *AuthService) sendConfirmation(ctx context.Context, user *models.User) error {
	raw, err := s.issueToken(ctx, user, models.TokenPurposeEmailConfirm, 48*time.Hour)
	if err != nil {
		return err
	}
	link := fmt.Sprintf("%s/confirm-email?token=%s", strings.TrimRight(s.cfg.PublicURL, "/"), raw)
	return s.mailer.Send(ctx, user.Email, "Confirm your Bus2College account", "Confirm your email address: "+link)
}

func (s *AuthService) issueToken(ctx context.Context, user *models.User, purpose string, ttl time.Duration) (string, error) {
	raw, err := randomToken()
	if err != nil {
		return "", err
	}
	tok := models.AuthToken{
		UserID:    user.ID,
		Purpose:   purpose,
		TokenHash: hashToken(raw),
		ExpiresAt: s.now().Add(ttl),
	}
	if err := s.db.WithContext(ctx).Create(&tok).Error; err != nil {
		return "", fmt.Errorf("failed to store %s token: %w", purpose, err)
	}
	return raw, nil
}

func (s *AuthService) consumeToken(ctx context.Context, op, raw, purpose string, apply func(tx *gorm.DB, userID uuid.UUID) error) error {
	now := s.now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tok models.AuthToken
		err := tx.Where("token_hash = ? AND purpose = ? AND used_at IS NULL", hashToken(raw), purpose).First(&tok).Error
		if err != nil || now.After(tok.ExpiresAt) {
			return ErrInvalidToken
		}
		if err := tx.Model(&tok).Update("used_at", now).Error; err != nil {
			return err
		}
		return apply(tx, tok.UserID)
	})
	if errors.Is(err, ErrInvalidToken) {
		return apperr.Validation(op, err)
	}
	return apperr.Storage(op, err)
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User, sid string) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user, sid)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(ctx, user, sid)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		SessionID:    sid,
		User:         userResponse(user),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User, sid string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"sid":   sid,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(ctx context.Context, user *models.User, sid string) (string, error) {
	rawToken, err := randomToken()
	if err != nil {
		return "", err
	}

	stored := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		SessionID: sid,
		TokenHash: hashToken(rawToken),
		ExpiresAt: s.now().Add(s.cfg.JWTRefreshExpiry),
	}
	if err := s.db.WithContext(ctx).Create(&stored).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func userResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		EmailConfirmed: u.EmailConfirmed(),
		CreatedAt:      u.CreatedAt,
	}
}

func randomToken() (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(rawBytes), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
