package handlers

import (
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) SignUp(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.SignUp(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) SignIn(c *fiber.Ctx) error {
	var req dto.SignInRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.SignIn(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	resp, err := h.authService.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) SignOut(c *fiber.Ctx) error {
	var req dto.SignOutRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if err := h.authService.SignOut(c.UserContext(), session.FromFiber(c), req.RefreshToken); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Signed out"})
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if err := h.authService.ResetPassword(c.UserContext(), req.Email); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "If the address has an account, a reset link is on its way"})
}

func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.ConfirmPasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if err := h.authService.ConfirmPasswordReset(c.UserContext(), req.Token, req.Password); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Password updated"})
}

func (h *AuthHandler) ConfirmEmail(c *fiber.Ctx) error {
	var req dto.ConfirmEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	if err := h.authService.ConfirmEmail(c.UserContext(), req.Token); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Email confirmed"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	sess := session.FromFiber(c)
	if err := sess.Require("auth.me"); err != nil {
		return respondError(c, err)
	}

	user, err := h.authService.CurrentUser(c.UserContext(), sess.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
