package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindAuth:
		return fiber.StatusUnauthorized
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindProvider:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError maps a classified error to a status code. Details of
// storage, provider and unclassified failures are logged, not returned.
func respondError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	message := cause(err)

	switch {
	case code == fiber.StatusBadGateway:
		slog.Warn("provider error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "AI service is unavailable, please try again later"
	case code >= 500:
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{Error: true, Message: message})
}

// cause drops the operation prefix so clients see only the reason.
func cause(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: "Invalid request body",
	})
}
