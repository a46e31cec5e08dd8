package handlers

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	ping      func() error
	providers func() []string
}

// NewHealthHandler reports database reachability and which AI providers
// are configured.
func NewHealthHandler(ping func() error, providers func() []string) *HealthHandler {
	return &HealthHandler{ping: ping, providers: providers}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := h.ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	providers := []string{}
	if h.providers != nil {
		providers = append(providers, h.providers()...)
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Providers: providers,
	})
}
