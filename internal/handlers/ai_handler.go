package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/advisor"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/llm"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type AIHandler struct {
	direct  llm.Completer
	advisor *advisor.Advisor
}

// NewAIHandler takes the direct provider chain for the proxy endpoint so the
// server never routes a proxy request back to itself.
func NewAIHandler(direct llm.Completer, adv *advisor.Advisor) *AIHandler {
	return &AIHandler{direct: direct, advisor: adv}
}

// Proxy answers in the shape browser clients and ProxyClient expect.
func (h *AIHandler) Proxy(c *fiber.Ctx) error {
	var req llm.ProxyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ProxyResponse{Error: "Invalid request body"})
	}
	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ProxyResponse{Error: "messages are required"})
	}

	reply, err := h.direct.Complete(c.UserContext(), req.Messages, llm.Options{
		Model:       req.Model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		sess := session.FromFiber(c)
		slog.Warn("ai proxy request failed", "user_id", sess.UserID.String(), "error", err.Error())
		return c.Status(statusFor(err)).JSON(llm.ProxyResponse{
			Error:   "AI request failed",
			Message: cause(err),
		})
	}
	return c.JSON(llm.ProxyResponse{Success: true, Response: reply})
}

func (h *AIHandler) Advise(c *fiber.Ctx) error {
	var req advisor.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	reply, err := h.advisor.Chat(c.UserContext(), session.FromFiber(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reply)
}

func (h *AIHandler) SuggestColleges(c *fiber.Ctx) error {
	var profile advisor.Profile
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&profile); err != nil {
			return badBody(c)
		}
	}

	out, err := h.advisor.SuggestColleges(c.UserContext(), session.FromFiber(c), profile)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
