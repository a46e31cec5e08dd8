package handlers

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/essay"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type EssayHandler struct {
	controller *essay.Controller
	records    *record.Service
}

func NewEssayHandler(controller *essay.Controller, records *record.Service) *EssayHandler {
	return &EssayHandler{controller: controller, records: records}
}

func (h *EssayHandler) Prompts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"wordLimit": essay.WordLimit,
		"prompts":   essay.Prompts(),
	})
}

func (h *EssayHandler) GetCommonApp(c *fiber.Ctx) error {
	vm, err := h.controller.View(c.UserContext(), session.FromFiber(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(vm)
}

func (h *EssayHandler) SaveCommonApp(c *fiber.Ctx) error {
	var req dto.DraftRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	vm, err := h.controller.Dispatch(c.UserContext(), session.FromFiber(c), essay.SubmitDraft{Prompt: req.Prompt, Content: req.Content})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(vm)
}

// RequestFeedback reviews the stored draft. Provider failures still return
// the view so the client can show the stored feedback and the error.
func (h *EssayHandler) RequestFeedback(c *fiber.Ctx) error {
	vm, err := h.controller.Dispatch(c.UserContext(), session.FromFiber(c), essay.RequestFeedback{})
	if err != nil {
		status := statusFor(err)
		if status >= 500 {
			slog.Warn("essay feedback request failed", "path", c.Path(), "error", err.Error())
		}
		return c.Status(status).JSON(vm)
	}
	return c.JSON(vm)
}

func (h *EssayHandler) ListSupplemental(c *fiber.Ctx) error {
	rec, err := h.records.Load(c.UserContext(), session.FromFiber(c))
	if err != nil {
		return respondError(c, err)
	}
	list := rec.Essays.Supplemental
	if list == nil {
		list = []record.SupplementalEssay{}
	}
	return c.JSON(list)
}

func (h *EssayHandler) SaveSupplemental(c *fiber.Ctx) error {
	var req record.SupplementalEssay
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	saved, err := h.records.SaveSupplementalEssay(c.UserContext(), session.FromFiber(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(saved)
}
