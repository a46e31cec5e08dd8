package handlers

import (
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/activity"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type ActivityHandler struct {
	tracker *activity.Tracker
}

func NewActivityHandler(tracker *activity.Tracker) *ActivityHandler {
	return &ActivityHandler{tracker: tracker}
}

func (h *ActivityHandler) Record(c *fiber.Ctx) error {
	var ev activity.Event
	if err := c.BodyParser(&ev); err != nil {
		return badBody(c)
	}

	if err := h.tracker.Record(c.UserContext(), session.FromFiber(c), ev); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(dto.MessageResponse{Message: "Recorded"})
}

func (h *ActivityHandler) Recent(c *fiber.Ctx) error {
	sess := session.FromFiber(c)
	if err := sess.Require("activity.recent"); err != nil {
		return respondError(c, err)
	}

	rows, err := h.tracker.Recent(c.UserContext(), sess.UserID, c.QueryInt("limit", 50))
	if err != nil {
		return respondError(c, apperr.Storage("activity.recent", err))
	}
	return c.JSON(rows)
}
