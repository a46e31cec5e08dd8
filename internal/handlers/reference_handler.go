package handlers

import (
	"net/url"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/colleges"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// ReferenceHandler serves the built-in college table with deadlines
// resolved against today.
type ReferenceHandler struct {
	table *colleges.Table
	now   func() time.Time
}

func NewReferenceHandler(table *colleges.Table) *ReferenceHandler {
	return &ReferenceHandler{table: table, now: time.Now}
}

func (h *ReferenceHandler) Search(c *fiber.Ctx) error {
	return c.JSON(colleges.ResolveAll(h.table.Search(c.Query("q")), h.now()))
}

func (h *ReferenceHandler) ByName(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		name = c.Params("name")
	}
	ref, ok := h.table.ByName(name)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: "College not found"})
	}
	return c.JSON(colleges.Resolve(ref, h.now()))
}

func (h *ReferenceHandler) ByState(c *fiber.Ctx) error {
	return c.JSON(colleges.ResolveAll(h.table.ByState(c.Params("state")), h.now()))
}
