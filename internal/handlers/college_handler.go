package handlers

import (
	"net/url"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type CollegeHandler struct {
	records *record.Service
}

func NewCollegeHandler(records *record.Service) *CollegeHandler {
	return &CollegeHandler{records: records}
}

func collegeName(c *fiber.Ctx) string {
	name := c.Params("name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}

func (h *CollegeHandler) List(c *fiber.Ctx) error {
	rec, err := h.records.Load(c.UserContext(), session.FromFiber(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rec.Colleges)
}

func (h *CollegeHandler) Add(c *fiber.Ctx) error {
	var req record.College
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	added, err := h.records.AddCollege(c.UserContext(), session.FromFiber(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(added)
}

func (h *CollegeHandler) AddBulk(c *fiber.Ctx) error {
	var req dto.BulkCollegesRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	result, err := h.records.AddCollegesFromReference(c.UserContext(), session.FromFiber(c), req.Colleges, req.DeadlineType)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *CollegeHandler) Update(c *fiber.Ctx) error {
	var req record.CollegeUpdate
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}

	updated, err := h.records.UpdateCollege(c.UserContext(), session.FromFiber(c), collegeName(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

func (h *CollegeHandler) Remove(c *fiber.Ctx) error {
	if err := h.records.RemoveCollege(c.UserContext(), session.FromFiber(c), collegeName(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
