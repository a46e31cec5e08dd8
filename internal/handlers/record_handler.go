package handlers

import (
	"encoding/json"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type RecordHandler struct {
	records *record.Service
}

func NewRecordHandler(records *record.Service) *RecordHandler {
	return &RecordHandler{records: records}
}

func (h *RecordHandler) Get(c *fiber.Ctx) error {
	rec, err := h.records.Load(c.UserContext(), session.FromFiber(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rec)
}

func (h *RecordHandler) GetField(c *fiber.Ctx) error {
	field, err := record.ParseField(c.Params("field"))
	if err != nil {
		return respondError(c, apperr.Validation("record.get_field", err))
	}

	rec, err := h.records.Load(c.UserContext(), session.FromFiber(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(field.Value(rec))
}

// PutField replaces one top-level field with the request body.
func (h *RecordHandler) PutField(c *fiber.Ctx) error {
	field, err := record.ParseField(c.Params("field"))
	if err != nil {
		return respondError(c, apperr.Validation("record.put_field", err))
	}

	body := c.Body()
	if len(body) == 0 || !json.Valid(body) {
		return badBody(c)
	}

	raw := make(json.RawMessage, len(body))
	copy(raw, body)
	if err := h.records.SavePartial(c.UserContext(), session.FromFiber(c), field, raw); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Saved " + string(field)})
}
