package handlers

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/export"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// UserLookup resolves the account shown in export headers.
type UserLookup interface {
	CurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

type ExportHandler struct {
	records  *record.Service
	users    UserLookup
	importer *export.Importer
	activity record.ActivityRecorder
}

func NewExportHandler(records *record.Service, users UserLookup, activity record.ActivityRecorder) *ExportHandler {
	return &ExportHandler{
		records:  records,
		users:    users,
		importer: export.NewImporter(records, activity),
		activity: activity,
	}
}

func (h *ExportHandler) load(c *fiber.Ctx, format string) (session.Session, export.Owner, *record.UserRecord, error) {
	sess := session.FromFiber(c)
	rec, err := h.records.Load(c.UserContext(), sess)
	if err != nil {
		return sess, export.Owner{}, nil, err
	}

	owner := export.Owner{ID: sess.UserID, Email: sess.Email}
	if h.users != nil {
		if u, err := h.users.CurrentUser(c.UserContext(), sess.UserID); err == nil {
			owner.Email = u.Email
			owner.DisplayName = u.DisplayName
		}
	}
	if h.activity != nil {
		h.activity.Track(c.UserContext(), sess, export.ActivityExport, map[string]any{"format": format})
	}
	return sess, owner, rec, nil
}

func attachment(c *fiber.Ctx, contentType, name string) {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
}

func (h *ExportHandler) JSON(c *fiber.Ctx) error {
	_, owner, rec, err := h.load(c, "json")
	if err != nil {
		return respondError(c, err)
	}

	var buf bytes.Buffer
	if err := export.JSON(&buf, owner, rec, time.Now()); err != nil {
		return respondError(c, err)
	}
	attachment(c, fiber.MIMEApplicationJSON, "bus2college_data.json")
	return c.Send(buf.Bytes())
}

func (h *ExportHandler) CSV(c *fiber.Ctx) error {
	_, _, rec, err := h.load(c, "csv")
	if err != nil {
		return respondError(c, err)
	}

	var buf bytes.Buffer
	if err := export.CollegesCSV(&buf, rec.Colleges); err != nil {
		return respondError(c, err)
	}
	attachment(c, "text/csv", "my_colleges.csv")
	return c.Send(buf.Bytes())
}

// XLSX exports every sheet, or just ?list=colleges|activities|recommenders|dailyTracker.
func (h *ExportHandler) XLSX(c *fiber.Ctx) error {
	var sheets []string
	name := "bus2college_all_data.xlsx"
	if list := c.Query("list"); list != "" {
		sheet, err := export.SheetFor(list)
		if err != nil {
			return respondError(c, apperr.Validation("export.xlsx", err))
		}
		sheets = []string{sheet}
		name = "my_" + list + ".xlsx"
	}

	_, owner, rec, err := h.load(c, "xlsx")
	if err != nil {
		return respondError(c, err)
	}

	var buf bytes.Buffer
	if err := export.Workbook(&buf, owner, rec, sheets...); err != nil {
		return respondError(c, err)
	}
	attachment(c, xlsxContentType, name)
	return c.Send(buf.Bytes())
}

func (h *ExportHandler) ImportJSON(c *fiber.Ctx) error {
	fields, err := h.importer.Import(c.UserContext(), session.FromFiber(c), bytes.NewReader(c.Body()))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ImportResponse{Message: "Data imported successfully", Fields: fields})
}
