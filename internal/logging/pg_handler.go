package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/batch"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PGHandler is an slog.Handler that batches ERROR+ logs to the system_logs table.
type PGHandler struct {
	batcher *batch.Batcher[models.SystemLog]
	attrs   []slog.Attr
}

func NewPGHandler(db *gorm.DB) *PGHandler {
	return &PGHandler{
		batcher: batch.New[models.SystemLog](db, "system_logs", batch.DefaultSize, batch.DefaultInterval),
	}
}

func (h *PGHandler) Stop() {
	h.batcher.Stop()
}

// Enabled only handles ERROR and above.
func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(_ context.Context, record slog.Record) error {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: ts,
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	apply := func(a slog.Attr) bool {
		switch a.Key {
		case "trace_id", "request_id":
			entry.TraceID = a.Value.String()
		case "user_id":
			s := a.Value.String()
			entry.UserID = &s
		case "session_id":
			entry.SessionID = a.Value.String()
		case "action":
			entry.Action = a.Value.String()
		case "error":
			entry.Error = a.Value.String()
		case "latency_ms":
			switch v := a.Value.Any().(type) {
			case float64:
				entry.LatencyMs = int(math.Round(v))
			case int64:
				entry.LatencyMs = int(v)
			}
		default:
			extra[a.Key] = a.Value.Any()
		}
		return true
	}
	for _, a := range h.attrs {
		apply(a)
	}
	record.Attrs(apply)

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	h.batcher.Add(entry)
	return nil
}

func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &PGHandler{batcher: h.batcher, attrs: merged}
}

func (h *PGHandler) WithGroup(name string) slog.Handler {
	return h
}
