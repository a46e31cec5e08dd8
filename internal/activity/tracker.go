// Package activity records the per-user audit trail in user_activities.
package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/batch"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/session"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	Click       = "click"
	PageView    = "page_view"
	AIPrompt    = "ai_prompt"
	AIResponse  = "ai_response"
	FormSubmit  = "form_submit"
	DataSave    = "data_save"
	DataLoad    = "data_load"
	ButtonClick = "button_click"
	Navigation  = "navigation"
	Login       = "login"
	Logout      = "logout"
	Register    = "register"
	Error       = "error"
	Export      = "export"
	Import      = "import"
	Search      = "search"
	Filter      = "filter"
	ModalOpen   = "modal_open"
	ModalClose  = "modal_close"
)

var knownTypes = map[string]bool{
	Click: true, PageView: true, AIPrompt: true, AIResponse: true, FormSubmit: true,
	DataSave: true, DataLoad: true, ButtonClick: true, Navigation: true, Login: true,
	Logout: true, Register: true, Error: true, Export: true, Import: true,
	Search: true, Filter: true, ModalOpen: true, ModalClose: true,
}

var ErrUnknownType = errors.New("unknown activity type")

func ValidType(t string) bool { return knownTypes[t] }

// Tracker buffers activity rows and writes them in batches. Track never
// blocks on the database and never fails the caller.
type Tracker struct {
	db      *gorm.DB
	batcher *batch.Batcher[models.UserActivity]
	now     func() time.Time
}

func NewTracker(db *gorm.DB) *Tracker {
	return NewTrackerWithBatching(db, batch.DefaultSize, batch.DefaultInterval)
}

func NewTrackerWithBatching(db *gorm.DB, size int, interval time.Duration) *Tracker {
	return &Tracker{
		db:      db,
		batcher: batch.New[models.UserActivity](db, "user_activities", size, interval),
		now:     time.Now,
	}
}

// Track enqueues an event. Anonymous sessions and unknown types are dropped.
func (t *Tracker) Track(_ context.Context, sess session.Session, activityType string, details map[string]any) {
	if !sess.Authenticated() {
		return
	}
	if !ValidType(activityType) {
		slog.Warn("dropping activity with unknown type", "activity_type", activityType, "user_id", sess.UserID.String())
		return
	}

	row, err := t.row(sess, activityType, details, "")
	if err != nil {
		slog.Warn("dropping activity", "activity_type", activityType, "error", err)
		return
	}
	t.batcher.Add(row)
}

// Event is a client-reported activity.
type Event struct {
	Type      string         `json:"activity_type"`
	Details   map[string]any `json:"details"`
	PageURL   string         `json:"page_url"`
	PageTitle string         `json:"page_title"`
}

// Record validates and enqueues a client-reported event.
func (t *Tracker) Record(ctx context.Context, sess session.Session, ev Event) error {
	if err := sess.Require("activity.record"); err != nil {
		return err
	}
	if !ValidType(ev.Type) {
		return apperr.Validation("activity.record", fmt.Errorf("%w: %q", ErrUnknownType, ev.Type))
	}
	if ev.PageURL != "" {
		sess.PageURL = ev.PageURL
	}
	row, err := t.row(sess, ev.Type, ev.Details, ev.PageTitle)
	if err != nil {
		return err
	}
	t.batcher.Add(row)
	return nil
}

func (t *Tracker) row(sess session.Session, activityType string, details map[string]any, pageTitle string) (models.UserActivity, error) {
	if details == nil {
		details = map[string]any{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return models.UserActivity{}, fmt.Errorf("failed to encode details: %w", err)
	}
	if pageTitle == "" {
		pageTitle, _ = details["page_title"].(string)
	}
	return models.UserActivity{
		UserID:       sess.UserID,
		SessionID:    sess.SessionID,
		ActivityType: activityType,
		Details:      datatypes.JSON(raw),
		PageURL:      sess.PageURL,
		PageTitle:    pageTitle,
		UserAgent:    sess.UserAgent,
		Timestamp:    t.now().UTC(),
	}, nil
}

// Recent returns the user's latest activities, newest first.
func (t *Tracker) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]models.UserActivity, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows []models.UserActivity
	err := t.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return rows, nil
}

// Flush writes buffered rows now.
func (t *Tracker) Flush() { t.batcher.Flush() }

// Stop flushes and stops the background writer.
func (t *Tracker) Stop() { t.batcher.Stop() }
