package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/models"
	"gorm.io/gorm"
)

// Retention says how long each append-only table keeps its rows.
type Retention struct {
	SystemLogs time.Duration
	Activities time.Duration
}

// StartCleanup runs a daily goroutine that prunes system_logs and
// user_activities past their retention.
func StartCleanup(db *gorm.DB, retention Retention, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				Prune(db, retention, time.Now())
			case <-done:
				return
			}
		}
	}()
}

// Prune deletes expired rows once. A zero retention keeps rows forever.
func Prune(db *gorm.DB, retention Retention, now time.Time) {
	if retention.SystemLogs > 0 {
		prune(db, "system_logs", now.Add(-retention.SystemLogs), &models.SystemLog{})
	}
	if retention.Activities > 0 {
		prune(db, "user_activities", now.Add(-retention.Activities), &models.UserActivity{})
	}
}

func prune(db *gorm.DB, table string, cutoff time.Time, model interface{}) {
	result := db.Where("timestamp < ?", cutoff).Delete(model)
	if result.Error != nil {
		slog.Error("log cleanup failed", "table", table, "error", result.Error)
	} else if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "table", table, "deleted", result.RowsAffected)
	}
}
