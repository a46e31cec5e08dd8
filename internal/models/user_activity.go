package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserActivity is one row of the append-only activity log.
type UserActivity struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	SessionID    string         `gorm:"size:64;index" json:"session_id"`
	ActivityType string         `gorm:"size:32;not null;index" json:"activity_type"`
	Details      datatypes.JSON `gorm:"type:jsonb" json:"details"`
	PageURL      string         `gorm:"type:text" json:"page_url"`
	PageTitle    string         `gorm:"size:255" json:"page_title"`
	UserAgent    string         `gorm:"type:text" json:"user_agent"`
	Timestamp    time.Time      `gorm:"not null;index" json:"timestamp"`
}

func (UserActivity) TableName() string {
	return "user_activities"
}

func (a *UserActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
