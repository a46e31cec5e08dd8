package models

import (
	"time"

	"gorm.io/datatypes"
)

// UserData is the relational shape of a user record: one row per user,
// one jsonb column per top-level field.
type UserData struct {
	UserID          string         `gorm:"type:uuid;primaryKey" json:"user_id"`
	StudentInfo     datatypes.JSON `gorm:"type:jsonb" json:"student_info"`
	Colleges        datatypes.JSON `gorm:"type:jsonb" json:"colleges"`
	Essays          datatypes.JSON `gorm:"type:jsonb" json:"essays"`
	Activities      datatypes.JSON `gorm:"type:jsonb" json:"activities"`
	Recommenders    datatypes.JSON `gorm:"type:jsonb" json:"recommenders"`
	DailyActivities datatypes.JSON `gorm:"type:jsonb" json:"daily_activities"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (UserData) TableName() string {
	return "user_data"
}
