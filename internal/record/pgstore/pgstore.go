// Package pgstore keeps user records in the relational user_data table,
// one jsonb column per field.
package pgstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func emptyRow(userID uuid.UUID) models.UserData {
	return models.UserData{
		UserID:          userID.String(),
		StudentInfo:     datatypes.JSON(record.FieldStudentInfo.EmptyValue()),
		Colleges:        datatypes.JSON(record.FieldColleges.EmptyValue()),
		Essays:          datatypes.JSON(record.FieldEssays.EmptyValue()),
		Activities:      datatypes.JSON(record.FieldActivities.EmptyValue()),
		Recommenders:    datatypes.JSON(record.FieldRecommenders.EmptyValue()),
		DailyActivities: datatypes.JSON(record.FieldDailyActivities.EmptyValue()),
	}
}

func setColumn(row *models.UserData, field record.Field, value json.RawMessage) {
	v := datatypes.JSON(value)
	switch field {
	case record.FieldStudentInfo:
		row.StudentInfo = v
	case record.FieldColleges:
		row.Colleges = v
	case record.FieldEssays:
		row.Essays = v
	case record.FieldActivities:
		row.Activities = v
	case record.FieldRecommenders:
		row.Recommenders = v
	case record.FieldDailyActivities:
		row.DailyActivities = v
	}
}

func (s *Store) Load(ctx context.Context, userID uuid.UUID) (*record.UserRecord, error) {
	row := emptyRow(userID)
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to initialize user data: %w", err)
	}

	var stored models.UserData
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID.String()).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("failed to load user data: %w", err)
	}

	return record.Assemble(map[record.Field]json.RawMessage{
		record.FieldStudentInfo:     json.RawMessage(stored.StudentInfo),
		record.FieldColleges:        json.RawMessage(stored.Colleges),
		record.FieldEssays:          json.RawMessage(stored.Essays),
		record.FieldActivities:      json.RawMessage(stored.Activities),
		record.FieldRecommenders:    json.RawMessage(stored.Recommenders),
		record.FieldDailyActivities: json.RawMessage(stored.DailyActivities),
	})
}

// SavePartial upserts the row and rewrites only field's column.
func (s *Store) SavePartial(ctx context.Context, userID uuid.UUID, field record.Field, value json.RawMessage) error {
	row := emptyRow(userID)
	setColumn(&row, field, value)

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{field.Column(), "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", field, err)
	}
	return nil
}
