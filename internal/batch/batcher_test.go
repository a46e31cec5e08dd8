package batch_test

import (
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/batch"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStopFlushesBufferedRows(t *testing.T) {
	db := testutil.NewDB(t)
	b := batch.New[models.UserActivity](db, "test", 10, time.Hour)

	userID := uuid.New()
	for i := 0; i < 3; i++ {
		b.Add(models.UserActivity{UserID: userID, ActivityType: "click", Timestamp: time.Now()})
	}
	b.Stop()

	var count int64
	require.NoError(t, db.Model(&models.UserActivity{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestFullBufferFlushesWithoutWaitingForTicker(t *testing.T) {
	db := testutil.NewDB(t)
	b := batch.New[models.UserActivity](db, "test", 2, time.Hour)
	defer b.Stop()

	userID := uuid.New()
	b.Add(models.UserActivity{UserID: userID, ActivityType: "click", Timestamp: time.Now()})
	b.Add(models.UserActivity{UserID: userID, ActivityType: "click", Timestamp: time.Now()})

	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&models.UserActivity{}).Where("user_id = ?", userID).Count(&count)
		return count == 2
	}, 2*time.Second, 20*time.Millisecond)
}

func TestStopIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	b := batch.New[models.SystemLog](db, "test", 0, 0)
	b.Stop()
	b.Stop()
}

func TestAddAfterStopWritesImmediately(t *testing.T) {
	db := testutil.NewDB(t)
	b := batch.New[models.UserActivity](db, "test", 10, time.Hour)
	b.Stop()

	userID := uuid.New()
	b.Add(models.UserActivity{UserID: userID, ActivityType: "logout", Timestamp: time.Now()})

	var count int64
	require.NoError(t, db.Model(&models.UserActivity{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
