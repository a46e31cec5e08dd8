// Package recordtest holds the behavior every record.Store backend must share.
package recordtest

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreSuite exercises a Store produced by newStore. Each subtest gets a
// fresh user id, so one store may serve every subtest.
func RunStoreSuite(t *testing.T, newStore func(t *testing.T) record.Store) {
	t.Run("first load creates empty record", func(t *testing.T) {
		s := newStore(t)
		rec, err := s.Load(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.Empty(t, rec.Colleges)
		assert.NotNil(t, rec.Colleges)
		assert.Nil(t, rec.Essays.CommonApp)

		out, err := json.Marshal(rec)
		require.NoError(t, err)
		assert.Contains(t, string(out), `"colleges":[]`)
	})

	t.Run("save partial touches one field", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := uuid.New()

		require.NoError(t, s.SavePartial(ctx, id, record.FieldStudentInfo, json.RawMessage(`{"name":"Ada","gpa":"3.9"}`)))
		require.NoError(t, s.SavePartial(ctx, id, record.FieldColleges, json.RawMessage(`[{"name":"Rice University","type":"Target","status":"Not Started"}]`)))

		rec, err := s.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Ada", rec.StudentInfo.Name)
		assert.Equal(t, record.Text("3.9"), rec.StudentInfo.GPA)
		require.Len(t, rec.Colleges, 1)
		assert.Equal(t, "Rice University", rec.Colleges[0].Name)
		assert.Empty(t, rec.Activities)
	})

	t.Run("same field is last write wins", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := uuid.New()

		require.NoError(t, s.SavePartial(ctx, id, record.FieldRecommenders, json.RawMessage(`[{"name":"First"}]`)))
		require.NoError(t, s.SavePartial(ctx, id, record.FieldRecommenders, json.RawMessage(`[{"name":"Second"}]`)))

		rec, err := s.Load(ctx, id)
		require.NoError(t, err)
		require.Len(t, rec.Recommenders, 1)
		assert.Equal(t, "Second", rec.Recommenders[0].Name)
	})

	t.Run("load after save keeps data", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := uuid.New()

		_, err := s.Load(ctx, id)
		require.NoError(t, err)
		require.NoError(t, s.SavePartial(ctx, id, record.FieldDailyActivities, json.RawMessage(`[{"date":"2025-10-01","activity":"Drafted essay"}]`)))
		_, err = s.Load(ctx, id)
		require.NoError(t, err)

		rec, err := s.Load(ctx, id)
		require.NoError(t, err)
		require.Len(t, rec.DailyActivities, 1)
		assert.Equal(t, "Drafted essay", rec.DailyActivities[0].Activity)
	})

	t.Run("concurrent saves to different fields", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id := uuid.New()
		_, err := s.Load(ctx, id)
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs[0] = s.SavePartial(ctx, id, record.FieldColleges, json.RawMessage(`[{"name":"Duke University","type":"Reach","status":"In Progress"}]`))
		}()
		go func() {
			defer wg.Done()
			errs[1] = s.SavePartial(ctx, id, record.FieldEssays, json.RawMessage(`{"commonApp":{"prompt":2,"content":"<p>hi</p>","wordCount":1}}`))
		}()
		wg.Wait()
		require.NoError(t, errs[0])
		require.NoError(t, errs[1])

		rec, err := s.Load(ctx, id)
		require.NoError(t, err)
		require.Len(t, rec.Colleges, 1)
		require.NotNil(t, rec.Essays.CommonApp)
		assert.Equal(t, 2, rec.Essays.CommonApp.Prompt)
	})

	t.Run("users are isolated", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		a, b := uuid.New(), uuid.New()

		require.NoError(t, s.SavePartial(ctx, a, record.FieldActivities, json.RawMessage(`[{"name":"Robotics"}]`)))

		rec, err := s.Load(ctx, b)
		require.NoError(t, err)
		assert.Empty(t, rec.Activities)
	})
}
