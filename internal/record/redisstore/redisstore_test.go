package redisstore_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record/recordtest"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record/redisstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return redisstore.New(rdb, "bus2college"), mr
}

func TestStore(t *testing.T) {
	recordtest.RunStoreSuite(t, func(t *testing.T) record.Store {
		s, _ := newStore(t)
		return s
	})
}

func TestHashLayout(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, s.SavePartial(ctx, id, record.FieldColleges, json.RawMessage(`[{"name":"Duke University"}]`)))

	key := "bus2college_data_" + id.String()
	assert.Equal(t, key, s.Key(id))
	assert.JSONEq(t, `[{"name":"Duke University"}]`, mr.HGet(key, "colleges"))
	assert.Empty(t, mr.HGet(key, "essays"))

	_, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Duke University"}]`, mr.HGet(key, "colleges"))
	assert.Equal(t, "{}", mr.HGet(key, "essays"))
	assert.Equal(t, "[]", mr.HGet(key, "dailyActivities"))
}

func TestLoadReportsBackendFailure(t *testing.T) {
	s, mr := newStore(t)
	mr.Close()

	_, err := s.Load(context.Background(), uuid.New())
	assert.Error(t, err)
}
