// Package redisstore keeps each user record in a Redis hash with one hash
// field per record field.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

type Store struct {
	rdb    goredis.UniversalClient
	prefix string
}

// New wraps an existing client. Keys are "<prefix>_data_<userID>".
func New(rdb goredis.UniversalClient, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

// Dial connects and pings before returning.
func Dial(ctx context.Context, addr, password string, db int, prefix string) (*Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(rdb, prefix), nil
}

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) Key(userID uuid.UUID) string {
	return fmt.Sprintf("%s_data_%s", s.prefix, userID)
}

func (s *Store) Load(ctx context.Context, userID uuid.UUID) (*record.UserRecord, error) {
	key := s.Key(userID)

	// HSETNX leaves fields written by earlier saves untouched.
	_, err := s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, f := range record.Fields {
			pipe.HSetNX(ctx, key, string(f), []byte(f.EmptyValue()))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s: %w", key, err)
	}

	vals, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}

	raw := make(map[record.Field]json.RawMessage, len(vals))
	for name, v := range vals {
		f, err := record.ParseField(name)
		if err != nil {
			continue
		}
		raw[f] = json.RawMessage(v)
	}
	return record.Assemble(raw)
}

func (s *Store) SavePartial(ctx context.Context, userID uuid.UUID, field record.Field, value json.RawMessage) error {
	key := s.Key(userID)
	if err := s.rdb.HSet(ctx, key, string(field), []byte(value)).Err(); err != nil {
		return fmt.Errorf("failed to save %s.%s: %w", key, field, err)
	}
	return nil
}
