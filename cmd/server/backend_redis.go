//go:build redisstore

package main

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record/redisstore"
)

const backendName = "redis"

func openStore(ctx context.Context, cfg *config.Config) (record.Store, func(), error) {
	store, err := redisstore.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.AppKeyPrefix)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		if err := store.Close(); err != nil {
			slog.Error("redis close error", "error", err)
		}
	}, nil
}
