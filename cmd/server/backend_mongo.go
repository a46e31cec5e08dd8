//go:build mongostore && !redisstore

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record/mongostore"
)

const backendName = "mongo"

func openStore(ctx context.Context, cfg *config.Config) (record.Store, func(), error) {
	store, client, err := mongostore.Dial(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, nil, err
	}
	return store, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			slog.Error("mongo close error", "error", err)
		}
	}, nil
}
