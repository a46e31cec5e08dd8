//go:build !redisstore && !mongostore

package main

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record/pgstore"
)

const backendName = "postgres"

func openStore(_ context.Context, _ *config.Config) (record.Store, func(), error) {
	if err := database.MigrateRecords(database.DB); err != nil {
		return nil, nil, err
	}
	return pgstore.New(database.DB), func() {}, nil
}
