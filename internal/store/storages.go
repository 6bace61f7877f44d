package store

import (
	"context"
	"fmt"

	"github.com/the-momentum/open-wearables-sync/internal/config"
	"github.com/the-momentum/open-wearables-sync/internal/logger"
)

// Storages groups the engine's repositories into a single value that can be
// passed to the service layer.
type Storages struct {
	// SyncState is the repository for sync sessions and per-type progress.
	SyncState SyncStateRepository

	// Outbox is the repository for staged chunks awaiting delivery.
	Outbox OutboxRepository
}

// NewStorages initialises the storage layer: opens the SQLite state
// database (creating the file if needed), runs pending migrations, and
// wires the repositories.
func NewStorages(cfg config.Storage, log *logger.Logger) (*Storages, error) {
	log.Info().Msg("opening state database...")

	db, err := NewConnectSQLite(context.Background(), cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		SyncState: NewSyncStateRepository(db, log),
		Outbox:    NewOutboxRepository(db, log),
	}, nil
}
