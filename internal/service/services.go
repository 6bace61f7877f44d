package service

import (
	"github.com/the-momentum/open-wearables-sync/internal/adapter"
	"github.com/the-momentum/open-wearables-sync/internal/config"
	"github.com/the-momentum/open-wearables-sync/internal/credentials"
	"github.com/the-momentum/open-wearables-sync/internal/logger"
	"github.com/the-momentum/open-wearables-sync/internal/provider"
	"github.com/the-momentum/open-wearables-sync/internal/store"
	"github.com/the-momentum/open-wearables-sync/models"
)

type Services struct {
	Orchestrator SyncOrchestrator
	Transmitter  ChunkTransmitter
	Refresher    TokenRefresher
	Trigger      *SyncTrigger
	Sweeper      *OutboxSweeper
}

// NewServices wires the engine core from its collaborators. The budget is
// injected rather than built here so embedders can supply a host-specific
// execution window; pass [UnlimitedBudget] for daemon deployments.
func NewServices(
	storages *store.Storages,
	remote adapter.RemoteAdapter,
	prov provider.Provider,
	creds credentials.Store,
	budget ExecutionBudget,
	cfg *config.EngineConfig,
	log *logger.Logger,
) *Services {
	refresher := NewTokenRefresher(remote, creds, log)

	transmitter := NewChunkTransmitter(
		storages.Outbox,
		storages.SyncState,
		remote,
		creds,
		refresher,
		models.AuthMode(cfg.App.AuthMode),
		cfg.Workers.SweepMinAge,
		log,
	)

	orchestrator := NewSyncOrchestrator(
		prov,
		transmitter,
		storages.SyncState,
		storages.Outbox,
		creds,
		budget,
		trackedTypes(cfg.App.TrackedTypes),
		cfg.Limits.ForegroundChunkSize,
		cfg.Limits.BackgroundChunkSize,
		log,
	)

	return &Services{
		Orchestrator: orchestrator,
		Transmitter:  transmitter,
		Refresher:    refresher,
		Trigger:      NewSyncTrigger(orchestrator, cfg.Workers.DebounceWindow, log),
		Sweeper:      NewOutboxSweeper(transmitter, cfg.Workers.SweepInterval, log),
	}
}

func trackedTypes(names []string) []models.RecordType {
	types := make([]models.RecordType, 0, len(names))
	for _, n := range names {
		types = append(types, models.RecordType(n))
	}
	return types
}
