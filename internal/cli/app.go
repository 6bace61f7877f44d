// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Momentum

package cli

import (
	"fmt"

	"github.com/the-momentum/open-wearables-sync/internal/adapter"
	"github.com/the-momentum/open-wearables-sync/internal/config"
	"github.com/the-momentum/open-wearables-sync/internal/credentials"
	"github.com/the-momentum/open-wearables-sync/internal/logger"
	"github.com/the-momentum/open-wearables-sync/internal/provider/replay"
	"github.com/the-momentum/open-wearables-sync/internal/service"
	"github.com/the-momentum/open-wearables-sync/internal/store"
)

// app bundles everything a command needs after bootstrap.
type app struct {
	cfg      *config.EngineConfig
	logger   *logger.Logger
	creds    credentials.Store
	remote   adapter.RemoteAdapter
	services *service.Services
}

// newApp loads configuration, opens storage, and wires the engine. Every
// command goes through here so flag and env handling stay uniform.
func newApp(opts *RootOptions) (*app, error) {
	log := logger.NewFileLogger("wearsync")

	cfg, err := config.GetEngineConfig(opts.flagOverrides())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	storages, err := store.NewStorages(cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	remote := adapter.NewHTTPRemoteAdapter(adapter.HTTPClientConfig{
		BaseURL:      cfg.Remote.BaseURL,
		APIKeyHeader: cfg.App.APIKeyHeader,
		Timeout:      cfg.Remote.RequestTimeout,
	})

	creds := credentials.NewFileStore(cfg.Storage.CredentialsFile)
	if cred, err := creds.Get(); err == nil {
		remote.SetCredential(cred)
	}

	prov := replay.New(cfg.Storage.DataDir)

	services := service.NewServices(storages, remote, prov, creds, service.UnlimitedBudget{}, cfg, log)

	return &app{
		cfg:      cfg,
		logger:   log,
		creds:    creds,
		remote:   remote,
		services: services,
	}, nil
}
