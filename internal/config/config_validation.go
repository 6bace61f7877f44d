// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Momentum

package config

import (
	"strings"
	"time"
)

// Fallbacks applied by applyDefaults when a setting is absent from every
// source.
const (
	defaultAPIKeyHeader   = "X-Api-Key"
	defaultRequestTimeout = 15 * time.Second
	defaultSweepInterval  = 5 * time.Minute
	defaultSweepMinAge    = 30 * time.Second
	defaultDebounceWindow = 2 * time.Second
	defaultProbeInterval  = 10 * time.Second
	defaultSettleDelay    = 3 * time.Second
	defaultFgChunkSize    = 2000
	defaultBgChunkSize    = 500
)

func (cfg *EngineConfig) applyDefaults() {
	if cfg.App.AuthMode == "" {
		cfg.App.AuthMode = "token"
	}
	if cfg.App.APIKeyHeader == "" {
		cfg.App.APIKeyHeader = defaultAPIKeyHeader
	}
	if cfg.Remote.RequestTimeout == 0 {
		cfg.Remote.RequestTimeout = defaultRequestTimeout
	}
	if cfg.Workers.SweepInterval == 0 {
		cfg.Workers.SweepInterval = defaultSweepInterval
	}
	if cfg.Workers.SweepMinAge == 0 {
		cfg.Workers.SweepMinAge = defaultSweepMinAge
	}
	if cfg.Workers.DebounceWindow == 0 {
		cfg.Workers.DebounceWindow = defaultDebounceWindow
	}
	if cfg.Workers.ProbeInterval == 0 {
		cfg.Workers.ProbeInterval = defaultProbeInterval
	}
	if cfg.Workers.SettleDelay == 0 {
		cfg.Workers.SettleDelay = defaultSettleDelay
	}
	if cfg.Limits.ForegroundChunkSize == 0 {
		cfg.Limits.ForegroundChunkSize = defaultFgChunkSize
	}
	if cfg.Limits.BackgroundChunkSize == 0 {
		cfg.Limits.BackgroundChunkSize = defaultBgChunkSize
	}
}

// validate checks that the final merged [EngineConfig] satisfies all engine
// invariants before it is used at startup.
func (cfg *EngineConfig) validate() error {
	if cfg.App.AuthMode != "token" && cfg.App.AuthMode != "api_key" {
		return ErrInvalidAppConfigs
	}

	if cfg.Remote.BaseURL == "" || cfg.Remote.RequestTimeout <= 0 {
		return ErrInvalidRemoteConfigs
	}

	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Limits.BackgroundChunkSize > cfg.Limits.ForegroundChunkSize {
		return ErrInvalidLimitConfigs
	}

	if cfg.Workers.SweepInterval <= 0 || cfg.Workers.DebounceWindow <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
