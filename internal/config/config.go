// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Momentum

package config

import (
	"time"
)

// EngineConfig is the top-level configuration container for the sync engine.
// It aggregates all sub-configurations and is populated by merging values
// from environment variables, command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env:       direct environment variable name for scalar fields.
type EngineConfig struct {
	// App holds application-level settings: auth mode, tracked record
	// types, and the application version.
	App App `envPrefix:"APP_"`

	// Remote holds settings for the collection endpoint the engine
	// delivers chunks to.
	Remote Remote `envPrefix:"REMOTE_"`

	// Storage holds persistence settings: the embedded state database,
	// the credential file, and the replay provider's data directory.
	Storage Storage `envPrefix:"STORAGE_"`

	// Workers holds timing settings for the background workers (outbox
	// sweep, connectivity probe, trigger debounce).
	Workers Workers `envPrefix:"WORKERS_"`

	// Limits holds chunk sizing for foreground and constrained execution.
	Limits Limits `envPrefix:"LIMITS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the WEARSYNC_CONFIG environment variable or the
	// -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration.
type App struct {
	// AuthMode selects request authorization: "token" (bearer token with
	// refresh rotation) or "api_key" (static key header).
	// Env: WEARSYNC_APP_AUTH_MODE
	AuthMode string `env:"AUTH_MODE"`

	// APIKeyHeader is the header name carrying the API key when AuthMode
	// is "api_key". Defaults to "X-Api-Key".
	// Env: WEARSYNC_APP_API_KEY_HEADER
	APIKeyHeader string `env:"API_KEY_HEADER"`

	// TrackedTypes is the ordered list of record types the engine syncs.
	// Order is significant: types are drained in this order and the resume
	// pointer indexes into it. Empty means the built-in default order.
	// Env: WEARSYNC_APP_TRACKED_TYPES (comma-separated)
	TrackedTypes []string `env:"TRACKED_TYPES"`

	// Version is the semantic version of the running binary.
	// Env: WEARSYNC_APP_VERSION
	Version string `env:"VERSION"`
}

// Remote holds collection-endpoint settings.
type Remote struct {
	// BaseURL is the collection endpoint base, e.g. "https://api.example.com".
	// Env: WEARSYNC_REMOTE_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// RequestTimeout bounds a single delivery or refresh request.
	// Env: WEARSYNC_REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage holds persistence settings.
type Storage struct {
	// DB holds the embedded state database settings.
	DB DB `envPrefix:"DB_"`

	// CredentialsFile is the path of the JSON credential file managed by
	// the file-backed credential store.
	// Env: WEARSYNC_STORAGE_CREDENTIALS_FILE
	CredentialsFile string `env:"CREDENTIALS_FILE"`

	// DataDir is the directory the replay provider reads per-type record
	// files from. Unused when a platform provider is injected.
	// Env: WEARSYNC_STORAGE_DATA_DIR
	DataDir string `env:"DATA_DIR"`
}

// DB holds connection settings for the embedded SQLite database that stores
// sync sessions, per-type progress, and outbox items.
type DB struct {
	// DSN is the SQLite file path (e.g. "~/.wearsync/state.db").
	// Env: WEARSYNC_STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Workers holds background worker timing.
type Workers struct {
	// SweepInterval is how often the outbox sweep runs.
	// Env: WEARSYNC_WORKERS_SWEEP_INTERVAL
	SweepInterval time.Duration `env:"SWEEP_INTERVAL"`

	// SweepMinAge is the minimum age of a staged outbox item before the
	// sweep re-attempts it; younger items are assumed still owned by the
	// main delivery path.
	// Env: WEARSYNC_WORKERS_SWEEP_MIN_AGE
	SweepMinAge time.Duration `env:"SWEEP_MIN_AGE"`

	// DebounceWindow coalesces bursts of externally triggered sync
	// requests into a single invocation.
	// Env: WEARSYNC_WORKERS_DEBOUNCE_WINDOW
	DebounceWindow time.Duration `env:"DEBOUNCE_WINDOW"`

	// ProbeInterval is how often the connectivity monitor polls.
	// Env: WEARSYNC_WORKERS_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// SettleDelay is the pause after a reconnect before a resume is
	// triggered, letting the link stabilise.
	// Env: WEARSYNC_WORKERS_SETTLE_DELAY
	SettleDelay time.Duration `env:"SETTLE_DELAY"`
}

// Limits holds chunk sizing.
type Limits struct {
	// ForegroundChunkSize is the provider query limit under normal
	// execution.
	// Env: WEARSYNC_LIMITS_FOREGROUND_CHUNK_SIZE
	ForegroundChunkSize int `env:"FOREGROUND_CHUNK_SIZE"`

	// BackgroundChunkSize is the smaller limit used when the execution
	// budget reports constrained mode.
	// Env: WEARSYNC_LIMITS_BACKGROUND_CHUNK_SIZE
	BackgroundChunkSize int `env:"BACKGROUND_CHUNK_SIZE"`
}

// GetEngineConfig loads, merges, and validates the engine configuration from
// all available sources in the following priority order (first non-zero
// value wins during the mergo merge):
//  1. Environment variables
//  2. Command-line flag overrides (assembled by the CLI layer)
//  3. JSON file (path resolved from sources 1 and 2)
//
// flagOverrides may be nil when no CLI flags apply.
//
// Returns a fully populated *EngineConfig or an error if any source fails to
// load or the final config fails validation.
func GetEngineConfig(flagOverrides *EngineConfig) (*EngineConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(flagOverrides).
		withJSON().
		build()
}
