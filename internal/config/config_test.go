// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Momentum

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnvVars(t *testing.T, vars map[string]string) {
	t.Helper()
	for k, v := range vars {
		t.Setenv("WEARSYNC_"+k, v)
	}
}

func writeJSONConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "wearsync.json")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestParseEnv_AllFields(t *testing.T) {
	setEnvVars(t, map[string]string{
		"CONFIG": "/etc/wearsync.json",

		"APP_AUTH_MODE":      "api_key",
		"APP_API_KEY_HEADER": "X-Custom-Key",
		"APP_TRACKED_TYPES":  "heart_rate,steps,workout",
		"APP_VERSION":        "1.2.3",

		"REMOTE_BASE_URL":        "https://collect.example.com",
		"REMOTE_REQUEST_TIMEOUT": "20s",

		"STORAGE_DB_DSN":           "/var/lib/wearsync/state.db",
		"STORAGE_CREDENTIALS_FILE": "/var/lib/wearsync/credential.json",
		"STORAGE_DATA_DIR":         "/var/lib/wearsync/data",

		"WORKERS_SWEEP_INTERVAL":  "1m",
		"WORKERS_SWEEP_MIN_AGE":   "10s",
		"WORKERS_DEBOUNCE_WINDOW": "500ms",
		"WORKERS_PROBE_INTERVAL":  "5s",
		"WORKERS_SETTLE_DELAY":    "2s",

		"LIMITS_FOREGROUND_CHUNK_SIZE": "1000",
		"LIMITS_BACKGROUND_CHUNK_SIZE": "200",
	})

	cfg := &EngineConfig{}
	err := parseEnv(cfg)

	require.NoError(t, err)
	assert.Equal(t, "/etc/wearsync.json", cfg.JSONFilePath)
	assert.Equal(t, "api_key", cfg.App.AuthMode)
	assert.Equal(t, "X-Custom-Key", cfg.App.APIKeyHeader)
	assert.Equal(t, []string{"heart_rate", "steps", "workout"}, cfg.App.TrackedTypes)
	assert.Equal(t, "https://collect.example.com", cfg.Remote.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.Remote.RequestTimeout)
	assert.Equal(t, "/var/lib/wearsync/state.db", cfg.Storage.DB.DSN)
	assert.Equal(t, time.Minute, cfg.Workers.SweepInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.Workers.DebounceWindow)
	assert.Equal(t, 1000, cfg.Limits.ForegroundChunkSize)
	assert.Equal(t, 200, cfg.Limits.BackgroundChunkSize)
}

func TestParseEnv_InvalidDuration(t *testing.T) {
	setEnvVars(t, map[string]string{"REMOTE_REQUEST_TIMEOUT": "soon"})

	err := parseEnv(&EngineConfig{})

	assert.Error(t, err)
}

func TestParseJSON_Success(t *testing.T) {
	p := writeJSONConfig(t, `{
		"app": {
			"auth_mode": "token",
			"tracked_types": ["heart_rate", "sleep_analysis"]
		},
		"remote": {
			"base_url": "https://collect.example.com",
			"request_timeout": "30s"
		},
		"storage": {
			"db": { "dsn": "/tmp/state.db" },
			"data_dir": "/tmp/data"
		},
		"workers": {
			"sweep_interval": "2m"
		},
		"limits": {
			"foreground_chunk_size": 1500
		}
	}`)

	cfg, err := parseJSON(p)

	require.NoError(t, err)
	assert.Equal(t, "token", cfg.App.AuthMode)
	assert.Equal(t, []string{"heart_rate", "sleep_analysis"}, cfg.App.TrackedTypes)
	assert.Equal(t, "https://collect.example.com", cfg.Remote.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Remote.RequestTimeout)
	assert.Equal(t, "/tmp/state.db", cfg.Storage.DB.DSN)
	assert.Equal(t, 2*time.Minute, cfg.Workers.SweepInterval)
	assert.Equal(t, 1500, cfg.Limits.ForegroundChunkSize)
}

func TestParseJSON_NumericDuration(t *testing.T) {
	p := writeJSONConfig(t, `{"remote": {"request_timeout": 1000000000}}`)

	cfg, err := parseJSON(p)

	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Remote.RequestTimeout)
}

func TestParseJSON_MissingFile(t *testing.T) {
	_, err := parseJSON(filepath.Join(t.TempDir(), "nope.json"))

	assert.Error(t, err)
}

func TestParseJSON_MalformedBody(t *testing.T) {
	p := writeJSONConfig(t, `{"remote": `)

	_, err := parseJSON(p)

	assert.Error(t, err)
}

func TestBuild_MergePriority(t *testing.T) {
	// Earlier sources win: env beats flags, flags beat JSON.
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&EngineConfig{Remote: Remote{BaseURL: "https://from-env.example.com"}},
		&EngineConfig{
			Remote:  Remote{BaseURL: "https://from-flags.example.com"},
			Storage: Storage{DB: DB{DSN: "/tmp/state.db"}},
		},
		&EngineConfig{
			Remote: Remote{RequestTimeout: 45 * time.Second},
			App:    App{AuthMode: "api_key"},
		},
	)

	cfg, err := b.build()

	require.NoError(t, err)
	assert.Equal(t, "https://from-env.example.com", cfg.Remote.BaseURL)
	assert.Equal(t, "/tmp/state.db", cfg.Storage.DB.DSN)
	assert.Equal(t, 45*time.Second, cfg.Remote.RequestTimeout)
	assert.Equal(t, "api_key", cfg.App.AuthMode)
}

func TestBuild_AppliesDefaults(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &EngineConfig{
		Remote:  Remote{BaseURL: "https://collect.example.com"},
		Storage: Storage{DB: DB{DSN: "/tmp/state.db"}},
	})

	cfg, err := b.build()

	require.NoError(t, err)
	assert.Equal(t, "token", cfg.App.AuthMode)
	assert.Equal(t, defaultAPIKeyHeader, cfg.App.APIKeyHeader)
	assert.Equal(t, defaultRequestTimeout, cfg.Remote.RequestTimeout)
	assert.Equal(t, defaultSweepInterval, cfg.Workers.SweepInterval)
	assert.Equal(t, defaultDebounceWindow, cfg.Workers.DebounceWindow)
	assert.Equal(t, defaultFgChunkSize, cfg.Limits.ForegroundChunkSize)
	assert.Equal(t, defaultBgChunkSize, cfg.Limits.BackgroundChunkSize)
}

func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()

	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestWithJSON_PathFromEarlierSource(t *testing.T) {
	p := writeJSONConfig(t, `{
		"remote": {"base_url": "https://from-json.example.com"},
		"storage": {"db": {"dsn": "/tmp/state.db"}}
	}`)

	b := newConfigBuilder()
	b.configs = append(b.configs, &EngineConfig{JSONFilePath: p})

	cfg, err := b.withJSON().build()

	require.NoError(t, err)
	assert.Equal(t, "https://from-json.example.com", cfg.Remote.BaseURL)
}

func TestWithJSON_MissingFileSetsError(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &EngineConfig{JSONFilePath: "/does/not/exist.json"})

	_, err := b.withJSON().build()

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *EngineConfig {
		return &EngineConfig{
			App:    App{AuthMode: "token", APIKeyHeader: "X-Api-Key"},
			Remote: Remote{BaseURL: "https://collect.example.com", RequestTimeout: time.Second},
			Storage: Storage{
				DB: DB{DSN: "/tmp/state.db"},
			},
			Workers: Workers{SweepInterval: time.Minute, DebounceWindow: time.Second},
			Limits:  Limits{ForegroundChunkSize: 2000, BackgroundChunkSize: 500},
		}
	}

	tests := []struct {
		name    string
		mutate  func(cfg *EngineConfig)
		wantErr error
	}{
		{"valid config", func(cfg *EngineConfig) {}, nil},
		{"unknown auth mode", func(cfg *EngineConfig) { cfg.App.AuthMode = "magic" }, ErrInvalidAppConfigs},
		{"missing base url", func(cfg *EngineConfig) { cfg.Remote.BaseURL = "" }, ErrInvalidRemoteConfigs},
		{"empty dsn", func(cfg *EngineConfig) { cfg.Storage.DB.DSN = "" }, ErrInvalidStorageConfigs},
		{"in-memory dsn", func(cfg *EngineConfig) { cfg.Storage.DB.DSN = "file::memory:" }, ErrInvalidStorageConfigs},
		{"background exceeds foreground", func(cfg *EngineConfig) {
			cfg.Limits.BackgroundChunkSize = 5000
		}, ErrInvalidLimitConfigs},
		{"zero sweep interval", func(cfg *EngineConfig) { cfg.Workers.SweepInterval = 0 }, ErrInvalidWorkerConfigs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.validate()

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
