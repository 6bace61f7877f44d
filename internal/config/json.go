package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// EngineJSONConfig mirrors [EngineConfig] with JSON tags and string-friendly
// durations, so operators can keep one wearsync.json next to the binary.
type EngineJSONConfig struct {
	App struct {
		AuthMode     string   `json:"auth_mode"`
		APIKeyHeader string   `json:"api_key_header"`
		TrackedTypes []string `json:"tracked_types"`
		Version      string   `json:"version"`
	} `json:"app,omitempty"`

	Remote struct {
		BaseURL        string   `json:"base_url"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"remote,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
		CredentialsFile string `json:"credentials_file"`
		DataDir         string `json:"data_dir"`
	} `json:"storage,omitempty"`

	Workers struct {
		SweepInterval  Duration `json:"sweep_interval"`
		SweepMinAge    Duration `json:"sweep_min_age"`
		DebounceWindow Duration `json:"debounce_window"`
		ProbeInterval  Duration `json:"probe_interval"`
		SettleDelay    Duration `json:"settle_delay"`
	} `json:"workers,omitempty"`

	Limits struct {
		ForegroundChunkSize int `json:"foreground_chunk_size"`
		BackgroundChunkSize int `json:"background_chunk_size"`
	} `json:"limits,omitempty"`
}

func parseJSON(jsonFilePath string) (*EngineConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg EngineJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &EngineConfig{
		App: App{
			AuthMode:     jsonCfg.App.AuthMode,
			APIKeyHeader: jsonCfg.App.APIKeyHeader,
			TrackedTypes: jsonCfg.App.TrackedTypes,
			Version:      jsonCfg.App.Version,
		},
		Remote: Remote{
			BaseURL:        jsonCfg.Remote.BaseURL,
			RequestTimeout: time.Duration(jsonCfg.Remote.RequestTimeout),
		},
		Storage: Storage{
			DB:              DB{DSN: jsonCfg.Storage.DB.DSN},
			CredentialsFile: jsonCfg.Storage.CredentialsFile,
			DataDir:         jsonCfg.Storage.DataDir,
		},
		Workers: Workers{
			SweepInterval:  time.Duration(jsonCfg.Workers.SweepInterval),
			SweepMinAge:    time.Duration(jsonCfg.Workers.SweepMinAge),
			DebounceWindow: time.Duration(jsonCfg.Workers.DebounceWindow),
			ProbeInterval:  time.Duration(jsonCfg.Workers.ProbeInterval),
			SettleDelay:    time.Duration(jsonCfg.Workers.SettleDelay),
		},
		Limits: Limits{
			ForegroundChunkSize: jsonCfg.Limits.ForegroundChunkSize,
			BackgroundChunkSize: jsonCfg.Limits.BackgroundChunkSize,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
