package config

import "errors"

// Validation errors returned by [EngineConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAppConfigs indicates invalid application-level settings
	// (for example, an unknown auth mode).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidRemoteConfigs indicates invalid collection-endpoint
	// settings (missing base URL or non-positive timeout).
	ErrInvalidRemoteConfigs = errors.New("invalid remote configuration")
	// ErrInvalidStorageConfigs indicates invalid storage settings (empty
	// DSN or unsupported in-memory DSN).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidWorkerConfigs indicates invalid background worker settings
	// (non-positive sweep interval or debounce window).
	ErrInvalidWorkerConfigs = errors.New("invalid worker configuration")
	// ErrInvalidLimitConfigs indicates the background chunk size exceeds
	// the foreground one.
	ErrInvalidLimitConfigs = errors.New("invalid limits configuration")
)
