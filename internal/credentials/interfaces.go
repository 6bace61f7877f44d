// Package credentials persists the engine's capability token: user key plus
// access/refresh token or API key. The engine reads current values and
// rotates tokens after a refresh; everything else about credential lifecycle
// (initial authorization, revocation UI) lives outside the engine.
package credentials

import "github.com/the-momentum/open-wearables-sync/models"

//go:generate mockgen -source=interfaces.go -destination=../mock/credential_store_mock.go -package=mock

// Store is the credential storage contract consumed by the sync engine.
type Store interface {
	// Get returns the stored credential, or [ErrNoCredential] when none
	// has been saved yet (or it was cleared).
	Get() (models.Credential, error)

	// Set replaces the stored credential atomically.
	Set(cred models.Credential) error

	// Clear removes the stored credential. Clearing an empty store is a
	// no-op.
	Clear() error
}
