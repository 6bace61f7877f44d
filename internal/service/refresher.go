package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/the-momentum/open-wearables-sync/internal/adapter"
	"github.com/the-momentum/open-wearables-sync/internal/credentials"
	"github.com/the-momentum/open-wearables-sync/internal/logger"
)

type tokenRefresher struct {
	remote adapter.RemoteAdapter
	creds  credentials.Store
	logger *logger.Logger

	group singleflight.Group
}

// NewTokenRefresher creates the single-flight refresh coordinator. However
// many callers hit a 401 concurrently, at most one refresh request is in
// flight; all callers receive the shared result.
func NewTokenRefresher(remote adapter.RemoteAdapter, creds credentials.Store, logger *logger.Logger) TokenRefresher {
	return &tokenRefresher{remote: remote, creds: creds, logger: logger}
}

func (r *tokenRefresher) Refresh(ctx context.Context) error {
	_, err, shared := r.group.Do("token-refresh", func() (any, error) {
		return nil, r.doRefresh(ctx)
	})
	if shared {
		r.logger.Debug().Str("func", "tokenRefresher.Refresh").Msg("joined in-flight refresh")
	}
	return err
}

// doRefresh performs the actual exchange. Stored credentials are mutated
// only on success; a failed refresh leaves them untouched so callers can
// decide whether to surface an auth error.
func (r *tokenRefresher) doRefresh(ctx context.Context) error {
	cred, err := r.creds.Get()
	if err != nil {
		return fmt.Errorf("load credential for refresh: %w: %w", ErrAuthFailed, err)
	}
	if cred.RefreshToken == "" {
		return fmt.Errorf("no refresh token stored: %w", ErrAuthFailed)
	}

	pair, err := r.remote.RefreshToken(ctx, cred.RefreshToken)
	if err != nil {
		return fmt.Errorf("refresh token exchange: %w", err)
	}

	cred.AccessToken = pair.AccessToken
	if pair.RefreshToken != "" {
		cred.RefreshToken = pair.RefreshToken
	}
	if key, kerr := credentials.UserKeyFromToken(pair.AccessToken); kerr == nil {
		cred.UserKey = key
	}

	if err = r.creds.Set(cred); err != nil {
		return fmt.Errorf("persist refreshed credential: %w", err)
	}
	r.remote.SetCredential(cred)

	r.logger.Info().Str("func", "tokenRefresher.Refresh").Msg("credential refreshed")
	return nil
}
