// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Momentum

// Package adapter provides the transport layer for talking to the remote
// collection endpoint.
//
// The primary abstraction is [RemoteAdapter], which decouples the sync
// engine from the wire protocol. The package ships an HTTP/JSON
// implementation ([NewHTTPRemoteAdapter]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrUnauthorized] for 401, [ErrRejected] for other
// 4xx, [ErrRemoteUnavailable] for 5xx and network-level failures).
package adapter

import (
	"context"

	"github.com/the-momentum/open-wearables-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_adapter_mock.go -package=mock

// RemoteAdapter defines transport-agnostic communication with the collection
// endpoint. Implementations are responsible for auth header management and
// for mapping transport-level errors to the sentinel values defined in this
// package.
type RemoteAdapter interface {
	// SetCredential stores the credential that will be attached to all
	// subsequent requests. Depending on the credential's mode this becomes
	// either an Authorization bearer header or an API-key header.
	SetCredential(cred models.Credential)

	// SendRaw delivers a pre-serialized request body to POST /api/v1/sync.
	// Any 2xx response is success. Both the main delivery path and the
	// outbox sweep go through it: payloads are serialized once when
	// staged, and redelivery replays the exact same bytes.
	SendRaw(ctx context.Context, payload []byte) error

	// RefreshToken exchanges the refresh token for a new token pair via
	// POST /api/v1/token/refresh. It does not mutate the stored
	// credential; the caller decides what to persist.
	RefreshToken(ctx context.Context, refreshToken string) (models.TokenPair, error)
}
