package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/the-momentum/open-wearables-sync/internal/adapter"
	"github.com/the-momentum/open-wearables-sync/internal/credentials"
	"github.com/the-momentum/open-wearables-sync/internal/logger"
	"github.com/the-momentum/open-wearables-sync/internal/store"
	"github.com/the-momentum/open-wearables-sync/models"
)

// sweepAttempts bounds per-item delivery retries inside one sweep pass;
// items that still fail stay staged for the next pass.
const sweepAttempts = 2

type chunkTransmitter struct {
	outbox    store.OutboxRepository
	states    store.SyncStateRepository
	remote    adapter.RemoteAdapter
	creds     credentials.Store
	refresher TokenRefresher
	logger    *logger.Logger

	authMode    models.AuthMode
	sweepMinAge time.Duration
}

// NewChunkTransmitter creates the outbox-backed delivery core.
func NewChunkTransmitter(
	outbox store.OutboxRepository,
	states store.SyncStateRepository,
	remote adapter.RemoteAdapter,
	creds credentials.Store,
	refresher TokenRefresher,
	authMode models.AuthMode,
	sweepMinAge time.Duration,
	logger *logger.Logger,
) ChunkTransmitter {
	return &chunkTransmitter{
		outbox:      outbox,
		states:      states,
		remote:      remote,
		creds:       creds,
		refresher:   refresher,
		authMode:    authMode,
		sweepMinAge: sweepMinAge,
		logger:      logger,
	}
}

func (t *chunkTransmitter) Send(ctx context.Context, chunk models.Chunk, cursorCandidate string) (SendResult, error) {
	req := models.NewSyncRequest(chunk)

	payload, err := json.Marshal(req)
	if err != nil {
		return SendResult{}, fmt.Errorf("serialize chunk payload: %w", err)
	}

	item := models.OutboxItem{
		ID:            uuid.NewString(),
		UserKey:       chunk.UserKey,
		TypeTag:       chunk.Type.String(),
		Payload:       payload,
		PendingCursor: cursorCandidate,
		FullExport:    chunk.FullExport,
		CreatedAt:     time.Now().UTC(),
	}

	// Durability first: the chunk must survive a crash between here and
	// the acknowledgment. The sweep pass recovers whatever this process
	// never reconciled.
	if err = t.outbox.Put(ctx, item); err != nil {
		return SendResult{}, fmt.Errorf("stage chunk: %w", err)
	}

	return t.deliver(ctx, item, false)
}

// deliver performs one network attempt for a staged item and reconciles
// the outcome. retried is true on the post-refresh attempt: a second 401
// is terminal.
func (t *chunkTransmitter) deliver(ctx context.Context, item models.OutboxItem, retried bool) (SendResult, error) {
	log := t.logger.With().
		Str("item_id", item.ID).
		Str("type_tag", item.TypeTag).
		Logger()

	if err := t.attachCredential(); err != nil {
		return SendResult{}, err
	}

	err := t.remote.SendRaw(ctx, item.Payload)
	switch {
	case err == nil:
		return t.reconcile(ctx, item)

	case errors.Is(err, adapter.ErrUnauthorized):
		if t.authMode == models.AuthModeAPIKey {
			return SendResult{}, fmt.Errorf("api key rejected: %w", ErrAuthFailed)
		}
		if retried {
			return SendResult{}, fmt.Errorf("still unauthorized after refresh: %w", ErrAuthFailed)
		}
		if rerr := t.refresher.Refresh(ctx); rerr != nil {
			return SendResult{}, fmt.Errorf("token refresh: %w: %w", ErrAuthFailed, rerr)
		}
		return t.deliver(ctx, item, true)

	case errors.Is(err, adapter.ErrRejected):
		// Permanently rejected chunk: drop it so the type keeps moving,
		// but never move the cursor past data the endpoint refused. The
		// log line below is the only durable record of the gap.
		log.Warn().Err(err).
			Int("payload_bytes", len(item.Payload)).
			Msg("chunk permanently rejected by endpoint, dropping")
		if derr := t.outbox.Delete(ctx, item.ID); derr != nil {
			return SendResult{}, fmt.Errorf("drop rejected chunk: %w", derr)
		}
		return SendResult{Acked: true, CursorAdvanced: false}, nil

	default:
		// Network-level failure: the staged item stays for the sweep.
		if aerr := t.outbox.IncrementAttempts(ctx, item.ID); aerr != nil {
			log.Err(aerr).Msg("failed to record delivery attempt")
		}
		return SendResult{}, fmt.Errorf("deliver chunk: %w", err)
	}
}

// reconcile is the single point where a cursor may advance: strictly after
// a 2xx acknowledgment, cursor first, then the staged item is removed.
// Both steps are idempotent because the sweep may race the main path.
func (t *chunkTransmitter) reconcile(ctx context.Context, item models.OutboxItem) (SendResult, error) {
	advanced := false
	if item.PendingCursor != "" && item.TypeTag != models.OutboxTypeCombined {
		err := t.states.AdvanceCursor(ctx, item.UserKey, models.RecordType(item.TypeTag), item.PendingCursor)
		if err != nil {
			return SendResult{}, fmt.Errorf("persist acknowledged cursor: %w", err)
		}
		advanced = true
	}

	if err := t.outbox.Delete(ctx, item.ID); err != nil {
		return SendResult{}, fmt.Errorf("remove delivered chunk: %w", err)
	}

	return SendResult{Acked: true, CursorAdvanced: advanced}, nil
}

func (t *chunkTransmitter) attachCredential() error {
	cred, err := t.creds.Get()
	if err != nil {
		return fmt.Errorf("load credential: %w: %w", ErrAuthFailed, err)
	}
	t.remote.SetCredential(cred)
	return nil
}

// Sweep scans staged items older than the minimum age and re-attempts
// delivery with current credentials. Runs periodically and right after a
// reconnect.
func (t *chunkTransmitter) Sweep(ctx context.Context) error {
	cred, err := t.creds.Get()
	if err != nil {
		if errors.Is(err, credentials.ErrNoCredential) {
			return nil
		}
		return fmt.Errorf("load credential for sweep: %w", err)
	}

	items, err := t.outbox.ListOlderThan(ctx, cred.UserKey, t.sweepMinAge)
	if err != nil {
		return fmt.Errorf("list staged chunks: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	t.logger.Info().
		Str("func", "chunkTransmitter.Sweep").
		Int("staged", len(items)).
		Msg("re-attempting staged chunk delivery")

	for _, item := range items {
		backoff := retry.WithMaxRetries(sweepAttempts, retry.NewConstant(500*time.Millisecond))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			_, derr := t.deliver(ctx, item, false)
			if derr != nil && errors.Is(derr, adapter.ErrRemoteUnavailable) {
				return retry.RetryableError(derr)
			}
			return derr
		})

		switch {
		case err == nil:
			continue
		case errors.Is(err, ErrAuthFailed):
			// Credentials are dead; nothing else in the sweep can
			// succeed either.
			return err
		case errors.Is(err, adapter.ErrRemoteUnavailable):
			// Connectivity is gone again; stop and let the next
			// reconnect re-arm the sweep.
			return nil
		default:
			t.logger.Err(err).
				Str("func", "chunkTransmitter.Sweep").
				Str("item_id", item.ID).
				Msg("staged chunk delivery failed")
		}
	}

	return nil
}
