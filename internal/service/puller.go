package service

import (
	"context"
	"fmt"

	"github.com/the-momentum/open-wearables-sync/models"
)

// pullType drains one record type in bounded chunks. An explicit loop, not
// callback recursion: chunk N's cursor requests chunk N+1 only after N was
// acknowledged, so peak memory stays at one chunk regardless of history
// size.
func (o *syncOrchestrator) pullType(ctx context.Context, state *models.SyncState, tp *models.TypeProgress) error {
	limit := o.chunkLimit()

	// queryCursor may run ahead of the persisted tp.Cursor: a dropped
	// (permanently rejected) chunk advances the feed in memory so the type
	// does not stall, while the stored cursor stays behind the bad data.
	queryCursor := tp.Cursor

	for {
		if o.isCancelled() {
			return ErrSyncCancelled
		}
		if !o.budget.Allow() {
			return ErrBudgetExhausted
		}

		batch, err := o.provider.Query(ctx, tp.Type, queryCursor, limit)
		if err != nil {
			if isPause(err) {
				return err
			}
			return fmt.Errorf("query %s: %w: %w", tp.Type, ErrProviderFailed, err)
		}

		if batch.Empty() {
			return o.completeType(ctx, state, tp)
		}

		if o.isCancelled() {
			return ErrSyncCancelled
		}

		chunk := models.Chunk{
			UserKey:    state.UserKey,
			Type:       tp.Type,
			Records:    batch.Records,
			DeletedIDs: batch.DeletedIDs,
			FullExport: state.FullExport,
		}

		res, err := o.transmitter.Send(ctx, chunk, batch.NextCursor)
		if err != nil {
			return err
		}
		if !res.Acked {
			return fmt.Errorf("chunk for %s not acknowledged: %w", tp.Type, ErrProviderFailed)
		}

		queryCursor = batch.NextCursor
		if res.CursorAdvanced {
			tp.Cursor = batch.NextCursor
		}
		tp.SentCount += int64(len(batch.Records))
		state.TotalSent += int64(len(batch.Records))

		if err = o.states.SaveProgress(ctx, state.UserKey, tp); err != nil {
			return fmt.Errorf("persist progress for %s: %w", tp.Type, err)
		}
		o.publishState(state)

		o.logger.Debug().
			Str("type", tp.Type.String()).
			Int("records", len(batch.Records)).
			Int64("sent_total", tp.SentCount).
			Msg("chunk acknowledged")

		// A batch smaller than requested is the provider's last window
		// for this type; skip the extra empty round trip.
		if len(batch.Records) < limit {
			return o.completeType(ctx, state, tp)
		}
	}
}

func (o *syncOrchestrator) completeType(ctx context.Context, state *models.SyncState, tp *models.TypeProgress) error {
	tp.Completed = true
	if err := o.states.SaveProgress(ctx, state.UserKey, tp); err != nil {
		return fmt.Errorf("persist completed type %s: %w", tp.Type, err)
	}
	o.publishState(state)

	o.logger.Info().
		Str("type", tp.Type.String()).
		Int64("sent", tp.SentCount).
		Msg("type exhausted")
	return nil
}

// chunkLimit applies the smaller window under constrained (background)
// execution.
func (o *syncOrchestrator) chunkLimit() int {
	if o.budget.Constrained() {
		return o.bgLimit
	}
	return o.fgLimit
}
