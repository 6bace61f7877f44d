// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Momentum

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/the-momentum/open-wearables-sync/internal/adapter"
	"github.com/the-momentum/open-wearables-sync/internal/logger"
	"github.com/the-momentum/open-wearables-sync/internal/mock"
	"github.com/the-momentum/open-wearables-sync/models"
)

// stubRefresher counts refresh calls; avoids mockgen for a same-package
// interface.
type stubRefresher struct {
	calls int
	err   error
}

func (s *stubRefresher) Refresh(context.Context) error {
	s.calls++
	return s.err
}

func newTestTransmitter(
	t *testing.T,
	ctrl *gomock.Controller,
	authMode models.AuthMode,
) (ChunkTransmitter, *mock.MockOutboxRepository, *mock.MockSyncStateRepository, *mock.MockRemoteAdapter, *stubRefresher) {
	t.Helper()

	outbox := mock.NewMockOutboxRepository(ctrl)
	states := mock.NewMockSyncStateRepository(ctrl)
	remote := mock.NewMockRemoteAdapter(ctrl)
	refresher := &stubRefresher{}
	creds := &fakeCreds{cred: models.Credential{UserKey: "user-1", AccessToken: "at", RefreshToken: "rt"}}

	remote.EXPECT().SetCredential(gomock.Any()).AnyTimes()

	tr := NewChunkTransmitter(outbox, states, remote, creds, refresher, authMode, time.Minute, logger.Nop())
	return tr, outbox, states, remote, refresher
}

func testChunk() models.Chunk {
	return models.Chunk{
		UserKey: "user-1",
		Type:    models.TypeHeartRate,
		Records: []models.Record{{ID: "r1", Type: models.TypeHeartRate}},
	}
}

func TestSend_AckAdvancesCursorThenDeletes(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr, outbox, states, remote, _ := newTestTransmitter(t, ctrl, models.AuthModeToken)
	ctx := context.Background()

	var stagedID string
	gomock.InOrder(
		outbox.EXPECT().Put(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, item models.OutboxItem) error {
			stagedID = item.ID
			assert.Equal(t, "cursor-9", item.PendingCursor)
			assert.NotEmpty(t, item.Payload)
			return nil
		}),
		remote.EXPECT().SendRaw(ctx, gomock.Any()).Return(nil),
		states.EXPECT().AdvanceCursor(ctx, "user-1", models.TypeHeartRate, "cursor-9").Return(nil),
		outbox.EXPECT().Delete(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, id string) error {
			assert.Equal(t, stagedID, id)
			return nil
		}),
	)

	res, err := tr.Send(ctx, testChunk(), "cursor-9")

	require.NoError(t, err)
	assert.True(t, res.Acked)
	assert.True(t, res.CursorAdvanced)
}

func TestSend_EmptyCursorCandidateSkipsAdvance(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr, outbox, _, remote, _ := newTestTransmitter(t, ctrl, models.AuthModeToken)
	ctx := context.Background()

	outbox.EXPECT().Put(ctx, gomock.Any()).Return(nil)
	remote.EXPECT().SendRaw(ctx, gomock.Any()).Return(nil)
	outbox.EXPECT().Delete(ctx, gomock.Any()).Return(nil)

	res, err := tr.Send(ctx, testChunk(), "")

	require.NoError(t, err)
	assert.True(t, res.Acked)
	assert.False(t, res.CursorAdvanced)
}

func TestSend_UnauthorizedRefreshesAndRetriesOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr, outbox, states, remote, refresher := newTestTransmitter(t, ctrl, models.AuthModeToken)
	ctx := context.Background()

	outbox.EXPECT().Put(ctx, gomock.Any()).Return(nil)
	gomock.InOrder(
		remote.EXPECT().SendRaw(ctx, gomock.Any()).Return(adapter.ErrUnauthorized),
		remote.EXPECT().SendRaw(ctx, gomock.Any()).Return(nil),
	)
	states.EXPECT().AdvanceCursor(ctx, "user-1", models.TypeHeartRate, "c1").Return(nil)
	outbox.EXPECT().Delete(ctx, gomock.Any()).Return(nil)

	res, err := tr.Send(ctx, testChunk(), "c1")

	require.NoError(t, err)
	assert.True(t, res.Acked)
	assert.Equal(t, 1, refresher.calls, "exactly one refresh per 401")
}

func TestSend_SecondUnauthorizedIsTerminal(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr, outbox, _, remote, refresher := newTestTransmitter(t, ctrl, models.AuthModeToken)
	ctx := context.Background()

	outbox.EXPECT().Put(ctx, gomock.Any()).Return(nil)
	remote.EXPECT().SendRaw(ctx, gomock.Any()).Return(adapter.ErrUnauthorized).Times(2)

	_, err := tr.Send(ctx, testChunk(), "c1")

	assert.ErrorIs(t, err, ErrAuthFailed)
	assert.Equal(t, 1, refresher.calls)
}

func TestSend_APIKeyUnauthorizedIsTerminal(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr, outbox, _, remote, refresher := newTestTransmitter(t, ctrl, models.AuthModeAPIKey)
	ctx := context.Background()

	outbox.EXPECT().Put(ctx, gomock.Any()).Return(nil)
	remote.EXPECT().SendRaw(ctx, gomock.Any()).Return(adapter.ErrUnauthorized)

	_, err := tr.Send(ctx, testChunk(), "c1")

	assert.ErrorIs(t, err, ErrAuthFailed)
	assert.Zero(t, refresher.calls, "nothing to refresh in API-key mode")
}

func TestSend_RejectedChunkIsDroppedWithoutCursorAdvance(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr, outbox, _, remote, _ := newTestTransmitter(t, ctrl, models.AuthModeToken)
	ctx := context.Background()

	outbox.EXPECT().Put(ctx, gomock.Any()).Return(nil)
	remote.EXPECT().SendRaw(ctx, gomock.Any()).Return(adapter.ErrRejected)
	// Dropped from the outbox, but AdvanceCursor is never called.
	outbox.EXPECT().Delete(ctx, gomock.Any()).Return(nil)

	res, err := tr.Send(ctx, testChunk(), "c1")

	require.NoError(t, err)
	assert.True(t, res.Acked, "the type loop keeps moving")
	assert.False(t, res.CursorAdvanced, "stored cursor never passes rejected data")
}

func TestSend_NetworkFailureKeepsItemStaged(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr, outbox, _, remote, _ := newTestTransmitter(t, ctrl, models.AuthModeToken)
	ctx := context.Background()

	outbox.EXPECT().Put(ctx, gomock.Any()).Return(nil)
	remote.EXPECT().SendRaw(ctx, gomock.Any()).Return(adapter.ErrRemoteUnavailable)
	outbox.EXPECT().IncrementAttempts(ctx, gomock.Any()).Return(nil)

	_, err := tr.Send(ctx, testChunk(), "c1")

	assert.ErrorIs(t, err, adapter.ErrRemoteUnavailable)
}

func TestSweep_NoCredentialIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	outbox := mock.NewMockOutboxRepository(ctrl)
	states := mock.NewMockSyncStateRepository(ctrl)
	remote := mock.NewMockRemoteAdapter(ctrl)
	creds := &fakeCreds{}
	require.NoError(t, creds.Clear())

	tr := NewChunkTransmitter(outbox, states, remote, creds, &stubRefresher{}, models.AuthModeToken, time.Minute, logger.Nop())

	assert.NoError(t, tr.Sweep(context.Background()))
}

func TestSweep_RedeliversStagedItems(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr, outbox, states, remote, _ := newTestTransmitter(t, ctrl, models.AuthModeToken)
	ctx := context.Background()

	staged := []models.OutboxItem{
		{ID: "a", UserKey: "user-1", TypeTag: "heart_rate", Payload: []byte(`{}`), PendingCursor: "c3"},
		{ID: "b", UserKey: "user-1", TypeTag: "steps", Payload: []byte(`{}`)},
	}

	outbox.EXPECT().ListOlderThan(ctx, "user-1", time.Minute).Return(staged, nil)
	remote.EXPECT().SendRaw(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	states.EXPECT().AdvanceCursor(gomock.Any(), "user-1", models.TypeHeartRate, "c3").Return(nil)
	outbox.EXPECT().Delete(gomock.Any(), "a").Return(nil)
	outbox.EXPECT().Delete(gomock.Any(), "b").Return(nil)

	assert.NoError(t, tr.Sweep(ctx))
}

func TestSweep_AbortsOnAuthFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr, outbox, _, remote, refresher := newTestTransmitter(t, ctrl, models.AuthModeToken)
	refresher.err = ErrAuthFailed
	ctx := context.Background()

	staged := []models.OutboxItem{
		{ID: "a", UserKey: "user-1", TypeTag: "heart_rate", Payload: []byte(`{}`)},
		{ID: "b", UserKey: "user-1", TypeTag: "steps", Payload: []byte(`{}`)},
	}

	outbox.EXPECT().ListOlderThan(ctx, "user-1", time.Minute).Return(staged, nil)
	// Only the first item is attempted; dead credentials end the pass.
	remote.EXPECT().SendRaw(gomock.Any(), gomock.Any()).Return(adapter.ErrUnauthorized)

	assert.ErrorIs(t, tr.Sweep(ctx), ErrAuthFailed)
}

func TestSweep_EmptyOutboxIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	tr, outbox, _, _, _ := newTestTransmitter(t, ctrl, models.AuthModeToken)
	ctx := context.Background()

	outbox.EXPECT().ListOlderThan(ctx, "user-1", time.Minute).Return(nil, nil)

	assert.NoError(t, tr.Sweep(ctx))
}
