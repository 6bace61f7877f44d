// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The Momentum

// Package provider defines the data-source contract the sync engine pulls
// records through. A provider exposes a cursor-based change feed per record
// type: each query returns a bounded batch plus a new cursor, and an empty
// batch signals that the type is exhausted up to now.
//
// Providers implement ONLY the source-specific read primitive; all sync
// orchestration (ordering, progress, retry, delivery) lives in the service
// layer.
package provider

import (
	"context"

	"github.com/the-momentum/open-wearables-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/provider_mock.go -package=mock

// Batch is the result of one provider query.
type Batch struct {
	// Records are the samples read since the cursor, at most `limit` of
	// them, oldest first.
	Records []models.Record

	// DeletedIDs are ids of samples removed at the source since the
	// cursor.
	DeletedIDs []string

	// NextCursor is the anchor covering everything returned in this
	// batch. Passing it to the next query continues the feed; persisting
	// it marks the batch as durably delivered.
	NextCursor string
}

// Empty reports whether the batch carries neither records nor deletions,
// which is the provider's "exhausted" signal.
func (b Batch) Empty() bool {
	return len(b.Records) == 0 && len(b.DeletedIDs) == 0
}

// Provider is a bounded external data source with a cursor-based change
// feed.
type Provider interface {
	// Query reads at most limit records of the given type starting after
	// cursor. An empty cursor means "from the beginning of history".
	//
	// Implementations must return [ErrUnavailable] (possibly wrapped) when
	// the underlying data is temporarily inaccessible, e.g. the device
	// store is locked; the engine then pauses the whole session and
	// resumes when availability returns. Any other error is treated as
	// type-local and skips the remainder of that type.
	Query(ctx context.Context, recordType models.RecordType, cursor string, limit int) (Batch, error)
}
