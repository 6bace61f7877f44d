package models

import "time"

// OutboxTypeCombined tags outbox items whose payload mixes record categories
// (records, workouts, sleep) in a single request body.
const OutboxTypeCombined = "combined"

// OutboxItem is one staged chunk awaiting delivery to the collection
// endpoint. An item is written to durable storage before the first network
// attempt and deleted only after a positive acknowledgment, so a crash at
// any point in between leaves the item behind for the sweep pass.
type OutboxItem struct {
	// ID is a uuid assigned when the chunk is staged.
	ID string `json:"id"`

	// UserKey is the owning user; sweep attempts only deliver items for the
	// currently authorized user.
	UserKey string `json:"user_key"`

	// TypeTag is either a single record type or [OutboxTypeCombined].
	TypeTag string `json:"type_tag"`

	// Payload is the serialized request body for the collection endpoint.
	Payload []byte `json:"-"`

	// PendingCursor is the anchor to persist for TypeTag once the payload
	// is acknowledged. Empty when the chunk carries no anchor advancement
	// (for example pure deletions at the end of a type).
	PendingCursor string `json:"pending_cursor,omitempty"`

	FullExport bool      `json:"full_export"`
	Attempts   int       `json:"attempts"`
	CreatedAt  time.Time `json:"created_at"`
}
