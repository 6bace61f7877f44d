package models

import "time"

// TypeProgress tracks how far one record type has been drained in the
// current sync session.
//
// Cursor holds the last provider anchor that was confirmed by the collection
// endpoint. It is advanced only after a 2xx acknowledgment for the chunk the
// anchor came from, never before. A crash between read and acknowledgment
// therefore re-reads the same window, and the endpoint's deduplication makes
// the repeat harmless.
type TypeProgress struct {
	Type      RecordType `json:"type"`
	SentCount int64      `json:"sent_count"`
	Completed bool       `json:"completed"`
	Cursor    string     `json:"cursor"`
}

// SyncState is the durable aggregate for one in-flight sync session. Exactly
// one SyncState exists per user at a time; it is created when a sync attempt
// starts, updated after every acknowledged chunk, and deleted when every
// tracked type has completed.
type SyncState struct {
	// UserKey is the owning user identity. Progress is keyed by it so that
	// switching accounts never resumes another user's session.
	UserKey string `json:"user_key"`

	// FullExport records whether this session ignores stored anchors and
	// re-reads all available history.
	FullExport bool `json:"full_export"`

	CreatedAt time.Time `json:"created_at"`

	// TypeIndex is the resume pointer into the configured tracked-type
	// order: the first type that is not yet known complete.
	TypeIndex int `json:"type_index"`

	TotalSent int64 `json:"total_sent"`

	// Progress holds per-type state, keyed by record type.
	Progress map[RecordType]*TypeProgress `json:"progress"`
}

// NewSyncState creates a fresh session aggregate for the given user.
func NewSyncState(userKey string, fullExport bool) *SyncState {
	return &SyncState{
		UserKey:    userKey,
		FullExport: fullExport,
		CreatedAt:  time.Now().UTC(),
		Progress:   make(map[RecordType]*TypeProgress),
	}
}

// ProgressFor returns the TypeProgress for t, creating it on first touch.
func (s *SyncState) ProgressFor(t RecordType) *TypeProgress {
	if tp, ok := s.Progress[t]; ok {
		return tp
	}
	tp := &TypeProgress{Type: t}
	s.Progress[t] = tp
	return tp
}

// Snapshot returns a deep copy detached from the live session, safe to
// hand to concurrent readers while the session keeps mutating the
// original.
func (s *SyncState) Snapshot() *SyncState {
	c := *s
	c.Progress = make(map[RecordType]*TypeProgress, len(s.Progress))
	for k, v := range s.Progress {
		tp := *v
		c.Progress[k] = &tp
	}
	return &c
}

// AllCompleted reports whether every type in order is marked complete.
func (s *SyncState) AllCompleted(order []RecordType) bool {
	for _, t := range order {
		tp, ok := s.Progress[t]
		if !ok || !tp.Completed {
			return false
		}
	}
	return true
}

// SyncOutcome is the terminal result of one sync attempt.
type SyncOutcome int

const (
	// OutcomeCompleted means every tracked type reached exhaustion and the
	// session state was finalized and removed.
	OutcomeCompleted SyncOutcome = iota

	// OutcomeIncomplete means the attempt stopped early (network loss,
	// cancellation, exhausted execution budget, data unavailable) and the
	// session state was left in place for a later resume.
	OutcomeIncomplete
)

func (o SyncOutcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeIncomplete:
		return "incomplete"
	default:
		return "unknown"
	}
}

// SyncStatus is a point-in-time snapshot of the engine for status reporting.
type SyncStatus struct {
	Running        bool           `json:"running"`
	UserKey        string         `json:"user_key,omitempty"`
	FullExport     bool           `json:"full_export"`
	FullExportDone bool           `json:"full_export_done"`
	TypeIndex      int            `json:"type_index"`
	TotalSent      int64          `json:"total_sent"`
	Types          []TypeProgress `json:"types,omitempty"`
}
