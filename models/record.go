package models

import "time"

// Record is one sample read from the data provider. The engine moves records
// without interpreting them: per-field mapping and unit conversion happen in
// the provider adapter before a record reaches the sync pipeline.
type Record struct {
	// ID is the provider-issued stable identifier of the sample. The
	// collection endpoint deduplicates on it, which is what makes chunk
	// re-delivery safe.
	ID string `json:"id"`

	// Type is the tracked record type this sample belongs to.
	Type RecordType `json:"type"`

	// Value and Unit carry the measured quantity for vital-sign samples.
	// For workouts and sleep they hold the primary metric (total energy,
	// time asleep).
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`

	// StartAt and EndAt delimit the sample interval. Point samples have
	// StartAt == EndAt.
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`

	// SourceName names the device or app that produced the sample.
	SourceName string `json:"source_name,omitempty"`

	// Metadata carries provider-specific extras verbatim.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Chunk is one bounded batch of records moved together from the provider to
// the collection endpoint. A chunk belongs to exactly one tracked type.
type Chunk struct {
	UserKey    string
	Type       RecordType
	Records    []Record
	DeletedIDs []string
	FullExport bool
}

// Empty reports whether the chunk carries no records and no deletions.
func (c Chunk) Empty() bool {
	return len(c.Records) == 0 && len(c.DeletedIDs) == 0
}
