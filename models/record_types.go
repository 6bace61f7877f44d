package models

// RecordType identifies one category of records tracked by the sync engine
// (for example a vital-sign kind, a workout kind, or a sleep kind).
//
// The set of tracked types is fixed at configuration time and their order is
// significant: the orchestrator drains types strictly in configured order so
// that a resumed session continues exactly where the previous one stopped.
type RecordType string

// Well-known record types. The engine itself treats types as opaque
// identifiers; this list mirrors what the collection endpoint understands.
const (
	TypeHeartRate     RecordType = "heart_rate"
	TypeRestingHR     RecordType = "resting_heart_rate"
	TypeSteps         RecordType = "steps"
	TypeEnergyBurned  RecordType = "active_energy_burned"
	TypeOxygen        RecordType = "oxygen_saturation"
	TypeBodyMass      RecordType = "body_mass"
	TypeWorkout       RecordType = "workout"
	TypeSleepAnalysis RecordType = "sleep_analysis"
)

// RecordCategory is the bucket a record type maps to in the sync request
// body. The collection endpoint accepts three arrays: generic records,
// workouts, and sleep samples.
type RecordCategory int

const (
	CategoryRecord RecordCategory = iota
	CategoryWorkout
	CategorySleep
)

// Category returns the request-body bucket for the record type.
func (t RecordType) Category() RecordCategory {
	switch t {
	case TypeWorkout:
		return CategoryWorkout
	case TypeSleepAnalysis:
		return CategorySleep
	default:
		return CategoryRecord
	}
}

func (t RecordType) String() string {
	return string(t)
}

// DefaultTrackedTypes is the tracked-type order used when the configuration
// does not specify one.
var DefaultTrackedTypes = []RecordType{
	TypeHeartRate,
	TypeRestingHR,
	TypeSteps,
	TypeEnergyBurned,
	TypeOxygen,
	TypeBodyMass,
	TypeWorkout,
	TypeSleepAnalysis,
}
