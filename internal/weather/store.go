package weather

import (
	"time"
)

// Store is the contract the in-memory schedule store (and any future store) must satisfy.
type Store interface {
	// Lookup returns the anchors bracketing t for the schedule answering loc.
	Lookup(loc Location, t time.Time) Sample
	// Schedule returns the schedule answering loc and the key it is stored under.
	Schedule(loc Location) (*Schedule, string)
	// GlobalSchedule returns the location-independent schedule, or the built-in default.
	GlobalSchedule() (*Schedule, string)
	// PutFromConditions replaces the schedule for loc (the global one when loc is nil).
	PutFromConditions(loc *Location, minutesBetweenSamples int, conditions []Condition) (*Schedule, error)
	// PutFromSlots replaces the schedule for loc from compact slot tokens.
	PutFromSlots(loc *Location, slotLengthMinutes int, tokens []string) (*Schedule, error)
}
