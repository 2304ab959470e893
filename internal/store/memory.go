package store

import (
	"log"
	"sync"
	"time"

	"github.com/i474232898/owm-weather-mock/internal/weather"
)

const (
	// GlobalKey names the schedule used when no per-location schedule matches.
	GlobalKey = "global"
	// DefaultKey names the built-in schedule served before anything is configured.
	DefaultKey = "default"
)

type entry struct {
	schedule *weather.Schedule
	storedAt time.Time
}

// MemoryStore is a concurrency-safe in-memory schedule store.
// Schedules are immutable, so readers only hold the lock long enough to grab a pointer.
type MemoryStore struct {
	mu sync.RWMutex

	global *weather.Schedule
	// key: rounded location key
	data map[string]entry

	// maximum number of per-location schedules kept (<= 0 = unlimited)
	maxLocations int

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore. A nil clock means time.Now.
func NewMemoryStore(maxLocations int, now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		data:         make(map[string]entry),
		maxLocations: maxLocations,
		now:          now,
	}
}

// Schedule returns the schedule answering loc: the per-location one if present,
// then the global one, then the built-in default.
func (s *MemoryStore) Schedule(loc weather.Location) (*weather.Schedule, string) {
	key := loc.Key()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if e, ok := s.data[key]; ok {
		return e.schedule, key
	}
	return s.globalLocked()
}

// GlobalSchedule returns the global schedule, or the built-in default when none is set.
func (s *MemoryStore) GlobalSchedule() (*weather.Schedule, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.globalLocked()
}

func (s *MemoryStore) globalLocked() (*weather.Schedule, string) {
	if s.global != nil {
		return s.global, GlobalKey
	}
	return weather.DefaultSchedule(), DefaultKey
}

// Lookup returns the anchors bracketing t for loc.
func (s *MemoryStore) Lookup(loc weather.Location, t time.Time) weather.Sample {
	sched, key := s.Schedule(loc)
	if key == DefaultKey {
		c := weather.DefaultCondition()
		return weather.Sample{Prev: c, Next: c}
	}
	return sched.Lookup(t)
}

// PutFromConditions replaces a schedule with one anchor per condition, the
// first one active from now. A rejected input leaves the prior schedule intact.
func (s *MemoryStore) PutFromConditions(loc *weather.Location, minutesBetweenSamples int, conditions []weather.Condition) (*weather.Schedule, error) {
	sched, err := weather.NewSchedule(s.now(), minutesBetweenSamples, conditions)
	if err != nil {
		return nil, err
	}
	s.replace(loc, sched)
	return sched, nil
}

// PutFromSlots replaces a schedule with one anchor per slot token, each
// slotLengthMinutes long.
func (s *MemoryStore) PutFromSlots(loc *weather.Location, slotLengthMinutes int, tokens []string) (*weather.Schedule, error) {
	conditions, err := weather.ParseSlots(slotLengthMinutes, tokens)
	if err != nil {
		return nil, err
	}
	sched, err := weather.NewSchedule(s.now(), slotLengthMinutes, conditions)
	if err != nil {
		return nil, err
	}
	s.replace(loc, sched)
	return sched, nil
}

func (s *MemoryStore) replace(loc *weather.Location, sched *weather.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if loc == nil {
		s.global = sched
		log.Printf("INFO: schedule %s installed globally with %d anchors (period %s)", sched.ID, len(sched.Anchors), sched.Period)
		return
	}

	key := loc.Key()
	s.data[key] = entry{schedule: sched, storedAt: s.now()}
	log.Printf("INFO: schedule %s installed for %s with %d anchors (period %s)", sched.ID, key, len(sched.Anchors), sched.Period)

	// Enforce the location bound by evicting the oldest schedules.
	for s.maxLocations > 0 && len(s.data) > s.maxLocations {
		oldestKey := ""
		var oldest time.Time
		for k, e := range s.data {
			if k == key {
				continue
			}
			if oldestKey == "" || e.storedAt.Before(oldest) {
				oldestKey, oldest = k, e.storedAt
			}
		}
		if oldestKey == "" {
			break
		}
		delete(s.data, oldestKey)
		log.Printf("INFO: evicted schedule for %s; location limit %d reached", oldestKey, s.maxLocations)
	}
}

// Locations returns the keys of all per-location schedules.
func (s *MemoryStore) Locations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}

var _ weather.Store = (*MemoryStore)(nil)
