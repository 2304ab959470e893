package store

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/i474232898/owm-weather-mock/internal/weather"
)

var origin = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

// steppingClock returns origin, then advances one minute per call.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	now := origin
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := now
		now = now.Add(time.Minute)
		return t
	}
}

func fixedClock() time.Time { return origin }

func condition(temp float64) weather.Condition {
	c := weather.NewCondition()
	c.TemperatureC = temp
	return c
}

func TestLookupWithoutScheduleUsesDefault(t *testing.T) {
	s := NewMemoryStore(0, fixedClock)

	sched, key := s.Schedule(weather.Location{Lat: 10, Lon: 20})
	if key != DefaultKey || sched == nil {
		t.Fatalf("expected default schedule, got key %q", key)
	}

	sample := s.Lookup(weather.Location{}, origin.Add(17*time.Hour))
	want := weather.DefaultCondition()
	if sample.Prev.TemperatureC != want.TemperatureC || sample.Fraction != 0 {
		t.Errorf("unexpected default sample %+v", sample)
	}
}

func TestPutFromConditionsStartsNow(t *testing.T) {
	s := NewMemoryStore(0, fixedClock)

	sched, err := s.PutFromConditions(nil, 30, []weather.Condition{condition(5), condition(25)})
	if err != nil {
		t.Fatalf("PutFromConditions: %v", err)
	}
	if !sched.Origin.Equal(origin) {
		t.Errorf("origin %s, want %s", sched.Origin, origin)
	}

	sample := s.Lookup(weather.Location{Lat: 1, Lon: 1}, origin)
	if sample.Prev.TemperatureC != 5 || sample.Fraction != 0 {
		t.Errorf("unexpected sample at origin %+v", sample)
	}
	if _, key := s.Schedule(weather.Location{}); key != GlobalKey {
		t.Errorf("expected global key, got %q", key)
	}
}

func TestPerLocationScheduleOverridesGlobal(t *testing.T) {
	s := NewMemoryStore(0, fixedClock)
	paris := weather.Location{Lat: 48.86, Lon: 2.35}

	if _, err := s.PutFromConditions(nil, 60, []weather.Condition{condition(10)}); err != nil {
		t.Fatalf("global put: %v", err)
	}
	if _, err := s.PutFromConditions(&paris, 60, []weather.Condition{condition(30)}); err != nil {
		t.Fatalf("local put: %v", err)
	}

	if got := s.Lookup(weather.Location{Lat: 48.88, Lon: 2.38}, origin).Prev.TemperatureC; got != 30 {
		t.Errorf("nearby point should use the local schedule, got %v", got)
	}
	if got := s.Lookup(weather.Location{Lat: -33.9, Lon: 151.2}, origin).Prev.TemperatureC; got != 10 {
		t.Errorf("other points should use the global schedule, got %v", got)
	}
	if _, key := s.Schedule(paris); key != paris.Key() {
		t.Errorf("expected key %q, got %q", paris.Key(), key)
	}
	if sched, key := s.GlobalSchedule(); key != GlobalKey || sched.Anchors[0].Condition.TemperatureC != 10 {
		t.Errorf("GlobalSchedule should ignore per-location schedules, got key %q", key)
	}
}

func TestGlobalScheduleIgnoresOriginLocation(t *testing.T) {
	s := NewMemoryStore(0, fixedClock)
	zero := weather.Location{}
	if _, err := s.PutFromConditions(&zero, 60, []weather.Condition{condition(30)}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, key := s.GlobalSchedule(); key != DefaultKey {
		t.Errorf("expected default key, got %q", key)
	}
	if _, key := s.Schedule(zero); key != "0.0:0.0" {
		t.Errorf("expected per-location key, got %q", key)
	}
}

func TestRejectedPutKeepsPreviousSchedule(t *testing.T) {
	s := NewMemoryStore(0, fixedClock)
	before, err := s.PutFromSlots(nil, 60, []string{"12:3:90:0:70"})
	if err != nil {
		t.Fatalf("PutFromSlots: %v", err)
	}

	if _, err := s.PutFromSlots(nil, 60, []string{"12:3:90:0:70", "a:b"}); !errors.Is(err, weather.ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule, got %v", err)
	}
	if _, err := s.PutFromConditions(nil, 0, []weather.Condition{condition(1)}); !errors.Is(err, weather.ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule for zero spacing, got %v", err)
	}
	if _, err := s.PutFromConditions(nil, 10, nil); !errors.Is(err, weather.ErrInvalidSchedule) {
		t.Fatalf("expected ErrInvalidSchedule for empty conditions, got %v", err)
	}

	after, _ := s.Schedule(weather.Location{})
	if after.ID != before.ID {
		t.Errorf("schedule changed after rejected input: %s -> %s", before.ID, after.ID)
	}
}

func TestLocationLimitEvictsOldest(t *testing.T) {
	s := NewMemoryStore(2, steppingClock())
	locs := []weather.Location{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}, {Lat: 3, Lon: 3}}

	for i := range locs {
		if _, err := s.PutFromConditions(&locs[i], 60, []weather.Condition{condition(float64(i))}); err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
	}

	keys := s.Locations()
	if len(keys) != 2 {
		t.Fatalf("expected 2 locations, got %v", keys)
	}
	for _, k := range keys {
		if k == locs[0].Key() {
			t.Errorf("oldest location %s should have been evicted", k)
		}
	}
}

func TestConcurrentReadsAndWrites(t *testing.T) {
	s := NewMemoryStore(4, nil)
	var wg sync.WaitGroup

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			loc := weather.Location{Lat: float64(w), Lon: float64(w)}
			for i := 0; i < 50; i++ {
				if _, err := s.PutFromConditions(&loc, 5, []weather.Condition{condition(float64(i)), condition(0)}); err != nil {
					t.Errorf("put: %v", err)
					return
				}
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				sample := s.Lookup(weather.Location{Lat: float64(r), Lon: float64(r)}, time.Now())
				if sample.Fraction < 0 || sample.Fraction >= 1 {
					t.Errorf("fraction %v out of range", sample.Fraction)
					return
				}
			}
		}(r)
	}
	wg.Wait()
}
