package weather

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Anchor is a scheduled Condition with the offset, relative to the schedule
// origin, at which it becomes active.
type Anchor struct {
	Offset    time.Duration
	Condition Condition
}

// Schedule is an immutable, cyclic sequence of anchors.
// Past the last anchor time wraps back to the first.
type Schedule struct {
	ID      string
	Origin  time.Time // UTC instant at which anchor 0 becomes active
	Anchors []Anchor
	Period  time.Duration
}

// Sample is the result of a schedule lookup: the anchors bracketing a query
// time and the normalised position between them, in [0, 1).
type Sample struct {
	Prev     Condition
	Next     Condition
	Fraction float64
}

// maxPeriod bounds the total schedule length so offsets fit in a time.Duration.
const maxPeriod = time.Duration(math.MaxInt64)

// NewSchedule builds a schedule whose first anchor starts at origin. Each
// condition holds for its own DurationMinutes, or defaultMinutes when unset.
func NewSchedule(origin time.Time, defaultMinutes int, conditions []Condition) (*Schedule, error) {
	if len(conditions) == 0 {
		return nil, fmt.Errorf("%w: no conditions supplied", ErrInvalidSchedule)
	}
	if defaultMinutes <= 0 {
		return nil, fmt.Errorf("%w: minutes between samples must be positive, got %d", ErrInvalidSchedule, defaultMinutes)
	}

	anchors := make([]Anchor, 0, len(conditions))
	var offset time.Duration
	for i, c := range conditions {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}
		c = c.Normalize()
		if c.DurationMinutes == 0 {
			c.DurationMinutes = defaultMinutes
		}
		if int64(c.DurationMinutes) > int64(maxPeriod-offset)/int64(time.Minute) {
			return nil, fmt.Errorf("%w: condition %d: schedule longer than %s", ErrInvalidSchedule, i, maxPeriod.Truncate(time.Hour))
		}
		anchors = append(anchors, Anchor{Offset: offset, Condition: c})
		offset += time.Duration(c.DurationMinutes) * time.Minute
	}

	return &Schedule{
		ID:      uuid.NewString(),
		Origin:  origin.UTC(),
		Anchors: anchors,
		Period:  offset,
	}, nil
}

// Lookup locates the anchors bracketing t.
func (s *Schedule) Lookup(t time.Time) Sample {
	off := t.Sub(s.Origin) % s.Period
	if off < 0 {
		off += s.Period
	}

	// Largest i with Anchors[i].Offset <= off.
	i := sort.Search(len(s.Anchors), func(i int) bool {
		return s.Anchors[i].Offset > off
	}) - 1

	cur := s.Anchors[i]
	next := s.Anchors[(i+1)%len(s.Anchors)]
	hold := time.Duration(cur.Condition.DurationMinutes) * time.Minute

	return Sample{
		Prev:     cur.Condition,
		Next:     next.Condition,
		Fraction: float64(off-cur.Offset) / float64(hold),
	}
}

// ActivationTimes returns the first activation instant of every anchor.
func (s *Schedule) ActivationTimes() []time.Time {
	out := make([]time.Time, len(s.Anchors))
	for i, a := range s.Anchors {
		out[i] = s.Origin.Add(a.Offset)
	}
	return out
}

// DefaultSchedule is a single-anchor schedule holding DefaultCondition forever.
func DefaultSchedule() *Schedule {
	c := DefaultCondition()
	c.DurationMinutes = 24 * 60
	return &Schedule{
		ID:      "default",
		Origin:  time.Unix(0, 0).UTC(),
		Anchors: []Anchor{{Condition: c}},
		Period:  24 * time.Hour,
	}
}
