package weather

import (
	"log"
	"time"

	"github.com/i474232898/owm-weather-mock/internal/common"
)

// DefaultForecastStep is the interval between forecast samples.
const DefaultForecastStep = 3 * time.Hour

// Service generates observations and forecasts from the schedule store.
type Service struct {
	store   Store
	station Station
}

// NewService creates a new Service.
func NewService(store Store) *Service {
	return &Service{
		store:   store,
		station: DefaultStation,
	}
}

// normalizeLocation clamps latitude and wraps longitude into [-180, 180).
func normalizeLocation(lat, lon float64) Location {
	return Location{
		Lat: common.Clamp(lat, -90, 90),
		Lon: common.WrapLongitude(lon),
	}
}

// observe builds the observation at t for an already normalised location.
func (s *Service) observe(loc Location, t time.Time) Current {
	sample := s.store.Lookup(loc, t)
	reading := interpolate(sample, loc, t)
	sun := SunTimesAt(loc.Lat, loc.Lon, t)

	return Current{
		Location:  loc,
		Station:   s.station,
		Timestamp: t,
		Reading:   reading,
		Symbol:    NewSymbol(reading.RainMmPerHour, reading.VisibilityM, reading.CloudsPct, sun.IsDaytime(t)),
		Sun:       sun,
	}
}

// GetWeather returns the generated observation at (lat, lon) and time t.
func (s *Service) GetWeather(lat, lon float64, t time.Time) Current {
	return s.observe(normalizeLocation(lat, lon), t.UTC())
}

// GetForecast returns steps samples starting at t, step apart. A non-positive
// step falls back to DefaultForecastStep.
func (s *Service) GetForecast(lat, lon float64, step time.Duration, steps int, t time.Time) Forecast {
	loc := normalizeLocation(lat, lon)
	t = t.UTC()
	if step <= 0 {
		step = DefaultForecastStep
	}
	steps = max(steps, 0)

	log.Printf("DEBUG: GetForecast called for %s with %d steps of %s", loc.Key(), steps, step)

	forecast := Forecast{
		Location: loc,
		Station:  s.station,
		Step:     step,
		Sun:      SunTimesAt(loc.Lat, loc.Lon, t),
		Samples:  make([]ForecastSample, 0, steps),
	}

	for i := 0; i < steps; i++ {
		from := t.Add(time.Duration(i) * step)
		start := s.observe(loc, from)
		end := interpolate(s.store.Lookup(loc, from.Add(step)), loc, from.Add(step))

		forecast.Samples = append(forecast.Samples, ForecastSample{
			Current:         start,
			MinTemperatureC: min(start.Reading.TemperatureC, end.TemperatureC),
			MaxTemperatureC: max(start.Reading.TemperatureC, end.TemperatureC),
			PrecipitationMm: (start.Reading.RainMmPerHour + end.RainMmPerHour) / 2 * step.Hours(),
		})
	}

	return forecast
}

// CreateFromConditions replaces the schedule for loc (global when nil) with one
// anchor per condition, starting now.
func (s *Service) CreateFromConditions(loc *Location, minutesBetweenSamples int, conditions []Condition) (*Schedule, error) {
	if loc != nil {
		n := normalizeLocation(loc.Lat, loc.Lon)
		loc = &n
	}
	return s.store.PutFromConditions(loc, minutesBetweenSamples, conditions)
}

// CreateFromSlots replaces the schedule for loc (global when nil) from slot tokens.
func (s *Service) CreateFromSlots(loc *Location, slotLengthMinutes int, tokens []string) (*Schedule, error) {
	if loc != nil {
		n := normalizeLocation(loc.Lat, loc.Lon)
		loc = &n
	}
	return s.store.PutFromSlots(loc, slotLengthMinutes, tokens)
}

// GlobalSchedule returns the schedule answering locations without their own.
func (s *Service) GlobalSchedule() (*Schedule, string) {
	return s.store.GlobalSchedule()
}

// ScheduleFor returns the schedule that answers queries at (lat, lon).
func (s *Service) ScheduleFor(lat, lon float64) (*Schedule, string) {
	return s.store.Schedule(normalizeLocation(lat, lon))
}
