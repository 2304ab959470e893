package weather

import (
	"errors"
	"fmt"
	"time"

	"github.com/i474232898/owm-weather-mock/internal/common"
)

// ErrInvalidSchedule is returned when a schedule mutation receives malformed input.
var ErrInvalidSchedule = errors.New("invalid schedule")

// Defaults used wherever a condition field is left unspecified.
const (
	DefaultTemperatureC     = 15.0
	DefaultWindSpeed        = 0.0
	DefaultWindDirectionDeg = 0.0
	DefaultRainMmPerHour    = 0.0
	DefaultPressureHpa      = 1013.0
	DefaultHumidityPct      = 60
	MaxVisibilityM          = 10000
)

// Condition is one scheduled anchor point.
// CloudsPct and VisibilityM are optional; nil means derive them from the primaries.
type Condition struct {
	TemperatureC     float64 `json:"temperatureC"`
	WindSpeed        float64 `json:"windSpeed"`
	WindDirectionDeg float64 `json:"windDirectionDeg"`
	RainMmPerHour    float64 `json:"rainMmPerHour"`
	PressureHpa      float64 `json:"pressureHpa"`
	HumidityPct      int     `json:"humidityPct"`
	CloudsPct        *int    `json:"cloudsPct,omitempty"`
	VisibilityM      *int    `json:"visibilityM,omitempty"`
	DurationMinutes  int     `json:"durationMinutes"`
}

// NewCondition returns a Condition with every field at its default.
func NewCondition() Condition {
	return Condition{
		TemperatureC:     DefaultTemperatureC,
		WindSpeed:        DefaultWindSpeed,
		WindDirectionDeg: DefaultWindDirectionDeg,
		RainMmPerHour:    DefaultRainMmPerHour,
		PressureHpa:      DefaultPressureHpa,
		HumidityPct:      DefaultHumidityPct,
	}
}

// DefaultCondition is served while no schedule has been configured: a mild, clear day.
func DefaultCondition() Condition {
	clouds := 0
	visibility := MaxVisibilityM
	return Condition{
		TemperatureC:     DefaultTemperatureC,
		WindSpeed:        3,
		WindDirectionDeg: 180,
		PressureHpa:      DefaultPressureHpa,
		HumidityPct:      DefaultHumidityPct,
		CloudsPct:        &clouds,
		VisibilityM:      &visibility,
	}
}

// Normalize brings the fields into their valid ranges.
func (c Condition) Normalize() Condition {
	c.WindSpeed = max(c.WindSpeed, 0)
	c.WindDirectionDeg = common.WrapDegrees(c.WindDirectionDeg)
	c.RainMmPerHour = max(c.RainMmPerHour, 0)
	if c.PressureHpa <= 0 {
		c.PressureHpa = DefaultPressureHpa
	}
	c.HumidityPct = common.ClampInt(c.HumidityPct, 0, 100)
	if c.CloudsPct != nil {
		v := common.ClampInt(*c.CloudsPct, 0, 100)
		c.CloudsPct = &v
	}
	if c.VisibilityM != nil {
		v := common.ClampInt(*c.VisibilityM, 0, MaxVisibilityM)
		c.VisibilityM = &v
	}
	return c
}

// Validate reports whether the condition can be used as an anchor.
func (c Condition) Validate() error {
	switch {
	case c.TemperatureC < -90 || c.TemperatureC > 70:
		return fmt.Errorf("%w: temperature %.1f out of range", ErrInvalidSchedule, c.TemperatureC)
	case c.WindSpeed < 0:
		return fmt.Errorf("%w: negative wind speed", ErrInvalidSchedule)
	case c.RainMmPerHour < 0:
		return fmt.Errorf("%w: negative rain rate", ErrInvalidSchedule)
	case c.DurationMinutes < 0:
		return fmt.Errorf("%w: negative duration", ErrInvalidSchedule)
	}
	return nil
}

// Reading is a fully populated set of quantities at one instant.
type Reading struct {
	TemperatureC     float64
	FeelsLikeC       float64
	WindSpeed        float64
	WindDirectionDeg float64
	RainMmPerHour    float64
	PressureHpa      float64
	HumidityPct      int
	CloudsPct        int
	VisibilityM      int
}

// Location identifies the point a Current or Forecast was generated for.
type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Key returns the rounded coordinate key used to index per-location schedules.
func (l Location) Key() string {
	return fmt.Sprintf("%.1f:%.1f", keyCoord(l.Lat), keyCoord(l.Lon))
}

func keyCoord(v float64) float64 {
	r := common.Round(v, 1)
	if r == 0 {
		r = 0 // -0.0 and 0.0 share a key
	}
	return r
}

// Station describes the (fictional) observing station.
type Station struct {
	ID      int
	Name    string
	Country string
}

// DefaultStation is reported for every generated observation.
var DefaultStation = Station{ID: 0, Name: "Scripted Weather Station", Country: "XX"}

// SunTimes holds sunrise and sunset in UTC.
type SunTimes struct {
	Rise time.Time
	Set  time.Time
}

// Current is a generated observation.
type Current struct {
	Location  Location
	Station   Station
	Timestamp time.Time // always UTC
	Reading   Reading
	Symbol    Symbol
	Sun       SunTimes
}

// Forecast is an ordered run of samples at regular steps.
// Samples are ordered by Timestamp ascending.
type Forecast struct {
	Location Location
	Station  Station
	Step     time.Duration
	Sun      SunTimes
	Samples  []ForecastSample
}

// ForecastSample is one step of a Forecast: the observation at the step start
// plus the temperature range and accumulated rain over the step.
type ForecastSample struct {
	Current
	MinTemperatureC float64
	MaxTemperatureC float64
	PrecipitationMm float64
}
