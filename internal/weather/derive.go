package weather

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/i474232898/owm-weather-mock/internal/common"
)

const jitterBucket = 10 * time.Minute

func lerp(a, b, f float64) float64 {
	return a + f*(b-a)
}

// lerpDegrees interpolates along the shorter arc and returns a value in [0, 360).
func lerpDegrees(a, b, f float64) float64 {
	delta := math.Mod(b-a+540, 360) - 180
	return common.WrapDegrees(a + f*delta)
}

// cloudJitter is a deterministic offset in [-10, 10], stable for ten minutes
// at a given point.
func cloudJitter(loc Location, t time.Time) int {
	h := fnv.New64a()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(t.Unix()/int64(jitterBucket/time.Second)))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(loc.Lat))
	h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(loc.Lon))
	h.Write(buf[:])

	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	return rng.Intn(21) - 10
}

// Cloud cover bands by humidity: dry air below 70 %, moist air up to 90 %,
// saturated above. Bands blend linearly within cloudBlend points of each edge.
const (
	dryClouds         = 10.0
	moistClouds       = 50.0
	saturatedClouds   = 80.0
	moistHumidity     = 70.0
	saturatedHumidity = 90.0
	cloudBlend        = 5.0
)

// humidityClouds estimates cloud cover from humidity alone.
func humidityClouds(humidity float64) float64 {
	switch {
	case humidity < moistHumidity-cloudBlend:
		return dryClouds
	case humidity < moistHumidity+cloudBlend:
		return lerp(dryClouds, moistClouds, (humidity-(moistHumidity-cloudBlend))/(2*cloudBlend))
	case humidity < saturatedHumidity-cloudBlend:
		return moistClouds
	case humidity < saturatedHumidity+cloudBlend:
		return lerp(moistClouds, saturatedClouds, (humidity-(saturatedHumidity-cloudBlend))/(2*cloudBlend))
	default:
		return saturatedClouds
	}
}

// DeriveClouds estimates cloud cover when no anchor specifies it.
func DeriveClouds(rainMmPerHour float64, humidityPct int, loc Location, t time.Time) int {
	clouds := int(math.Round(humidityClouds(float64(humidityPct)))) + cloudJitter(loc, t)
	clouds = common.ClampInt(clouds, 0, 100)
	if rainMmPerHour > 0 && clouds < 70 {
		clouds = 70
	}
	return clouds
}

// DeriveVisibility estimates visibility in metres when no anchor specifies it.
func DeriveVisibility(rainMmPerHour float64, cloudsPct, humidityPct int) int {
	visibility := MaxVisibilityM
	switch {
	case rainMmPerHour > 2.5:
		visibility = 2000
	case rainMmPerHour > 0:
		visibility = 5000
	}
	if cloudsPct >= 95 && humidityPct >= 95 {
		visibility = min(visibility, 1000)
	}
	return visibility
}

// FeelsLike is the Steadman apparent temperature for shade.
func FeelsLike(temperatureC, windSpeed float64, humidityPct int) float64 {
	vapour := float64(humidityPct) / 100 * 6.105 * math.Exp(17.27*temperatureC/(237.7+temperatureC))
	return temperatureC + 0.33*vapour - 0.70*windSpeed - 4.00
}

// optionalLerp interpolates between two optional anchor values; a missing
// side is replaced by the derived value.
func optionalLerp(prev, next *int, derived int, f float64) int {
	a, b := float64(derived), float64(derived)
	if prev != nil {
		a = float64(*prev)
	}
	if next != nil {
		b = float64(*next)
	}
	return int(math.Round(lerp(a, b, f)))
}

// interpolate turns a schedule Sample into a fully populated Reading.
func interpolate(s Sample, loc Location, t time.Time) Reading {
	f := s.Fraction
	p, n := s.Prev, s.Next

	r := Reading{
		TemperatureC:     lerp(p.TemperatureC, n.TemperatureC, f),
		WindSpeed:        lerp(p.WindSpeed, n.WindSpeed, f),
		WindDirectionDeg: lerpDegrees(p.WindDirectionDeg, n.WindDirectionDeg, f),
		RainMmPerHour:    lerp(p.RainMmPerHour, n.RainMmPerHour, f),
		PressureHpa:      lerp(p.PressureHpa, n.PressureHpa, f),
		HumidityPct:      int(math.Round(lerp(float64(p.HumidityPct), float64(n.HumidityPct), f))),
	}
	if r.PressureHpa <= 0 {
		r.PressureHpa = DefaultPressureHpa
	}

	r.CloudsPct = optionalLerp(p.CloudsPct, n.CloudsPct, DeriveClouds(r.RainMmPerHour, r.HumidityPct, loc, t), f)
	r.VisibilityM = optionalLerp(p.VisibilityM, n.VisibilityM, DeriveVisibility(r.RainMmPerHour, r.CloudsPct, r.HumidityPct), f)
	r.FeelsLikeC = FeelsLike(r.TemperatureC, r.WindSpeed, r.HumidityPct)
	return r
}
