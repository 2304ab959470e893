package weather

import (
	"math"
	"time"

	"github.com/i474232898/owm-weather-mock/internal/common"
)

const axialTiltDeg = 23.44

// DayLengthHours approximates the length of daylight at latitude lat on the given day of year.
func DayLengthHours(lat float64, dayOfYear int) float64 {
	season := math.Sin(2 * math.Pi * float64(dayOfYear-80) / 365)
	ratio := math.Sin(lat*math.Pi/180) / math.Sin(axialTiltDeg*math.Pi/180)
	return common.Clamp(12+4*season*ratio, 0, 24)
}

// SunTimesAt returns sunrise and sunset for the local solar day containing t.
// Local solar noon is approximated from longitude alone.
func SunTimesAt(lat, lon float64, t time.Time) SunTimes {
	offset := time.Duration(lon / 15 * float64(time.Hour))
	local := t.UTC().Add(offset)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	noon := midnight.Add(12 * time.Hour).Add(-offset)

	half := time.Duration(DayLengthHours(lat, local.YearDay()) / 2 * float64(time.Hour))
	return SunTimes{
		Rise: noon.Add(-half).Truncate(time.Second),
		Set:  noon.Add(half).Truncate(time.Second),
	}
}

// IsDaytime reports whether t falls between sunrise and sunset.
func (s SunTimes) IsDaytime(t time.Time) bool {
	return !t.Before(s.Rise) && t.Before(s.Set)
}
