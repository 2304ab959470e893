package owmxml

import (
	"math"

	"github.com/i474232898/owm-weather-mock/internal/common"
)

var compassCodes = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

var compassNames = [16]string{
	"North", "North-northeast", "NorthEast", "East-northeast",
	"East", "East-southeast", "SouthEast", "South-southeast",
	"South", "South-southwest", "SouthWest", "West-southwest",
	"West", "West-northwest", "Northwest", "North-northwest",
}

// upper bounds in m/s for Beaufort forces 0..11; anything above is force 12
var beaufortLimits = []float64{0.5, 1.5, 3.3, 5.5, 7.9, 10.7, 13.8, 17.1, 20.7, 24.4, 28.4, 32.6}

var beaufortNames = []string{
	"Calm",
	"Light air",
	"Light breeze",
	"Gentle Breeze",
	"Moderate breeze",
	"Fresh Breeze",
	"Strong breeze",
	"High wind, near gale",
	"Gale",
	"Severe Gale",
	"Storm",
	"Violent Storm",
	"Hurricane",
}

func compassIndex(deg float64) int {
	return int(math.Round(common.WrapDegrees(deg)/22.5)) % 16
}

// CompassCode returns the 16-point compass abbreviation for a bearing.
func CompassCode(deg float64) string {
	return compassCodes[compassIndex(deg)]
}

// CompassName returns the 16-point compass name for a bearing.
func CompassName(deg float64) string {
	return compassNames[compassIndex(deg)]
}

// BeaufortName describes a wind speed in m/s.
func BeaufortName(speed float64) string {
	for i, limit := range beaufortLimits {
		if speed < limit {
			return beaufortNames[i]
		}
	}
	return beaufortNames[len(beaufortNames)-1]
}
