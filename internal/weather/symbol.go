package weather

// ConditionType is a weather category in the OpenWeatherMap taxonomy.
type ConditionType string

const (
	ConditionClear        ConditionType = "clear"
	ConditionFewClouds    ConditionType = "few_clouds"
	ConditionScattered    ConditionType = "scattered_clouds"
	ConditionBroken       ConditionType = "broken_clouds"
	ConditionOvercast     ConditionType = "overcast_clouds"
	ConditionLightRain    ConditionType = "light_rain"
	ConditionModerateRain ConditionType = "moderate_rain"
	ConditionHeavyRain    ConditionType = "heavy_rain"
	ConditionMist         ConditionType = "mist"
	ConditionFog          ConditionType = "fog"
)

type conditionInfo struct {
	code int
	name string
	icon string
}

var conditionTable = map[ConditionType]conditionInfo{
	ConditionClear:        {800, "clear sky", "01"},
	ConditionFewClouds:    {801, "few clouds", "02"},
	ConditionScattered:    {802, "scattered clouds", "03"},
	ConditionBroken:       {803, "broken clouds", "04"},
	ConditionOvercast:     {804, "overcast clouds", "04"},
	ConditionLightRain:    {500, "light rain", "10"},
	ConditionModerateRain: {501, "moderate rain", "10"},
	ConditionHeavyRain:    {502, "heavy intensity rain", "10"},
	ConditionMist:         {701, "mist", "50"},
	ConditionFog:          {741, "fog", "50"},
}

// Symbol is an OpenWeatherMap condition descriptor.
type Symbol struct {
	Type ConditionType
	Code int
	Name string
	Icon string
}

// Classify maps rain rate, visibility and cloud cover onto the condition taxonomy.
// Fog wins over rain, rain over mist, and cloud cover decides the dry cases.
func Classify(rainMmPerHour float64, visibilityM, cloudsPct int) ConditionType {
	switch {
	case visibilityM <= 1000:
		return ConditionFog
	case rainMmPerHour > 0:
		switch {
		case rainMmPerHour < 2.5:
			return ConditionLightRain
		case rainMmPerHour < 7.6:
			return ConditionModerateRain
		default:
			return ConditionHeavyRain
		}
	case visibilityM <= 2000:
		return ConditionMist
	case cloudsPct < 15:
		return ConditionClear
	case cloudsPct < 30:
		return ConditionFewClouds
	case cloudsPct < 60:
		return ConditionScattered
	case cloudsPct < 85:
		return ConditionBroken
	default:
		return ConditionOvercast
	}
}

// NewSymbol builds the symbol for the given quantities; daytime selects the "d" or "n" icon.
func NewSymbol(rainMmPerHour float64, visibilityM, cloudsPct int, daytime bool) Symbol {
	ct := Classify(rainMmPerHour, visibilityM, cloudsPct)
	info := conditionTable[ct]
	suffix := "n"
	if daytime {
		suffix = "d"
	}
	return Symbol{
		Type: ct,
		Code: info.code,
		Name: info.name,
		Icon: info.icon + suffix,
	}
}

// CloudName describes a cloud cover percentage the way OpenWeatherMap does.
func CloudName(cloudsPct int) string {
	return conditionTable[Classify(0, MaxVisibilityM, cloudsPct)].name
}
