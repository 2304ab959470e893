// Package owmxml renders generated weather as OpenWeatherMap-compatible XML.
package owmxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/i474232898/owm-weather-mock/internal/common"
	"github.com/i474232898/owm-weather-mock/internal/weather"
)

// TimeLayout is the timestamp format used in attributes and text nodes.
const TimeLayout = "2006-01-02T15:04:05"

// Header is prepended to every document.
const Header = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

var selfClosing = regexp.MustCompile(`<(\w+)([^/>]*)/>`)

// ExpandSelfClosing rewrites <tag attrs/> as <tag attrs></tag>. Processing
// instructions such as the XML declaration are left alone.
func ExpandSelfClosing(doc []byte) []byte {
	return selfClosing.ReplaceAll(doc, []byte("<$1$2></$1>"))
}

// Encode marshals a document, expands self-closing tags and prepends the XML declaration.
func Encode(v any) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal xml: %w", err)
	}
	var buf bytes.Buffer
	buf.Grow(len(Header) + len(body))
	buf.WriteString(Header)
	buf.Write(ExpandSelfClosing(body))
	return buf.Bytes(), nil
}

// MarshalCurrent renders a Current observation as a <current> document.
func MarshalCurrent(c weather.Current) ([]byte, error) {
	return Encode(NewCurrentDocument(c))
}

// MarshalForecast renders a Forecast as a <weatherdata> document.
func MarshalForecast(f weather.Forecast) ([]byte, error) {
	return Encode(NewForecastDocument(f))
}

// ParseCurrent decodes a <current> document.
func ParseCurrent(data []byte) (CurrentDocument, error) {
	var doc CurrentDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parse current: %w", err)
	}
	return doc, nil
}

// ParseForecast decodes a <weatherdata> document.
func ParseForecast(data []byte) (ForecastDocument, error) {
	var doc ForecastDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parse forecast: %w", err)
	}
	return doc, nil
}

// NewCurrentDocument maps a Current observation onto the XML schema.
func NewCurrentDocument(c weather.Current) CurrentDocument {
	r := c.Reading
	doc := CurrentDocument{
		City: City{
			ID:   strconv.Itoa(c.Station.ID),
			Name: c.Station.Name,
			Coord: Coord{
				Lon: formatFloat(c.Location.Lon, 4),
				Lat: formatFloat(c.Location.Lat, 4),
			},
			Country:  c.Station.Country,
			Timezone: "0",
			Sun:      newSun(c.Sun),
		},
		Temperature: Temperature{
			Value: formatFloat(r.TemperatureC, 2),
			Min:   formatFloat(r.TemperatureC, 2),
			Max:   formatFloat(r.TemperatureC, 2),
			Unit:  "celsius",
		},
		FeelsLike: ValueUnit{Value: formatFloat(r.FeelsLikeC, 2), Unit: "celsius"},
		Humidity:  ValueUnit{Value: strconv.Itoa(r.HumidityPct), Unit: "%"},
		Pressure:  ValueUnit{Value: formatFloat(r.PressureHpa, 0), Unit: "hPa"},
		Wind: Wind{
			Speed: WindSpeed{
				Value: formatFloat(r.WindSpeed, 2),
				Unit:  "m/s",
				Name:  BeaufortName(r.WindSpeed),
			},
			Direction: WindDirection{
				Value: formatFloat(r.WindDirectionDeg, 0),
				Code:  CompassCode(r.WindDirectionDeg),
				Name:  CompassName(r.WindDirectionDeg),
			},
		},
		Clouds:     Clouds{Value: strconv.Itoa(r.CloudsPct), Name: weather.CloudName(r.CloudsPct)},
		Visibility: Value{Value: strconv.Itoa(r.VisibilityM)},
		Precipitation: Precipitation{
			Mode: "no",
		},
		Weather: WeatherSymbol{
			Number: strconv.Itoa(c.Symbol.Code),
			Value:  c.Symbol.Name,
			Icon:   c.Symbol.Icon,
		},
		LastUpdate: Value{Value: formatTime(c.Timestamp)},
	}
	if r.RainMmPerHour > 0 {
		doc.Precipitation = Precipitation{
			Value: formatFloat(r.RainMmPerHour, 2),
			Mode:  "rain",
			Unit:  "1h",
		}
	}
	return doc
}

// NewForecastDocument maps a Forecast onto the XML schema.
func NewForecastDocument(f weather.Forecast) ForecastDocument {
	now := time.Now().UTC()
	if len(f.Samples) > 0 {
		now = f.Samples[0].Timestamp
	}

	doc := ForecastDocument{
		Location: ForecastLocation{
			Name:     f.Station.Name,
			Country:  f.Station.Country,
			Timezone: "0",
			Position: Position{
				Altitude:  "0",
				Latitude:  formatFloat(f.Location.Lat, 4),
				Longitude: formatFloat(f.Location.Lon, 4),
				Geobase:   "geonames",
				GeobaseID: strconv.Itoa(f.Station.ID),
			},
		},
		Meta: Meta{
			LastUpdate: formatTime(now),
			CalcTime:   "0",
			NextUpdate: formatTime(now.Add(f.Step)),
		},
		Sun: newSun(f.Sun),
		Forecast: ForecastList{
			Times: make([]ForecastTime, 0, len(f.Samples)),
		},
	}

	stepUnit := fmt.Sprintf("%dh", int(f.Step.Hours()))
	if f.Step%time.Hour != 0 {
		stepUnit = fmt.Sprintf("%dm", int(f.Step.Minutes()))
	}

	for _, s := range f.Samples {
		r := s.Reading
		ft := ForecastTime{
			From: formatTime(s.Timestamp),
			To:   formatTime(s.Timestamp.Add(f.Step)),
			Symbol: ForecastSymbol{
				Number: strconv.Itoa(s.Symbol.Code),
				Name:   s.Symbol.Name,
				Var:    s.Symbol.Icon,
			},
			WindDirection: ForecastWindDirection{
				Deg:  formatFloat(r.WindDirectionDeg, 0),
				Code: CompassCode(r.WindDirectionDeg),
				Name: CompassName(r.WindDirectionDeg),
			},
			WindSpeed: ForecastWindSpeed{
				Mps:  formatFloat(r.WindSpeed, 2),
				Unit: "m/s",
				Name: BeaufortName(r.WindSpeed),
			},
			Temperature: Temperature{
				Unit:  "celsius",
				Value: formatFloat(r.TemperatureC, 2),
				Min:   formatFloat(s.MinTemperatureC, 2),
				Max:   formatFloat(s.MaxTemperatureC, 2),
			},
			Pressure: ValueUnit{Value: formatFloat(r.PressureHpa, 0), Unit: "hPa"},
			Humidity: ValueUnit{Value: strconv.Itoa(r.HumidityPct), Unit: "%"},
			Clouds: ForecastClouds{
				Value: weather.CloudName(r.CloudsPct),
				All:   strconv.Itoa(r.CloudsPct),
				Unit:  "%",
			},
			Visibility: Value{Value: strconv.Itoa(r.VisibilityM)},
		}
		if s.PrecipitationMm > 0 {
			ft.Precipitation = ForecastPrecipitation{
				Unit:  stepUnit,
				Value: formatFloat(s.PrecipitationMm, 2),
				Type:  "rain",
			}
		}
		doc.Forecast.Times = append(doc.Forecast.Times, ft)
	}
	return doc
}

func newSun(s weather.SunTimes) Sun {
	return Sun{Rise: formatTime(s.Rise), Set: formatTime(s.Set)}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// formatFloat renders v with at most places decimals, '.' separator and no exponent.
func formatFloat(v float64, places int) string {
	r := common.Round(v, places)
	if r == 0 {
		r = 0 // drop negative zero
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
