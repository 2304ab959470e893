package httpapi

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/owm-weather-mock/internal/store"
	"github.com/i474232898/owm-weather-mock/internal/weather"
)

// observationQuery holds query parameters shared by the GET endpoints.
type observationQuery struct {
	Lat    *float64 `validate:"required,gte=-90,lte=90"`
	Lon    *float64 `validate:"required,gte=-180,lte=180"`
	AppID  string   `validate:"required"`
	TimeMs *int64
}

// at returns the requested instant, or now when time was omitted.
func (q observationQuery) at() time.Time {
	if q.TimeMs == nil {
		return time.Now().UTC()
	}
	return time.UnixMilli(*q.TimeMs).UTC()
}

func parseObservationQuery(c *fiber.Ctx) (observationQuery, error) {
	var q observationQuery
	var err error

	if q.Lat, err = parseFloatParam(c, "lat"); err != nil {
		return q, err
	}
	if q.Lon, err = parseFloatParam(c, "lon"); err != nil {
		return q, err
	}
	q.AppID = c.Query("APPID")

	if s := c.Query("time"); s != "" {
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return q, errors.New("invalid time; use milliseconds since epoch")
		}
		q.TimeMs = &ms
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

func parseFloatParam(c *fiber.Ctx, name string) (*float64, error) {
	s := c.Query(name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", name, s)
	}
	return &v, nil
}

// cacheKey mirrors the X-Cache-Key header of the upstream service.
func cacheKey(endpoint string, q observationQuery) string {
	return fmt.Sprintf("%s?APPID=%s&lat=%s&lon=%s&mode=xml", endpoint, q.AppID,
		strconv.FormatFloat(*q.Lat, 'f', -1, 64), strconv.FormatFloat(*q.Lon, 'f', -1, 64))
}

// locationQuery is the optional lat/lon pair on schedule endpoints.
type locationQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

// parseOptionalLocation returns nil when neither lat nor lon is present.
func parseOptionalLocation(c *fiber.Ctx) (*weather.Location, error) {
	lat, err := parseFloatParam(c, "lat")
	if err != nil {
		return nil, err
	}
	lon, err := parseFloatParam(c, "lon")
	if err != nil {
		return nil, err
	}
	if lat == nil && lon == nil {
		return nil, nil
	}
	if lat == nil || lon == nil {
		return nil, errors.New("lat and lon must be given together")
	}

	q := locationQuery{Lat: *lat, Lon: *lon}
	if err := validate.Struct(q); err != nil {
		return nil, err
	}
	return &weather.Location{Lat: q.Lat, Lon: q.Lon}, nil
}

func scheduleKey(loc *weather.Location) string {
	if loc == nil {
		return store.GlobalKey
	}
	return loc.Key()
}

// conditionRequest is one Condition in a create/conditions body. Every field
// is optional; nil takes the documented default.
type conditionRequest struct {
	TemperatureC     *float64 `json:"temperatureC" validate:"omitempty,gte=-90,lte=70"`
	WindSpeed        *float64 `json:"windSpeed" validate:"omitempty,gte=0"`
	WindDirectionDeg *float64 `json:"windDirectionDeg"`
	RainMmPerHour    *float64 `json:"rainMmPerHour" validate:"omitempty,gte=0"`
	PressureHpa      *float64 `json:"pressureHpa" validate:"omitempty,gt=0"`
	HumidityPct      *int     `json:"humidityPct" validate:"omitempty,gte=0,lte=100"`
	CloudsPct        *int     `json:"cloudsPct" validate:"omitempty,gte=0,lte=100"`
	VisibilityM      *int     `json:"visibilityM" validate:"omitempty,gte=0,lte=10000"`
	DurationMinutes  *int     `json:"durationMinutes" validate:"omitempty,gt=0"`
}

func (r conditionRequest) toCondition() weather.Condition {
	c := weather.NewCondition()
	if r.TemperatureC != nil {
		c.TemperatureC = *r.TemperatureC
	}
	if r.WindSpeed != nil {
		c.WindSpeed = *r.WindSpeed
	}
	if r.WindDirectionDeg != nil {
		c.WindDirectionDeg = *r.WindDirectionDeg
	}
	if r.RainMmPerHour != nil {
		c.RainMmPerHour = *r.RainMmPerHour
	}
	if r.PressureHpa != nil {
		c.PressureHpa = *r.PressureHpa
	}
	if r.HumidityPct != nil {
		c.HumidityPct = *r.HumidityPct
	}
	c.CloudsPct = r.CloudsPct
	c.VisibilityM = r.VisibilityM
	if r.DurationMinutes != nil {
		c.DurationMinutes = *r.DurationMinutes
	}
	return c
}

// createConditionsRequest is the create/conditions JSON body.
type createConditionsRequest struct {
	MinutesBetweenSamples int                `json:"minutesBetweenSamples" validate:"gt=0"`
	Conditions            []conditionRequest `json:"conditions" validate:"required,min=1,dive"`
}

func (r createConditionsRequest) toConditions() []weather.Condition {
	out := make([]weather.Condition, 0, len(r.Conditions))
	for _, c := range r.Conditions {
		out = append(out, c.toCondition())
	}
	return out
}

// slotsQuery holds the create/slots parameters. slot may repeat and each
// value may carry several comma-separated tokens.
type slotsQuery struct {
	SlotLength int      `validate:"gt=0"`
	Slots      []string `validate:"required,min=1"`
}

func (s *slotsQuery) bind(c *fiber.Ctx) error {
	raw := c.Query("slotLength")
	if raw == "" {
		return errors.New("slotLength query parameter is required")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid slotLength %q", raw)
	}
	s.SlotLength = n

	for _, v := range c.Context().QueryArgs().PeekMulti("slot") {
		s.Slots = append(s.Slots, string(v))
	}
	return nil
}

type anchorResponse struct {
	ActivatesAt time.Time         `json:"activatesAt"`
	Condition   weather.Condition `json:"condition"`
}

type scheduleResponse struct {
	ID            string           `json:"id"`
	Key           string           `json:"key"`
	Origin        time.Time        `json:"origin"`
	PeriodMinutes float64          `json:"periodMinutes"`
	Anchors       []anchorResponse `json:"anchors"`
}

func newScheduleResponse(s *weather.Schedule, key string) scheduleResponse {
	times := s.ActivationTimes()
	anchors := make([]anchorResponse, len(s.Anchors))
	for i, a := range s.Anchors {
		anchors[i] = anchorResponse{ActivatesAt: times[i], Condition: a.Condition}
	}
	return scheduleResponse{
		ID:            s.ID,
		Key:           key,
		Origin:        s.Origin,
		PeriodMinutes: s.Period.Minutes(),
		Anchors:       anchors,
	}
}
