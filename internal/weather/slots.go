package weather

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Slot token fields, in order. Missing or empty fields take the defaults
// 15 C, 0 m/s, 0 deg, 0 mm/h, 60 %.
const slotFieldCount = 5

// ParseSlot decodes a compact slot token "temp:wind:windDir:rain:humidity".
// Pressure, clouds and visibility are left for the generator to derive.
func ParseSlot(token string) (Condition, error) {
	c := NewCondition()

	token = strings.TrimSpace(token)
	if token == "" {
		return c, fmt.Errorf("%w: empty slot token", ErrInvalidSchedule)
	}

	fields := strings.Split(token, ":")
	if len(fields) > slotFieldCount {
		return c, fmt.Errorf("%w: slot %q has %d fields, at most %d allowed", ErrInvalidSchedule, token, len(fields), slotFieldCount)
	}

	values := make([]float64, slotFieldCount)
	present := make([]bool, slotFieldCount)
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return c, fmt.Errorf("%w: slot %q field %d is not a number", ErrInvalidSchedule, token, i+1)
		}
		values[i] = v
		present[i] = true
	}

	if present[0] {
		c.TemperatureC = values[0]
	}
	if present[1] {
		c.WindSpeed = values[1]
	}
	if present[2] {
		c.WindDirectionDeg = values[2]
	}
	if present[3] {
		c.RainMmPerHour = values[3]
	}
	if present[4] {
		c.HumidityPct = int(math.Round(values[4]))
	}

	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("slot %q: %w", token, err)
	}
	if c.HumidityPct < 0 || c.HumidityPct > 100 {
		return c, fmt.Errorf("%w: slot %q humidity out of range", ErrInvalidSchedule, token)
	}
	return c, nil
}

// ParseSlots decodes slot tokens. Each element may itself hold several
// comma-separated tokens.
func ParseSlots(slotLengthMinutes int, tokens []string) ([]Condition, error) {
	if slotLengthMinutes <= 0 {
		return nil, fmt.Errorf("%w: slot length must be positive, got %d", ErrInvalidSchedule, slotLengthMinutes)
	}

	var conditions []Condition
	for _, raw := range tokens {
		for _, tok := range strings.Split(raw, ",") {
			c, err := ParseSlot(tok)
			if err != nil {
				return nil, err
			}
			c.DurationMinutes = slotLengthMinutes
			conditions = append(conditions, c)
		}
	}
	if len(conditions) == 0 {
		return nil, fmt.Errorf("%w: no slots supplied", ErrInvalidSchedule)
	}
	return conditions, nil
}
