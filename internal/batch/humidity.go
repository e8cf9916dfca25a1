package batch

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// RHNotKnown is the only string ever sent for "RH in percent".
const RHNotKnown = "not Known"

// DaysNotKnown is the sentinel for an unknown number of days since milling.
const DaysNotKnown = "not_known"

type rhKind uint8

const (
	rhInvalid rhKind = iota
	rhNumeric
	rhUnknownBySeason
)

// ErrUnresolvedRH is returned when a zero RelativeHumidity reaches the payload boundary.
var ErrUnresolvedRH = errors.New("relative humidity was not resolved")

// RelativeHumidity is either a measured percentage or "unknown, look it up by
// season". The zero value is unresolved and refuses to serialize.
type RelativeHumidity struct {
	kind    rhKind
	percent float64
	season  Season
}

// NumericRH builds the measured variant. p must be finite.
func NumericRH(p float64) RelativeHumidity {
	return RelativeHumidity{kind: rhNumeric, percent: p}
}

// UnknownRHBySeason builds the seasonal-lookup variant.
func UnknownRHBySeason(s Season) RelativeHumidity {
	return RelativeHumidity{kind: rhUnknownBySeason, season: s}
}

// Percent returns the measured value, if this is the numeric variant.
func (v RelativeHumidity) Percent() (float64, bool) {
	return v.percent, v.kind == rhNumeric
}

// LookupSeason returns the season to impute from, if this is the unknown variant.
func (v RelativeHumidity) LookupSeason() (Season, bool) {
	return v.season, v.kind == rhUnknownBySeason
}

func (v RelativeHumidity) String() string {
	switch v.kind {
	case rhNumeric:
		return fmt.Sprintf("%g%%", v.percent)
	case rhUnknownBySeason:
		return fmt.Sprintf("%s (lookup: %s)", RHNotKnown, v.season)
	default:
		return "(unresolved)"
	}
}

// wireValue is the JSON/YAML form: a number or the sentinel string.
func (v RelativeHumidity) wireValue() (any, error) {
	switch v.kind {
	case rhNumeric:
		if math.IsNaN(v.percent) || math.IsInf(v.percent, 0) {
			return nil, fmt.Errorf("relative humidity %v is not finite", v.percent)
		}
		return v.percent, nil
	case rhUnknownBySeason:
		return RHNotKnown, nil
	default:
		return nil, ErrUnresolvedRH
	}
}

func (v RelativeHumidity) MarshalJSON() ([]byte, error) {
	w, err := v.wireValue()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

func (v RelativeHumidity) MarshalYAML() (any, error) {
	return v.wireValue()
}
