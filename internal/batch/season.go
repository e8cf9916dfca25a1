// Package batch holds the domain model of a buckwheat grain batch: the closed
// value sets, the tagged relative-humidity value and the outbound payload.
package batch

import (
	"fmt"
	"strings"
)

// Season is one of the five categorical buckets used both as a model input and
// as the key for RH imputation.
type Season string

const (
	SeasonSummer Season = "Summer"
	SeasonSpring Season = "Spring"
	SeasonAutumn Season = "Autumn"
	SeasonWinter Season = "Winter"
	SeasonRainy  Season = "Rainy"
)

// Seasons lists the closed set in display order.
var Seasons = []Season{SeasonSummer, SeasonSpring, SeasonAutumn, SeasonWinter, SeasonRainy}

// ParseSeason matches s against the closed set, ignoring case and surrounding space.
func ParseSeason(s string) (Season, bool) {
	s = strings.TrimSpace(s)
	for _, season := range Seasons {
		if strings.EqualFold(s, string(season)) {
			return season, true
		}
	}
	return "", false
}

func (s Season) String() string { return string(s) }

// SeasonNames returns the closed set as plain strings.
func SeasonNames() []string {
	out := make([]string, len(Seasons))
	for i, s := range Seasons {
		out[i] = string(s)
	}
	return out
}

// RHMethod is how the relative humidity of the batch is acquired.
type RHMethod int

const (
	RHUnspecified RHMethod = iota
	RHNumericEntry
	RHSeasonalLookup
)

func (m RHMethod) String() string {
	switch m {
	case RHNumericEntry:
		return "numeric"
	case RHSeasonalLookup:
		return "seasonal"
	default:
		return ""
	}
}

// Label is the human readable name shown in forms.
func (m RHMethod) Label() string {
	switch m {
	case RHNumericEntry:
		return "Known (enter value)"
	case RHSeasonalLookup:
		return "Not known (use seasonal lookup)"
	default:
		return "Select method"
	}
}

// ParseRHMethod accepts the canonical names plus the aliases "known" and
// "not_known" used by the web form.
func ParseRHMethod(s string) (RHMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unspecified":
		return RHUnspecified, nil
	case "numeric", "known", "value":
		return RHNumericEntry, nil
	case "seasonal", "lookup", "not_known", "unknown":
		return RHSeasonalLookup, nil
	default:
		return RHUnspecified, fmt.Errorf("unknown RH method %q (expected numeric|seasonal)", s)
	}
}
