package composer

import (
	"math"
	"strconv"
	"strings"

	"github.com/idlab-discover/buckwheat-cli/internal/apperr"
	"github.com/idlab-discover/buckwheat-cli/internal/batch"
	"github.com/idlab-discover/buckwheat-cli/internal/form"
)

// Rule is one required-field check. Rules run in order and the first failing
// one aborts the submission with its Message.
type Rule struct {
	Field string
	// When limits the rule to surfaces it applies to; nil means always.
	When    func(s *form.Surface) bool
	Extract func(s *form.Surface) string
	Check   func(v string) bool
	Message string
}

func (r Rule) applies(s *form.Surface) bool { return r.When == nil || r.When(s) }

// ValidationError is a failed Rule. It unwraps to an *apperr.UserError.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return &apperr.UserError{Message: e.Message} }

// Rules returns the ordered checks for a submission against cat.
func Rules(cat batch.Catalog) []Rule {
	numeric := func(s *form.Surface) bool { return s.RHMethod == batch.RHNumericEntry }
	seasonal := func(s *form.Surface) bool { return s.RHMethod == batch.RHSeasonalLookup }
	rhValue := func(s *form.Surface) string { v, _ := s.RHValue(); return v }
	rhSeason := func(s *form.Surface) string { v, _ := s.RHSeason(); return v }
	isSeason := func(v string) bool { _, ok := batch.ParseSeason(v); return ok }

	return []Rule{
		{
			Field:   form.FieldTemperature,
			Extract: func(s *form.Surface) string { return s.Temperature },
			Check:   present,
			Message: "Please enter the storage temperature (°C).",
		},
		{
			Field:   form.FieldTemperature,
			Extract: func(s *form.Surface) string { return s.Temperature },
			Check:   finite,
			Message: "Storage temperature must be a number.",
		},
		{
			Field:   form.FieldRHMethod,
			Extract: func(s *form.Surface) string { return s.RHMethod.String() },
			Check:   present,
			Message: "Please select how relative humidity is provided.",
		},
		{
			Field:   form.FieldRHValue,
			When:    numeric,
			Extract: rhValue,
			Check:   present,
			Message: "Please enter the relative humidity (%).",
		},
		{
			Field:   form.FieldRHValue,
			When:    numeric,
			Extract: rhValue,
			Check:   finite,
			Message: "Relative humidity must be a number.",
		},
		{
			Field:   form.FieldRHSeason,
			When:    seasonal,
			Extract: rhSeason,
			Check:   present,
			Message: "Please select the season for the RH lookup.",
		},
		{
			Field:   form.FieldRHSeason,
			When:    seasonal,
			Extract: rhSeason,
			Check:   isSeason,
			Message: "RH lookup season must be one of " + strings.Join(batch.SeasonNames(), ", ") + ".",
		},
		{
			Field:   form.FieldDaysSinceMilling,
			Extract: func(s *form.Surface) string { return s.DaysSinceMilling },
			Check:   present,
			Message: "Please enter the days since milling.",
		},
		{
			Field:   form.FieldDaysSinceMilling,
			Extract: func(s *form.Surface) string { return s.DaysSinceMilling },
			Check:   func(v string) bool { return strings.TrimSpace(v) == batch.DaysNotKnown || finite(v) },
			Message: "Days since milling must be a number or " + batch.DaysNotKnown + ".",
		},
		{
			Field:   form.FieldSeason,
			Extract: func(s *form.Surface) string { return s.Season },
			Check:   present,
			Message: "Please select the season.",
		},
		{
			Field:   form.FieldSeason,
			Extract: func(s *form.Surface) string { return s.Season },
			Check:   isSeason,
			Message: "Season must be one of " + strings.Join(batch.SeasonNames(), ", ") + ".",
		},
		{
			Field:   form.FieldMoisture,
			Extract: func(s *form.Surface) string { return s.Moisture },
			Check:   present,
			Message: "Please select the moisture.",
		},
		{
			Field:   form.FieldMoisture,
			Extract: func(s *form.Surface) string { return s.Moisture },
			Check:   func(v string) bool { return cat.HasMoisture(strings.TrimSpace(v)) },
			Message: "Moisture must be one of " + quoteJoin(cat.Moisture) + ".",
		},
		{
			Field:   form.FieldPacking,
			Extract: func(s *form.Surface) string { return s.Packing },
			Check:   present,
			Message: "Please select the packing.",
		},
		{
			Field:   form.FieldPacking,
			Extract: func(s *form.Surface) string { return s.Packing },
			Check:   func(v string) bool { return cat.HasPacking(strings.TrimSpace(v)) },
			Message: "Packing must be one of " + quoteJoin(cat.Packing) + ".",
		},
	}
}

// Check runs rules against s and returns the first failure.
func Check(rules []Rule, s *form.Surface) *ValidationError {
	for _, r := range rules {
		if !r.applies(s) {
			continue
		}
		if !r.Check(r.Extract(s)) {
			return &ValidationError{Field: r.Field, Message: r.Message}
		}
	}
	return nil
}

func present(v string) bool { return strings.TrimSpace(v) != "" }

func finite(v string) bool {
	_, ok := parseFinite(v)
	return ok
}

func parseFinite(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func quoteJoin(list []string) string {
	q := make([]string, len(list))
	for i, s := range list {
		q[i] = strconv.Quote(s)
	}
	return strings.Join(q, ", ")
}
