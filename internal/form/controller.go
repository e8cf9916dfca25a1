package form

import (
	"strings"

	"github.com/idlab-discover/buckwheat-cli/internal/apperr"
	"github.com/idlab-discover/buckwheat-cli/internal/batch"
)

// Controller keeps the RH portion of the surface in step with the chosen
// acquisition method and implements the full-form reset.
type Controller struct {
	surface *Surface
}

// NewController binds a controller to s.
func NewController(s *Surface) *Controller {
	return &Controller{surface: s}
}

// Surface returns the bound surface.
func (c *Controller) Surface() *Surface { return c.surface }

// OnRHMethodChanged swaps the RH sub-form: it always empties the container,
// then renders the single control the method needs.
func (c *Controller) OnRHMethodChanged(method batch.RHMethod) {
	s := c.surface
	s.RHMethod = method

	if s.RH == nil {
		logf("", "RH sub-form container missing; cannot render controls for method %q", method)
		return
	}

	s.RH.empty()
	switch method {
	case batch.RHNumericEntry:
		s.RH.add(Control{
			ID:       FieldRHValue,
			Kind:     NumericInput,
			Label:    "Relative humidity (%)",
			Required: true,
		})
	case batch.RHSeasonalLookup:
		s.RH.add(Control{
			ID:       FieldRHSeason,
			Kind:     SeasonSelect,
			Label:    "Season for RH lookup",
			Required: true,
			Options:  batch.SeasonNames(),
		})
	}
	logf("", "RH method set to %q (%d control(s) rendered)", method, s.RH.Len())
}

// Clear resets every field, the RH sub-form and the result panel. It is
// idempotent.
func (c *Controller) Clear() {
	s := c.surface
	s.Temperature = ""
	s.DaysSinceMilling = ""
	s.Season = ""
	s.Moisture = ""
	s.Packing = ""
	c.OnRHMethodChanged(batch.RHUnspecified)
	if s.Result != nil {
		s.Result.Reset()
	}
}

// Apply fills the surface from raw values. When no RH method is given it is
// inferred from whichever RH field is filled in.
func (c *Controller) Apply(v Values) error {
	method, err := batch.ParseRHMethod(v.RHMethod)
	if err != nil {
		return apperr.User(err.Error())
	}

	rhValue := strings.TrimSpace(v.RHValue)
	rhSeason := strings.TrimSpace(v.RHSeason)
	if method == batch.RHUnspecified {
		switch {
		case rhValue != "" && rhSeason != "":
			return apperr.User("both an RH value and an RH lookup season were given; choose one with --rh-method")
		case rhValue != "":
			method = batch.RHNumericEntry
		case rhSeason != "":
			method = batch.RHSeasonalLookup
		}
	}

	c.Clear()
	s := c.surface
	s.Temperature = strings.TrimSpace(v.Temperature)
	s.DaysSinceMilling = strings.TrimSpace(v.DaysSinceMilling)
	s.Season = strings.TrimSpace(v.Season)
	s.Moisture = strings.TrimSpace(v.Moisture)
	s.Packing = strings.TrimSpace(v.Packing)

	c.OnRHMethodChanged(method)
	if s.RH != nil {
		switch method {
		case batch.RHNumericEntry:
			s.RH.Set(FieldRHValue, rhValue)
		case batch.RHSeasonalLookup:
			s.RH.Set(FieldRHSeason, rhSeason)
		}
	}
	return nil
}
