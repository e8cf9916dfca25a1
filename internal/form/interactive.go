package form

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/idlab-discover/buckwheat-cli/internal/apperr"
	"github.com/idlab-discover/buckwheat-cli/internal/batch"
	"github.com/idlab-discover/buckwheat-cli/internal/ui"
)

// Action is what the user wants to do after a prediction was shown.
type Action string

const (
	ActionResubmit Action = "resubmit"
	ActionClear    Action = "clear"
	ActionQuit     Action = "quit"
)

// RunInteractive renders the surface as a terminal form and blocks until the
// user submits it. The RH method selector drives the controller, and the two
// RH groups are only shown when the container holds their control.
func RunInteractive(ctx context.Context, c *Controller, cat batch.Catalog) error {
	s := c.Surface()

	method := s.RHMethod
	rhValue, _ := s.RHValue()
	rhSeason, _ := s.RHSeason()

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewNote().
				Title("Buckwheat Shelf-Life Prediction").
				Description("Enter the storage conditions of the batch.\nAll fields are required."),
			huh.NewInput().
				Title(fieldTitle("Storage temperature (°C)")).
				Placeholder("e.g. 25").
				Value(&s.Temperature).
				Validate(requireNumber("storage temperature")),
			huh.NewSelect[batch.RHMethod]().
				Title(fieldTitle("Relative humidity")).
				Description("Is the relative humidity of the store known?").
				Options(
					huh.NewOption(batch.RHNumericEntry.Label(), batch.RHNumericEntry),
					huh.NewOption(batch.RHSeasonalLookup.Label(), batch.RHSeasonalLookup),
				).
				Value(&method).
				Validate(c.selectRHMethod),
		),
		huh.NewGroup(
			huh.NewInput().
				Title(fieldTitle("Relative humidity (%)")).
				Placeholder("e.g. 60").
				Value(&rhValue).
				Validate(requireNumber("relative humidity")),
		).WithHideFunc(func() bool { return rhGroupHidden(s, FieldRHValue) }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fieldTitle("Season for RH lookup")).
				Description(ui.Muted.Render("Used to impute RH; may differ from the batch season")).
				Options(huh.NewOptions(batch.SeasonNames()...)...).
				Value(&rhSeason).
				Validate(requireChoice("RH lookup season")),
		).WithHideFunc(func() bool { return rhGroupHidden(s, FieldRHSeason) }),
		huh.NewGroup(
			huh.NewInput().
				Title(fieldTitle("Days since milling")).
				Description(ui.Muted.Render("A number of days, or "+batch.DaysNotKnown)).
				Placeholder(batch.DaysNotKnown).
				Value(&s.DaysSinceMilling).
				Validate(func(v string) error {
					v = strings.TrimSpace(v)
					if v == batch.DaysNotKnown {
						return nil
					}
					return requireNumber("days since milling")(v)
				}),
			huh.NewSelect[string]().
				Title(fieldTitle("Season")).
				Options(huh.NewOptions(batch.SeasonNames()...)...).
				Value(&s.Season).
				Validate(requireChoice("season")),
			huh.NewSelect[string]().
				Title(fieldTitle("Moisture")).
				Options(huh.NewOptions(cat.Moisture...)...).
				Value(&s.Moisture).
				Validate(requireChoice("moisture")),
			huh.NewSelect[string]().
				Title(fieldTitle("Packing")).
				Options(huh.NewOptions(cat.Packing...)...).
				Value(&s.Packing).
				Validate(requireChoice("packing")),
		),
	}

	if err := huh.NewForm(groups...).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return apperr.ErrCancelled
		}
		return fmt.Errorf("interactive form: %w", err)
	}

	if method != s.RHMethod {
		c.OnRHMethodChanged(method)
	}
	if s.RH != nil {
		s.RH.Set(FieldRHValue, strings.TrimSpace(rhValue))
		s.RH.Set(FieldRHSeason, rhSeason)
	}
	s.Temperature = strings.TrimSpace(s.Temperature)
	s.DaysSinceMilling = strings.TrimSpace(s.DaysSinceMilling)
	return nil
}

// AskNext asks what to do once a result has been shown.
func AskNext(ctx context.Context) (Action, error) {
	action := ActionResubmit
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[Action]().
			Title("What next?").
			Options(
				huh.NewOption("Edit and submit again", ActionResubmit),
				huh.NewOption("Clear the form", ActionClear),
				huh.NewOption("Quit", ActionQuit),
			).
			Value(&action),
	)).RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return ActionQuit, nil
	}
	return action, err
}

// selectRHMethod runs when the method select loses focus, so the RH group
// that follows already reflects the choice.
func (c *Controller) selectRHMethod(m batch.RHMethod) error {
	if m != c.Surface().RHMethod {
		c.OnRHMethodChanged(m)
	}
	if m == batch.RHUnspecified {
		return errors.New("choose how relative humidity is acquired")
	}
	return nil
}

// rhGroupHidden reports whether the group editing control id is hidden. It is
// shown only while the container holds that control.
func rhGroupHidden(s *Surface, id string) bool {
	if s.RH == nil {
		return true
	}
	_, ok := s.RH.Lookup(id)
	return !ok
}

func fieldTitle(label string) string {
	return label + ui.Error.Render(" *")
}

func requireNumber(name string) func(string) error {
	return func(v string) error {
		v = strings.TrimSpace(v)
		if v == "" {
			return fmt.Errorf("%s is required", name)
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%s must be a number", name)
		}
		return nil
	}
}

func requireChoice(name string) func(string) error {
	return func(v string) error {
		if v == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
