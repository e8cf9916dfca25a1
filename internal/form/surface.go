// Package form models the presentation surface of the batch form and the
// controller that keeps its conditional RH sub-form consistent.
//
// The surface is a plain typed object. Input adapters (flags, batch files,
// the interactive huh form) write into it; the composer only reads it.
package form

import (
	"sync"

	"github.com/idlab-discover/buckwheat-cli/internal/batch"
)

// Field identifiers of the presentation surface.
const (
	FieldTemperature      = "temperature"
	FieldRHMethod         = "rh_method"
	FieldRHValue          = "rh_value"
	FieldRHSeason         = "rh_season"
	FieldDaysSinceMilling = "days_since_milling"
	FieldSeason           = "season"
	FieldMoisture         = "moisture"
	FieldPacking          = "packing"
)

// Values is the raw, unvalidated content of every field, as typed by the user
// or read from a batch file.
type Values struct {
	Temperature      string `yaml:"temperature" json:"temperature"`
	RHMethod         string `yaml:"rh_method" json:"rh_method"`
	RHValue          string `yaml:"rh_value" json:"rh_value"`
	RHSeason         string `yaml:"rh_season" json:"rh_season"`
	DaysSinceMilling string `yaml:"days_since_milling" json:"days_since_milling"`
	Season           string `yaml:"season" json:"season"`
	Moisture         string `yaml:"moisture" json:"moisture"`
	Packing          string `yaml:"packing" json:"packing"`
}

// Surface is the form state. Fields are mutated on the caller's goroutine
// only; Result is safe for concurrent use by in-flight submissions.
type Surface struct {
	Temperature      string
	RHMethod         batch.RHMethod
	DaysSinceMilling string
	Season           string
	Moisture         string
	Packing          string

	// RH is the container for the conditional RH sub-form. It may be nil on
	// a degraded surface; the controller tolerates that.
	RH *Container

	Result *ResultPanel

	// OnAlert, when set, is called for every blocking validation message.
	OnAlert func(message string)

	alertMu sync.Mutex
	alerts  []string
}

// NewSurface returns an empty surface with an RH container and an idle result panel.
func NewSurface() *Surface {
	return &Surface{
		RH:     &Container{},
		Result: NewResultPanel(),
	}
}

// Alert records a blocking, user-facing message.
func (s *Surface) Alert(message string) {
	s.alertMu.Lock()
	s.alerts = append(s.alerts, message)
	hook := s.OnAlert
	s.alertMu.Unlock()

	if hook != nil {
		hook(message)
	}
}

// Alerts returns every message raised so far, oldest first.
func (s *Surface) Alerts() []string {
	s.alertMu.Lock()
	defer s.alertMu.Unlock()
	out := make([]string, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// RHValue returns the numeric RH control's content if that control is rendered.
func (s *Surface) RHValue() (string, bool) {
	return s.rhControlValue(FieldRHValue)
}

// RHSeason returns the lookup-season selection if that selector is rendered.
func (s *Surface) RHSeason() (string, bool) {
	return s.rhControlValue(FieldRHSeason)
}

func (s *Surface) rhControlValue(id string) (string, bool) {
	if s.RH == nil {
		return "", false
	}
	c, ok := s.RH.Lookup(id)
	if !ok {
		return "", false
	}
	return c.Value, true
}

// Values snapshots the surface as raw strings.
func (s *Surface) Values() Values {
	v := Values{
		Temperature:      s.Temperature,
		RHMethod:         s.RHMethod.String(),
		DaysSinceMilling: s.DaysSinceMilling,
		Season:           s.Season,
		Moisture:         s.Moisture,
		Packing:          s.Packing,
	}
	v.RHValue, _ = s.RHValue()
	v.RHSeason, _ = s.RHSeason()
	return v
}

// ControlKind is the widget type of a rendered RH control.
type ControlKind int

const (
	NumericInput ControlKind = iota
	SeasonSelect
)

// Control is one rendered input inside the RH container.
type Control struct {
	ID       string
	Kind     ControlKind
	Label    string
	Required bool
	Options  []string // SeasonSelect only
	Value    string
}

// Container holds the controls of the conditional RH sub-form.
type Container struct {
	controls []*Control
}

// snapshot returns copies of the rendered controls in order.
func (c *Container) snapshot() []Control {
	out := make([]Control, 0, len(c.controls))
	for _, ctrl := range c.controls {
		cp := *ctrl
		cp.Options = append([]string(nil), ctrl.Options...)
		out = append(out, cp)
	}
	return out
}

func (c *Container) Len() int { return len(c.controls) }

// Lookup finds a rendered control by field id.
func (c *Container) Lookup(id string) (*Control, bool) {
	for _, ctrl := range c.controls {
		if ctrl.ID == id {
			return ctrl, true
		}
	}
	return nil, false
}

// Set writes value into the control with the given id. It reports false when
// no such control is rendered.
func (c *Container) Set(id, value string) bool {
	ctrl, ok := c.Lookup(id)
	if !ok {
		return false
	}
	ctrl.Value = value
	return true
}

func (c *Container) empty() { c.controls = nil }

func (c *Container) add(ctrl Control) { c.controls = append(c.controls, &ctrl) }
