// Package composer validates the form surface, folds it into the outbound
// payload, submits it and renders the answer into the result panel.
package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/idlab-discover/buckwheat-cli/internal/batch"
	"github.com/idlab-discover/buckwheat-cli/internal/form"
	"github.com/idlab-discover/buckwheat-cli/internal/predictor"
)

const (
	HeadingError     = "Prediction Error:"
	HeadingMalformed = "Malformed Response"
)

// Outcome describes one submission.
type Outcome struct {
	RequestID  string
	Payload    *batch.Payload
	Prediction *batch.Prediction
	Err        error
	// Stale is set when a newer submission or a Clear superseded this one
	// and its answer was discarded.
	Stale   bool
	Elapsed time.Duration
}

// Failed reports whether the submission ended in an error.
func (o Outcome) Failed() bool { return o.Err != nil }

// Composer reads a form.Surface and never mutates its fields; it only drives
// the result panel and raises alerts.
type Composer struct {
	surface   *form.Surface
	predictor predictor.Predictor
	catalog   batch.Catalog
	rules     []Rule
	clock     clockwork.Clock
	newID     func() string
}

// Option configures a Composer.
type Option func(*Composer)

// WithCatalog replaces the default moisture and packing sets.
func WithCatalog(cat batch.Catalog) Option {
	return func(c *Composer) { c.catalog = cat }
}

// WithClock sets the clock used for elapsed times.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Composer) { c.clock = clock }
}

// WithRequestIDs sets the request id generator.
func WithRequestIDs(fn func() string) Option {
	return func(c *Composer) { c.newID = fn }
}

func New(s *form.Surface, p predictor.Predictor, opts ...Option) *Composer {
	c := &Composer{
		surface:   s,
		predictor: p,
		catalog:   batch.DefaultCatalog(),
		clock:     clockwork.NewRealClock(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	if s.Result == nil {
		s.Result = form.NewResultPanel()
	}
	c.rules = Rules(c.catalog)
	return c
}

// Catalog returns the closed sets the composer validates against.
func (c *Composer) Catalog() batch.Catalog { return c.catalog }

// Validate runs the rules and resolves the surface into typed measurements.
func (c *Composer) Validate() (batch.Measurements, error) {
	s := c.surface
	if verr := Check(c.rules, s); verr != nil {
		return batch.Measurements{}, verr
	}

	temp, _ := parseFinite(s.Temperature)
	season, _ := batch.ParseSeason(s.Season)
	m := batch.Measurements{
		Temperature:      temp,
		DaysSinceMilling: strings.TrimSpace(s.DaysSinceMilling),
		Season:           season,
		Moisture:         strings.TrimSpace(s.Moisture),
		Packing:          strings.TrimSpace(s.Packing),
	}

	switch s.RHMethod {
	case batch.RHNumericEntry:
		v, _ := s.RHValue()
		pct, _ := parseFinite(v)
		m.RH = batch.NumericRH(pct)
	case batch.RHSeasonalLookup:
		v, _ := s.RHSeason()
		lookup, _ := batch.ParseSeason(v)
		m.RH = batch.UnknownRHBySeason(lookup)
	}
	return m, nil
}

// Compose validates and builds the payload without sending it.
func (c *Composer) Compose() (batch.Payload, error) {
	m, err := c.Validate()
	if err != nil {
		return batch.Payload{}, err
	}
	return batch.NewPayload(m), nil
}

// Submit validates, composes, sends and renders one submission, blocking
// until the predictor answers. A validation failure raises an alert and
// sends nothing.
func (c *Composer) Submit(ctx context.Context) Outcome {
	sub, out, ok := c.begin()
	if !ok {
		return out
	}
	return sub.finish(ctx)
}

// SubmitAsync validates and marks the panel Pending on the caller's
// goroutine, then sends on a new goroutine. A validation failure is returned
// directly and nothing is sent. Otherwise the channel yields exactly one
// Outcome; it is Stale when a later submission or a Clear superseded it.
func (c *Composer) SubmitAsync(ctx context.Context) (<-chan Outcome, error) {
	sub, out, ok := c.begin()
	if !ok {
		return nil, out.Err
	}
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		ch <- sub.finish(ctx)
	}()
	return ch, nil
}

type submission struct {
	c       *Composer
	token   uint64
	payload batch.Payload
	id      string
}

func (c *Composer) begin() (*submission, Outcome, bool) {
	payload, err := c.Compose()
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			logf("", "validation failed on %s: %s", verr.Field, verr.Message)
			c.surface.Alert(verr.Message)
		}
		return nil, Outcome{Err: err}, false
	}

	id := c.newID()
	token := c.surface.Result.Begin(id)
	logf(id, "submission %d pending", token)
	return &submission{c: c, token: token, payload: payload, id: id}, Outcome{}, true
}

func (sub *submission) finish(ctx context.Context) Outcome {
	c := sub.c
	start := c.clock.Now()
	pred, err := c.predictor.Predict(ctx, sub.id, sub.payload)
	elapsed := c.clock.Since(start)
	if err == nil && pred == nil {
		err = &predictor.MalformedResponseError{Reason: "empty prediction"}
	}

	out := Outcome{
		RequestID:  sub.id,
		Payload:    &sub.payload,
		Prediction: pred,
		Err:        err,
		Elapsed:    elapsed,
	}

	var applied bool
	if err == nil {
		applied = c.surface.Result.Succeed(sub.token, ResultLines(*pred), elapsed)
	} else {
		heading, message := Describe(err)
		applied = c.surface.Result.Fail(sub.token, heading, message, elapsed)
	}
	if !applied {
		out.Stale = true
		logf(sub.id, "submission %d superseded; response discarded", sub.token)
		return out
	}
	logf(sub.id, "submission %d resolved in %s", sub.token, elapsed)
	return out
}

// ResultLines renders a prediction rounded to two decimals.
func ResultLines(p batch.Prediction) []string {
	return []string{
		fmt.Sprintf("Predicted Shelf Life: %.2f days", p.ShelfLifeDays),
		fmt.Sprintf("Predicted Free Fatty Acids: %.2f %%", p.FreeFattyAcidsPercent),
	}
}

// Describe maps a prediction failure to the panel heading and message.
// Malformed responses get their own heading so a contract mismatch is not
// mistaken for bad input.
func Describe(err error) (heading, message string) {
	var (
		mal *predictor.MalformedResponseError
		se  *predictor.ServerError
		te  *predictor.TransportError
	)
	switch {
	case errors.As(err, &mal):
		return HeadingMalformed, "The prediction service returned an unexpected response: " + mal.Reason
	case errors.As(err, &se):
		return HeadingError, se.Message
	case errors.As(err, &te):
		return HeadingError, te.Err.Error()
	default:
		return HeadingError, err.Error()
	}
}
