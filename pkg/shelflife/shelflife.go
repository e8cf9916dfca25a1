// Package shelflife exposes batch validation, payload composition and
// prediction without the CLI.
package shelflife

import (
	"context"
	"time"

	"github.com/idlab-discover/buckwheat-cli/internal/batch"
	"github.com/idlab-discover/buckwheat-cli/internal/composer"
	"github.com/idlab-discover/buckwheat-cli/internal/form"
	"github.com/idlab-discover/buckwheat-cli/internal/predictor"
)

type (
	Payload    = batch.Payload
	Prediction = batch.Prediction
	Catalog    = batch.Catalog

	// ValidationError is a missing or malformed field.
	ValidationError = composer.ValidationError
	// ServerError is a non-2xx answer from the endpoint.
	ServerError = predictor.ServerError
	// TransportError means the endpoint could not be reached.
	TransportError = predictor.TransportError
	// MalformedResponseError is a 2xx answer of the wrong shape.
	MalformedResponseError = predictor.MalformedResponseError
)

// Batch holds the raw field values of one batch. Numeric fields are strings
// as typed; RHMethod may be empty when exactly one of RH and RHSeason is set.
type Batch struct {
	Temperature      string `yaml:"temperature" json:"temperature"`
	RHMethod         string `yaml:"rh_method" json:"rh_method"`
	RH               string `yaml:"rh_value" json:"rh_value"`
	RHSeason         string `yaml:"rh_season" json:"rh_season"`
	DaysSinceMilling string `yaml:"days_since_milling" json:"days_since_milling"`
	Season           string `yaml:"season" json:"season"`
	Moisture         string `yaml:"moisture" json:"moisture"`
	Packing          string `yaml:"packing" json:"packing"`
}

func (b Batch) values() form.Values {
	return form.Values{
		Temperature:      b.Temperature,
		RHMethod:         b.RHMethod,
		RHValue:          b.RH,
		RHSeason:         b.RHSeason,
		DaysSinceMilling: b.DaysSinceMilling,
		Season:           b.Season,
		Moisture:         b.Moisture,
		Packing:          b.Packing,
	}
}

// Options configures Predict. The zero value targets the public endpoint.
type Options struct {
	URL     string
	Timeout time.Duration
	Token   string
	// Dummy answers with placeholder values without any network call.
	Dummy bool
	// Catalog overrides the default moisture and packing sets.
	Catalog *Catalog
}

// Result is a resolved prediction.
type Result struct {
	RequestID  string
	Payload    Payload
	Prediction Prediction
	// Lines is the prediction rendered to two decimals.
	Lines   []string
	Elapsed time.Duration
}

var newPredictor = predictor.New

func DefaultCatalog() Catalog { return batch.DefaultCatalog() }

// Compose validates b and returns the payload that Predict would send.
func Compose(b Batch, cat *Catalog) (Payload, error) {
	c, err := load(b, nil, cat)
	if err != nil {
		return Payload{}, err
	}
	return c.Compose()
}

// Predict validates b, sends it once and returns the prediction. Errors are
// *ValidationError, *ServerError, *TransportError or *MalformedResponseError.
func Predict(ctx context.Context, b Batch, opts Options) (*Result, error) {
	mode := predictor.ModeOnline
	if opts.Dummy {
		mode = predictor.ModeDummy
	}
	p := newPredictor(predictor.Options{Mode: mode, URL: opts.URL, Timeout: opts.Timeout, Token: opts.Token})

	c, err := load(b, p, opts.Catalog)
	if err != nil {
		return nil, err
	}
	out := c.Submit(ctx)
	if out.Err != nil {
		return nil, out.Err
	}
	return &Result{
		RequestID:  out.RequestID,
		Payload:    *out.Payload,
		Prediction: *out.Prediction,
		Lines:      composer.ResultLines(*out.Prediction),
		Elapsed:    out.Elapsed,
	}, nil
}

func load(b Batch, p predictor.Predictor, cat *Catalog) (*composer.Composer, error) {
	s := form.NewSurface()
	if err := form.NewController(s).Apply(b.values()); err != nil {
		return nil, err
	}
	var opts []composer.Option
	if cat != nil {
		opts = append(opts, composer.WithCatalog(*cat))
	}
	return composer.New(s, p, opts...), nil
}
