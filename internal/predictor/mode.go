package predictor

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects the predictor implementation.
type Mode string

const (
	ModeOnline Mode = "online"
	ModeDummy  Mode = "dummy"
)

// ParseMode accepts online|dummy; empty means online.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "", ModeOnline:
		return ModeOnline, nil
	case ModeDummy:
		return ModeDummy, nil
	default:
		return "", fmt.Errorf("invalid endpoint mode %q (expected online|dummy)", s)
	}
}

// Options configures New.
type Options struct {
	Mode    Mode
	URL     string
	Timeout time.Duration
	Token   string
}

// New builds the predictor selected by o.Mode.
func New(o Options) Predictor {
	if o.Mode == ModeDummy {
		return NewDummyPredictor()
	}
	return &HTTPPredictor{Client: NewClient(o.Timeout, o.Token), URL: o.URL}
}
