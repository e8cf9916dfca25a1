package predictor

import (
	"context"

	"github.com/idlab-discover/buckwheat-cli/internal/batch"
)

// DummyPredictor answers with fixed placeholder values and never touches the network.
type DummyPredictor struct{}

func NewDummyPredictor() *DummyPredictor { return &DummyPredictor{} }

func (d *DummyPredictor) Predict(ctx context.Context, requestID string, p batch.Payload) (*batch.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{Err: err}
	}
	logf(requestID, "[dummy] season=%s rh=%s", p.Season, p.RH)
	return &batch.Prediction{ShelfLifeDays: 180, FreeFattyAcidsPercent: 1.5}, nil
}
