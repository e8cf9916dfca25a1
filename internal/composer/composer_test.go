package composer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idlab-discover/buckwheat-cli/internal/apperr"
	"github.com/idlab-discover/buckwheat-cli/internal/batch"
	"github.com/idlab-discover/buckwheat-cli/internal/form"
	"github.com/idlab-discover/buckwheat-cli/internal/predictor"
)

type stubPredictor struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context, id string, p batch.Payload) (*batch.Prediction, error)
}

func (s *stubPredictor) Predict(ctx context.Context, id string, p batch.Payload) (*batch.Prediction, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.fn == nil {
		return &batch.Prediction{ShelfLifeDays: 1, FreeFattyAcidsPercent: 1}, nil
	}
	return s.fn(ctx, id, p)
}

func (s *stubPredictor) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("req-%d", n)
	}
}

func numericValues() form.Values {
	return form.Values{
		Temperature:      "25",
		RHMethod:         "numeric",
		RHValue:          "60",
		DaysSinceMilling: "30",
		Season:           "Summer",
		Moisture:         "< 12%",
		Packing:          "Open to air",
	}
}

func seasonalValues() form.Values {
	v := numericValues()
	v.RHMethod = "seasonal"
	v.RHValue = ""
	v.RHSeason = "Winter"
	return v
}

func newFilled(t *testing.T, v form.Values, p predictor.Predictor, opts ...Option) (*form.Surface, *Composer) {
	t.Helper()
	s := form.NewSurface()
	require.NoError(t, form.NewController(s).Apply(v))
	opts = append([]Option{WithRequestIDs(sequentialIDs())}, opts...)
	return s, New(s, p, opts...)
}

func TestSubmit_MissingFieldBlocksNetwork(t *testing.T) {
	blankers := map[string]func(*form.Values){
		"temperature": func(v *form.Values) { v.Temperature = "" },
		"rh":          func(v *form.Values) { v.RHValue, v.RHSeason = "", "" },
		"days":        func(v *form.Values) { v.DaysSinceMilling = "" },
		"season":      func(v *form.Values) { v.Season = "" },
		"moisture":    func(v *form.Values) { v.Moisture = "" },
		"packing":     func(v *form.Values) { v.Packing = "" },
	}
	bases := map[string]func() form.Values{
		"numeric":  numericValues,
		"seasonal": seasonalValues,
	}

	for method, base := range bases {
		for field, blank := range blankers {
			t.Run(method+"/"+field, func(t *testing.T) {
				v := base()
				blank(&v)
				stub := &stubPredictor{}
				s, c := newFilled(t, v, stub)

				out := c.Submit(context.Background())

				require.Error(t, out.Err)
				assert.True(t, apperr.IsUser(out.Err))
				assert.Len(t, s.Alerts(), 1)
				assert.Zero(t, stub.Calls())
				assert.Equal(t, form.StateIdle, s.Result.View().State)
			})
		}
	}
}

func TestSubmit_NoRHMethod(t *testing.T) {
	v := numericValues()
	v.RHMethod, v.RHValue = "", ""
	stub := &stubPredictor{}
	s, c := newFilled(t, v, stub)

	out := c.Submit(context.Background())

	var verr *ValidationError
	require.True(t, errors.As(out.Err, &verr))
	assert.Equal(t, form.FieldRHMethod, verr.Field)
	assert.Zero(t, stub.Calls())
	assert.Equal(t, []string{verr.Message}, s.Alerts())
}

func TestValidate_FirstFailureWins(t *testing.T) {
	s := form.NewSurface()
	c := New(s, &stubPredictor{})

	_, err := c.Validate()

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, form.FieldTemperature, verr.Field)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*form.Values)
		field string
	}{
		{"temperature text", func(v *form.Values) { v.Temperature = "warm" }, form.FieldTemperature},
		{"rh infinite", func(v *form.Values) { v.RHValue = "Inf" }, form.FieldRHValue},
		{"days text", func(v *form.Values) { v.DaysSinceMilling = "a month" }, form.FieldDaysSinceMilling},
		{"season unknown", func(v *form.Values) { v.Season = "Monsoon" }, form.FieldSeason},
		{"moisture unknown", func(v *form.Values) { v.Moisture = "wet" }, form.FieldMoisture},
		{"packing unknown", func(v *form.Values) { v.Packing = "box" }, form.FieldPacking},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := numericValues()
			tc.edit(&v)
			_, c := newFilled(t, v, &stubPredictor{})

			_, err := c.Validate()

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestValidate_AcceptsRangeFreeNumbersAndSentinel(t *testing.T) {
	v := numericValues()
	v.Temperature = "-40"
	v.RHValue = "250"
	v.DaysSinceMilling = batch.DaysNotKnown
	v.Season = "rainy"
	_, c := newFilled(t, v, &stubPredictor{})

	m, err := c.Validate()
	require.NoError(t, err)

	assert.Equal(t, -40.0, m.Temperature)
	pct, ok := m.RH.Percent()
	assert.True(t, ok)
	assert.Equal(t, 250.0, pct)
	assert.Equal(t, batch.DaysNotKnown, m.DaysSinceMilling)
	assert.Equal(t, batch.SeasonRainy, m.Season)
}

func composedJSON(t *testing.T, c *Composer) map[string]any {
	t.Helper()
	p, err := c.Compose()
	require.NoError(t, err)
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

func TestCompose_NumericRHIsANumber(t *testing.T) {
	_, c := newFilled(t, numericValues(), &stubPredictor{})

	doc := composedJSON(t, c)

	want := map[string]any{
		"Storage Temperature in C":  25.0,
		"RH in percent":             60.0,
		"Days passed after milling": "30",
		"Season":                    "Summer",
		"Moisture":                  "< 12%",
		"Packing":                   "Open to air",
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestCompose_SeasonalLookupSendsSentinel(t *testing.T) {
	_, c := newFilled(t, seasonalValues(), &stubPredictor{})

	doc := composedJSON(t, c)

	assert.Equal(t, "not Known", doc["RH in percent"])
	assert.Equal(t, "Summer", doc["Season"], "primary season is always sent under Season")
	assert.Equal(t, "Winter", doc["RH Lookup Season"])
}

func TestCompose_DoesNotMutateSurface(t *testing.T) {
	s, c := newFilled(t, numericValues(), &stubPredictor{})
	before := s.Values()

	_, err := c.Compose()
	require.NoError(t, err)

	assert.Equal(t, before, s.Values())
}

func serve(t *testing.T, status int, body string) predictor.Predictor {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return &predictor.HTTPPredictor{Client: srv.Client(), URL: srv.URL}
}

func TestSubmit_RendersPanel(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		state   form.State
		tone    form.Tone
		heading string
		lines   []string
	}{
		{
			name:    "success rounds to two decimals",
			status:  http.StatusOK,
			body:    `{"shelf_life_days": 12.345, "predicted_free_fatty_acids_percent": 0.6789}`,
			state:   form.StateSuccess,
			tone:    form.ToneSuccess,
			heading: form.ResultHeading,
			lines:   []string{"Predicted Shelf Life: 12.35 days", "Predicted Free Fatty Acids: 0.68 %"},
		},
		{
			name:    "server error message",
			status:  http.StatusBadRequest,
			body:    `{"message": "bad input"}`,
			state:   form.StateFailed,
			tone:    form.ToneError,
			heading: HeadingError,
			lines:   []string{"bad input"},
		},
		{
			name:    "server error without body",
			status:  http.StatusInternalServerError,
			body:    ``,
			state:   form.StateFailed,
			tone:    form.ToneError,
			heading: HeadingError,
			lines:   []string{"Internal Server Error"},
		},
		{
			name:    "missing shelf life",
			status:  http.StatusOK,
			body:    `{"predicted_free_fatty_acids_percent": 0.6789}`,
			state:   form.StateFailed,
			tone:    form.ToneError,
			heading: HeadingMalformed,
			lines:   []string{`The prediction service returned an unexpected response: missing "shelf_life_days"`},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, c := newFilled(t, numericValues(), serve(t, tc.status, tc.body))

			out := c.Submit(context.Background())

			assert.False(t, out.Stale)
			assert.Equal(t, "req-1", out.RequestID)
			v := s.Result.View()
			assert.Equal(t, tc.state, v.State)
			assert.Equal(t, tc.tone, v.Tone)
			assert.Equal(t, tc.heading, v.Heading)
			assert.Equal(t, tc.lines, v.Lines)
			assert.Equal(t, "req-1", v.RequestID)
			assert.Empty(t, s.Alerts())
		})
	}
}

func TestSubmit_TransportErrorRenderedLikeServerError(t *testing.T) {
	stub := &stubPredictor{fn: func(context.Context, string, batch.Payload) (*batch.Prediction, error) {
		return nil, &predictor.TransportError{Err: errors.New("network unreachable")}
	}}
	s, c := newFilled(t, numericValues(), stub)

	out := c.Submit(context.Background())

	assert.True(t, out.Failed())
	v := s.Result.View()
	assert.Equal(t, form.StateFailed, v.State)
	assert.Equal(t, HeadingError, v.Heading)
	assert.Equal(t, []string{"network unreachable"}, v.Lines)
}

func TestSubmit_NilPredictionIsMalformed(t *testing.T) {
	stub := &stubPredictor{fn: func(context.Context, string, batch.Payload) (*batch.Prediction, error) {
		return nil, nil
	}}
	s, c := newFilled(t, numericValues(), stub)

	out := c.Submit(context.Background())

	assert.True(t, predictor.IsMalformed(out.Err))
	assert.Equal(t, HeadingMalformed, s.Result.View().Heading)
}

func TestSubmit_ElapsedFromClock(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.April, 26, 15, 10, 0, 0, time.UTC))
	stub := &stubPredictor{fn: func(context.Context, string, batch.Payload) (*batch.Prediction, error) {
		clock.Advance(1500 * time.Millisecond)
		return &batch.Prediction{ShelfLifeDays: 10, FreeFattyAcidsPercent: 1}, nil
	}}
	s, c := newFilled(t, numericValues(), stub, WithClock(clock))

	out := c.Submit(context.Background())

	require.NoError(t, out.Err)
	assert.Equal(t, 1500*time.Millisecond, out.Elapsed)
	assert.Equal(t, 1500*time.Millisecond, s.Result.View().Elapsed)
}

func TestSubmitAsync_PendingThenResolved(t *testing.T) {
	release := make(chan struct{})
	stub := &stubPredictor{fn: func(context.Context, string, batch.Payload) (*batch.Prediction, error) {
		<-release
		return &batch.Prediction{ShelfLifeDays: 3, FreeFattyAcidsPercent: 0.1}, nil
	}}
	s, c := newFilled(t, numericValues(), stub)

	ch, err := c.SubmitAsync(context.Background())
	require.NoError(t, err)

	v := s.Result.View()
	assert.Equal(t, form.StatePending, v.State)
	assert.Equal(t, form.ToneNeutral, v.Tone)
	assert.Equal(t, []string{form.PendingText}, v.Lines)

	close(release)
	out := <-ch
	require.NoError(t, out.Err)
	assert.Equal(t, form.StateSuccess, s.Result.View().State)
}

func TestSubmitAsync_ValidationFailureReturnedDirectly(t *testing.T) {
	v := numericValues()
	v.Packing = ""
	stub := &stubPredictor{}
	s, c := newFilled(t, v, stub)

	ch, err := c.SubmitAsync(context.Background())

	assert.Nil(t, ch)
	assert.True(t, apperr.IsUser(err))
	assert.Len(t, s.Alerts(), 1)
	assert.Equal(t, form.StateIdle, s.Result.View().State)
	assert.Zero(t, stub.Calls())
}

func TestSubmit_StaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	stub := &stubPredictor{fn: func(_ context.Context, id string, _ batch.Payload) (*batch.Prediction, error) {
		if id == "req-1" {
			<-release
			return &batch.Prediction{ShelfLifeDays: 111, FreeFattyAcidsPercent: 1}, nil
		}
		return &batch.Prediction{ShelfLifeDays: 222, FreeFattyAcidsPercent: 2}, nil
	}}
	s, c := newFilled(t, numericValues(), stub)

	first, err := c.SubmitAsync(context.Background())
	require.NoError(t, err)
	second := c.Submit(context.Background())
	require.False(t, second.Stale)

	close(release)
	out := <-first

	assert.True(t, out.Stale)
	v := s.Result.View()
	assert.Equal(t, "req-2", v.RequestID)
	assert.Equal(t, "Predicted Shelf Life: 222.00 days", v.Lines[0])
}

func TestSubmit_ClearDiscardsInFlight(t *testing.T) {
	release := make(chan struct{})
	stub := &stubPredictor{fn: func(context.Context, string, batch.Payload) (*batch.Prediction, error) {
		<-release
		return nil, &predictor.ServerError{StatusCode: 500, Message: "late"}
	}}
	s, c := newFilled(t, numericValues(), stub)

	ch, err := c.SubmitAsync(context.Background())
	require.NoError(t, err)
	form.NewController(s).Clear()
	close(release)
	out := <-ch

	assert.True(t, out.Stale)
	assert.Equal(t, form.StateIdle, s.Result.View().State)
}

func TestWithCatalog(t *testing.T) {
	cat := batch.Catalog{Moisture: []string{"dry"}, Packing: []string{"silo"}}
	v := numericValues()
	v.Moisture, v.Packing = "dry", "silo"
	_, c := newFilled(t, v, &stubPredictor{}, WithCatalog(cat))

	p, err := c.Compose()
	require.NoError(t, err)
	assert.Equal(t, "dry", p.Moisture)
	assert.Equal(t, cat, c.Catalog())

	v.Moisture = "< 12%"
	_, c = newFilled(t, v, &stubPredictor{}, WithCatalog(cat))
	_, err = c.Compose()
	assert.ErrorContains(t, err, `"dry"`)
}

func TestDescribe(t *testing.T) {
	h, m := Describe(errors.New("boom"))
	assert.Equal(t, HeadingError, h)
	assert.Equal(t, "boom", m)

	h, m = Describe(fmt.Errorf("wrapped: %w", &predictor.ServerError{StatusCode: 400, Message: "bad input"}))
	assert.Equal(t, HeadingError, h)
	assert.Equal(t, "bad input", m)
}
