package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idlab-discover/buckwheat-cli/internal/batch"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func samplePayload() batch.Payload {
	return batch.NewPayload(batch.Measurements{
		Temperature:      25,
		RH:               batch.NumericRH(60),
		DaysSinceMilling: "30",
		Season:           batch.SeasonSummer,
		Moisture:         "< 12%",
		Packing:          "Open to air",
	})
}

func TestHTTPPredictor_Success(t *testing.T) {
	var gotBody map[string]any
	var gotHeader http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotHeader = r.Header.Clone()
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"shelf_life_days": 12.345, "predicted_free_fatty_acids_percent": 0.6789}`))
	}))
	defer srv.Close()

	p := &HTTPPredictor{Client: srv.Client(), URL: srv.URL}
	pred, err := p.Predict(context.Background(), "req-1", samplePayload())
	require.NoError(t, err)

	assert.Equal(t, 12.345, pred.ShelfLifeDays)
	assert.Equal(t, 0.6789, pred.FreeFattyAcidsPercent)
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "req-1", gotHeader.Get("X-Request-ID"))
	assert.Equal(t, float64(60), gotBody["RH in percent"])
	assert.Equal(t, "Summer", gotBody["Season"])
}

func TestHTTPPredictor_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message": "bad input"}`))
	}))
	defer srv.Close()

	p := &HTTPPredictor{Client: srv.Client(), URL: srv.URL}
	_, err := p.Predict(context.Background(), "", samplePayload())

	var se *ServerError
	require.True(t, errors.As(err, &se), "got %T", err)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, "bad input", se.Message)
	assert.True(t, IsServer(err))
}

func TestHTTPPredictor_OversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chunk := bytes.Repeat([]byte(" "), 64<<10)
		for written := 0; written <= 2*MaxResponseBytes; written += len(chunk) {
			if _, err := w.Write(chunk); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	p := &HTTPPredictor{Client: srv.Client(), URL: srv.URL}
	pred, err := p.Predict(context.Background(), "", samplePayload())

	assert.Nil(t, pred)
	assert.True(t, IsMalformed(err), "got %v", err)
	assert.ErrorContains(t, err, "exceeds")
}

func TestHTTPPredictor_TransportError(t *testing.T) {
	client := &http.Client{Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("network unreachable")
	})}
	p := &HTTPPredictor{Client: client, URL: "http://prediction.invalid/predict"}

	_, err := p.Predict(context.Background(), "", samplePayload())

	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.ErrorContains(t, err, "network unreachable")
}

func TestHTTPPredictor_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &HTTPPredictor{Client: srv.Client(), URL: srv.URL}
	_, err := p.Predict(ctx, "", samplePayload())

	assert.True(t, IsTransport(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPPredictor_UnresolvedRHNeverSent(t *testing.T) {
	calls := 0
	client := &http.Client{Transport: roundTripperFunc(func(*http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("unexpected")
	})}
	p := &HTTPPredictor{Client: client, URL: "http://prediction.invalid"}

	_, err := p.Predict(context.Background(), "", batch.Payload{Season: batch.SeasonWinter})

	assert.ErrorIs(t, err, batch.ErrUnresolvedRH)
	assert.Zero(t, calls)
}

func TestNewClient_InjectsBearer(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"shelf_life_days": 1, "predicted_free_fatty_acids_percent": 2}`))
	}))
	defer srv.Close()

	p := &HTTPPredictor{Client: NewClient(5*time.Second, " secret "), URL: srv.URL}
	_, err := p.Predict(context.Background(), "", samplePayload())
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", auth)

	c := NewClient(0, "")
	assert.Zero(t, c.Timeout)
	assert.Equal(t, http.DefaultTransport, c.Transport)
}

func TestInterpret(t *testing.T) {
	cases := []struct {
		name       string
		code       int
		status     string
		body       string
		wantPred   *batch.Prediction
		wantServer string
		malformed  bool
	}{
		{
			name:     "ok",
			code:     200,
			status:   "200 OK",
			body:     `{"shelf_life_days": 30, "predicted_free_fatty_acids_percent": 0.5, "extra": true}`,
			wantPred: &batch.Prediction{ShelfLifeDays: 30, FreeFattyAcidsPercent: 0.5},
		},
		{name: "missing shelf life", code: 200, body: `{"predicted_free_fatty_acids_percent": 0.5}`, malformed: true},
		{name: "string value", code: 200, body: `{"shelf_life_days": "30", "predicted_free_fatty_acids_percent": 0.5}`, malformed: true},
		{name: "null value", code: 200, body: `{"shelf_life_days": 30, "predicted_free_fatty_acids_percent": null}`, malformed: true},
		{name: "not json", code: 200, body: `<html>`, malformed: true},
		{name: "array", code: 201, body: `[1,2]`, malformed: true},
		{name: "message field", code: 422, status: "422 Unprocessable Entity", body: `{"message": "bad input"}`, wantServer: "bad input"},
		{name: "error field", code: 500, status: "500 Internal Server Error", body: `{"error": "model not loaded"}`, wantServer: "model not loaded"},
		{name: "message preferred", code: 400, body: `{"error": "e", "message": "m"}`, wantServer: "m"},
		{name: "status text fallback", code: 503, status: "503 Service Unavailable", body: ``, wantServer: "Service Unavailable"},
		{name: "unparseable body", code: 502, status: "502 Bad Gateway", body: `oops`, wantServer: "Bad Gateway"},
		{name: "empty status line", code: 404, body: `{}`, wantServer: "Not Found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pred, err := Interpret(tc.code, tc.status, []byte(tc.body))
			switch {
			case tc.wantPred != nil:
				require.NoError(t, err)
				assert.Equal(t, tc.wantPred, pred)
			case tc.malformed:
				assert.Nil(t, pred)
				assert.True(t, IsMalformed(err), "got %v", err)
			default:
				var se *ServerError
				require.True(t, errors.As(err, &se), "got %v", err)
				assert.Equal(t, tc.code, se.StatusCode)
				assert.Equal(t, tc.wantServer, se.Message)
			}
		})
	}
}

func TestParseModeAndNew(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeOnline, m)

	m, err = ParseMode(" Dummy ")
	require.NoError(t, err)
	assert.Equal(t, ModeDummy, m)

	_, err = ParseMode("offline")
	assert.Error(t, err)

	assert.IsType(t, &DummyPredictor{}, New(Options{Mode: ModeDummy}))
	hp, ok := New(Options{Mode: ModeOnline, URL: "http://x"}).(*HTTPPredictor)
	require.True(t, ok)
	assert.Equal(t, "http://x", hp.URL)
}

func TestDummyPredictor(t *testing.T) {
	pred, err := NewDummyPredictor().Predict(context.Background(), "", samplePayload())
	require.NoError(t, err)
	assert.Positive(t, pred.ShelfLifeDays)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewDummyPredictor().Predict(ctx, "", samplePayload())
	assert.True(t, IsTransport(err))
}
