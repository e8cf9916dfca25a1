// Package predictor talks to the remote shelf-life prediction endpoint and
// classifies its answers into a prediction or a typed error.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/idlab-discover/buckwheat-cli/internal/batch"
)

// DefaultURL is the public prediction endpoint.
const DefaultURL = "https://buckwheat-prediction.onrender.com/predict"

// MaxResponseBytes caps how much of a response body is read.
const MaxResponseBytes = 1 << 20

// Predictor returns a prediction for one payload.
type Predictor interface {
	Predict(ctx context.Context, requestID string, p batch.Payload) (*batch.Prediction, error)
}

// HTTPPredictor POSTs payloads as JSON to URL.
type HTTPPredictor struct {
	Client *http.Client
	URL    string // optional; defaults to DefaultURL
}

// Predict issues exactly one POST. Failures to build, send or read the request
// are returned as *TransportError; everything else goes through Interpret.
func (h *HTTPPredictor) Predict(ctx context.Context, requestID string, p batch.Payload) (*batch.Prediction, error) {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	url := strings.TrimSpace(h.URL)
	if url == "" {
		url = DefaultURL
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	logf(requestID, "POST %s (%d bytes)", url, len(body))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := client.Do(req)
	if err != nil {
		logf(requestID, "request error (%v)", err)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes+1))
	if err != nil {
		logf(requestID, "read error (%v)", err)
		return nil, &TransportError{Err: err}
	}
	if len(raw) > MaxResponseBytes {
		logf(requestID, "status=%d body exceeds %d bytes", resp.StatusCode, MaxResponseBytes)
		return nil, &MalformedResponseError{Reason: fmt.Sprintf("response body exceeds %d bytes", MaxResponseBytes)}
	}
	logf(requestID, "status=%d body=%d bytes", resp.StatusCode, len(raw))

	pred, err := Interpret(resp.StatusCode, resp.Status, raw)
	if err != nil {
		logf(requestID, "%v", err)
		return nil, err
	}
	logf(requestID, "ok")
	return pred, nil
}
