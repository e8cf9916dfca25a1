package predictor

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/idlab-discover/buckwheat-cli/internal/batch"
)

const (
	keyShelfLife      = "shelf_life_days"
	keyFreeFattyAcids = "predicted_free_fatty_acids_percent"
)

// Interpret turns a raw HTTP response into a prediction or one of the typed
// errors. status is the status line as reported by net/http (e.g. "400 Bad Request").
func Interpret(statusCode int, status string, body []byte) (*batch.Prediction, error) {
	if statusCode < 200 || statusCode > 299 {
		return nil, &ServerError{
			StatusCode: statusCode,
			Status:     status,
			Message:    errorMessage(statusCode, status, body),
		}
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &MalformedResponseError{Reason: "body is not a JSON object"}
	}

	shelf, err := numberField(doc, keyShelfLife)
	if err != nil {
		return nil, err
	}
	ffa, err := numberField(doc, keyFreeFattyAcids)
	if err != nil {
		return nil, err
	}
	return &batch.Prediction{ShelfLifeDays: shelf, FreeFattyAcidsPercent: ffa}, nil
}

func numberField(doc map[string]any, key string) (float64, error) {
	raw, ok := doc[key]
	if !ok || raw == nil {
		return 0, &MalformedResponseError{Reason: fmt.Sprintf("missing %q", key)}
	}
	f, ok := raw.(float64)
	if !ok {
		return 0, &MalformedResponseError{Reason: fmt.Sprintf("%q is not a number", key)}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &MalformedResponseError{Reason: fmt.Sprintf("%q is not finite", key)}
	}
	return f, nil
}

// errorMessage extracts a human-readable message from an error body.
func errorMessage(statusCode int, status string, body []byte) string {
	var doc map[string]any
	if len(body) > 0 && json.Unmarshal(body, &doc) == nil {
		for _, key := range []string{"message", "error"} {
			if s, ok := doc[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return statusText(statusCode, status)
}

// statusText strips the numeric code from a status line.
func statusText(statusCode int, status string) string {
	text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(status), strconv.Itoa(statusCode)))
	if text == "" {
		text = http.StatusText(statusCode)
	}
	if text == "" {
		text = fmt.Sprintf("HTTP %d", statusCode)
	}
	return text
}
