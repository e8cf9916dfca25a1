package predictor

import (
	"errors"
	"fmt"
)

// TransportError means the request could not be sent or the response could
// not be read.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("prediction request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is returned for a non-2xx HTTP status. Message is taken from the
// body's "message" or "error" field, or falls back to the status text.
type ServerError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("prediction service status %d: %s", e.StatusCode, e.Message)
}

// MalformedResponseError is returned when a 2xx response does not carry the
// expected numeric fields.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return "malformed prediction response: " + e.Reason
}

// IsTransport reports whether err is (or wraps) a *TransportError.
func IsTransport(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsServer reports whether err is (or wraps) a *ServerError.
func IsServer(err error) bool {
	var e *ServerError
	return errors.As(err, &e)
}

// IsMalformed reports whether err is (or wraps) a *MalformedResponseError.
func IsMalformed(err error) bool {
	var e *MalformedResponseError
	return errors.As(err, &e)
}
