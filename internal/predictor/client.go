package predictor

import (
	"net/http"
	"strings"
	"time"
)

// bearerTransport injects a Bearer token into every request when a token is set.
type bearerTransport struct {
	base  http.RoundTripper
	token string
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	return t.base.RoundTrip(req)
}

// NewClient creates an *http.Client for the prediction endpoint.
// timeout is the per-request deadline (0 = platform default, no timeout).
// token is injected as a Bearer token on every request when non-empty.
func NewClient(timeout time.Duration, token string) *http.Client {
	token = strings.TrimSpace(token)
	var transport http.RoundTripper = http.DefaultTransport
	if token != "" {
		transport = &bearerTransport{base: transport, token: token}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}
