package probe

import (
	"context"
	"io"
	"net/http"
	"time"
)

// drained before close so keep-alive connections can be reused
const maxDrainBytes = 64 << 10

type HTTPSChecker struct {
	Client *http.Client
}

func NewHTTPSChecker(timeout time.Duration) *HTTPSChecker {
	return &HTTPSChecker{
		Client: &http.Client{Timeout: timeout},
	}
}

// Get issues GET https://host with certificate verification left on.
// A non-nil error means no response arrived.
func (h *HTTPSChecker) Get(ctx context.Context, host string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://"+host, nil)
	if err != nil {
		return 0, &requestError{err: err}
	}
	req.Header.Set("User-Agent", "runnercheck")

	resp, err := h.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.CopyN(io.Discard, resp.Body, maxDrainBytes)
	return resp.StatusCode, nil
}

// CloseIdle drops pooled connections at the end of a scan.
func (h *HTTPSChecker) CloseIdle() {
	h.Client.CloseIdleConnections()
}

// requestError marks a failure building the request, as opposed to a
// transport failure on the wire.
type requestError struct{ err error }

func (e *requestError) Error() string { return e.err.Error() }
func (e *requestError) Unwrap() error { return e.err }
