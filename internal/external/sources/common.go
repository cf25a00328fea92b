package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/eco-ops-dashboard/internal/external"
)

// maxBodyBytes caps how much of an upstream reply is read.
const maxBodyBytes = 1 << 20

var (
	errNoHTTPClient = errors.New("http client not configured")
	errCircuitOpen  = errors.New("circuit breaker open")
)

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// statusError lets the breaker count a non-2xx reply as a failure while
// keeping the code for the UpstreamError.
type statusError struct{ code int }

func (e statusError) Error() string { return fmt.Sprintf("unexpected status code %d", e.code) }

// getJSON performs a single GET through the source's circuit breaker and decodes
// the 2xx body into out. Every failure comes back as *external.UpstreamError.
// There are no retries.
func getJSON(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	source external.SourceID,
	buildRequest func(ctx context.Context) (*http.Request, error),
	out any,
) error {
	if client == nil {
		return &external.UpstreamError{Source: source, Err: errNoHTTPClient}
	}

	req, err := buildRequest(ctx)
	if err != nil {
		return &external.UpstreamError{Source: source, Reason: "build request", Err: err}
	}

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
			resp.Body.Close()
			return nil, statusError{code: resp.StatusCode}
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &external.UpstreamError{Source: source, Reason: errCircuitOpen.Error(), Err: err}
		}
		var se statusError
		if errors.As(err, &se) {
			return &external.UpstreamError{Source: source, StatusCode: se.code, Reason: http.StatusText(se.code)}
		}
		return &external.UpstreamError{Source: source, Err: err}
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return &external.UpstreamError{Source: source, Reason: "unexpected result type from circuit breaker"}
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return &external.UpstreamError{Source: source, Reason: "malformed body", Err: err}
	}
	return nil
}

// roundHalfUp rounds to the nearest integer, halves toward +Inf.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
