package external

import (
	"errors"
	"fmt"
)

// ErrFallback is the reason recorded for a fallback result created without one.
var ErrFallback = errors.New("fallback substituted")

// UpstreamError reports a remote call that did not succeed: transport failure,
// timeout, non-2xx status, open circuit or an unreadable body.
type UpstreamError struct {
	Source     SourceID
	StatusCode int
	Reason     string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("upstream %s", e.Source)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ConfigurationError reports a credential or endpoint that is not set.
type ConfigurationError struct {
	Source  SourceID
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s is not configured", e.Source, e.Missing)
}
