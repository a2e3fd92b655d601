package github

import "fmt"

// UpstreamError reports a non-2xx response from the GitHub API. It names the
// scope the request was issued for so callers can log actionable failures.
type UpstreamError struct {
	Scope      string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("github: %s: unexpected status %d", e.Scope, e.StatusCode)
}

// TransportError wraps a network or payload-decoding failure. The request
// aborts with no partial data surfaced to the caller.
type TransportError struct {
	Scope string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("github: %s: %v", e.Scope, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
