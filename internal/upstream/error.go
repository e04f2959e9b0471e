// Package upstream defines a structured error type for third-party API
// failures. Callers branch on the error kind instead of matching substrings
// of upstream messages, which change without notice.
package upstream

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a coarse classification of an upstream failure.
type Kind string

const (
	KindRateLimit Kind = "rate_limit" // 429 or provider quota exhaustion
	KindAuth      Kind = "auth"       // 401/403, bad or missing credentials
	KindNetwork   Kind = "network"    // transport-level failure, no HTTP status
	KindUpstream  Kind = "upstream"   // any other non-success status
)

// Error describes a failed call to an upstream provider.
type Error struct {
	Op     string // short operation description, e.g. "catalog query"
	Kind   Kind
	Status int // HTTP status, 0 for transport failures
	Err    error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: upstream status %d (%s)", e.Op, e.Status, e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// FromStatus builds an Error classified from an HTTP status code.
func FromStatus(op string, status int) *Error {
	kind := KindUpstream
	switch {
	case status == http.StatusTooManyRequests:
		kind = KindRateLimit
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindAuth
	}
	return &Error{Op: op, Kind: kind, Status: status}
}

// FromTransport wraps a transport-level failure (DNS, dial, timeout).
func FromTransport(op string, err error) *Error {
	return &Error{Op: op, Kind: KindNetwork, Err: err}
}

// KindOf returns the kind of err when it is an upstream Error, or KindUpstream
// otherwise.
func KindOf(err error) Kind {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Kind
	}
	return KindUpstream
}
