package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotConfigured means no credential is available. Callers check
	// Generator.Configured before generating; Generate also returns it.
	ErrNotConfigured = errors.New("llm: not configured")
	// ErrTransportFailure covers connection, DNS, IO and deadline errors.
	ErrTransportFailure = errors.New("llm: transport failure")
	// ErrRejectedByProvider is a non-2xx response.
	ErrRejectedByProvider = errors.New("llm: rejected by provider")
	// ErrMalformedResponse is an unparseable body, no choices, or empty text.
	ErrMalformedResponse = errors.New("llm: malformed response")
)

// GenerationError is a classified failure from the upstream call.
type GenerationError struct {
	Kind       error
	Status     int           // HTTP status, RejectedByProvider only
	RetryAfter time.Duration // parsed Retry-After on 429, informational
	Err        error
}

func (e *GenerationError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("%v (status %d): %v", e.Kind, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

// Is lets errors.Is match on the kind sentinel.
func (e *GenerationError) Is(target error) bool {
	return e.Kind == target
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func transportError(err error) *GenerationError {
	return &GenerationError{Kind: ErrTransportFailure, Err: err}
}

func malformedError(format string, args ...any) *GenerationError {
	return &GenerationError{Kind: ErrMalformedResponse, Err: fmt.Errorf(format, args...)}
}

func rejectedError(status int, retryAfter time.Duration, err error) *GenerationError {
	return &GenerationError{Kind: ErrRejectedByProvider, Status: status, RetryAfter: retryAfter, Err: err}
}

// Kind returns the sentinel for err, or nil if err is not a generation error.
func Kind(err error) error {
	var gerr *GenerationError
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return nil
}

// KindLabel is a short metric/log label for err.
func KindLabel(err error) string {
	switch Kind(err) {
	case nil:
		if err == nil {
			return "ok"
		}
		return "unknown"
	case ErrNotConfigured:
		return "not_configured"
	case ErrTransportFailure:
		return "transport_failure"
	case ErrRejectedByProvider:
		return "rejected_by_provider"
	case ErrMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// isTransportError reports whether a raw client error happened below the
// HTTP layer: dial, DNS, read/write, or deadline.
func isTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	// Some wrapped errors lose their type on the way up.
	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"eof",
	} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// parseRetryAfter extracts the delay from a Retry-After header.
// Returns 0 if the header is missing or invalid.
//
// Retry-After can be:
// - Number of seconds: "120"
// - HTTP date: "Wed, 21 Oct 2015 07:28:00 GMT"
func parseRetryAfter(h http.Header) time.Duration {
	retryAfter := strings.TrimSpace(h.Get("Retry-After"))
	if retryAfter == "" {
		return 0
	}

	const maxRetryAfter = 5 * time.Minute

	if seconds, err := strconv.Atoi(retryAfter); err == nil {
		if seconds <= 0 {
			return 0
		}
		d := time.Duration(seconds) * time.Second
		if d > maxRetryAfter {
			d = maxRetryAfter
		}
		return d
	}

	if t, err := http.ParseTime(retryAfter); err == nil {
		d := time.Until(t)
		if d <= 0 {
			return 0
		}
		if d > maxRetryAfter {
			d = maxRetryAfter
		}
		return d
	}

	return 0
}
