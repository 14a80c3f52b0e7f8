package upstream

import (
	"fmt"
	"time"
)

// UpstreamError represents a general upstream failure. It includes the HTTP
// status code when one was received.
type UpstreamError struct {
	// Operation names the client call that failed.
	Operation string

	// StatusCode is the HTTP status code (0 if not applicable).
	StatusCode int

	// Message is the error message.
	Message string

	// Cause is the underlying error (if any).
	Cause error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream %s error (status %d): %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream %s error: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// AuthError represents an authentication failure (HTTP 401 or 403), or a
// guest login that yielded no token.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("upstream authentication failed: %s", e.Message)
}

// RateLimitError represents a rate limit exceeded error (HTTP 429).
type RateLimitError struct {
	// RetryAfter is the duration to wait before retrying (if provided).
	RetryAfter time.Duration

	Message string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("upstream rate limit exceeded (retry after %s): %s", e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("upstream rate limit exceeded: %s", e.Message)
}

// TimeoutError represents a request that exceeded its timeout.
type TimeoutError struct {
	Operation string
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("upstream %s timed out after %s", e.Operation, e.Timeout)
}

// ParseError represents a response whose shape did not carry the expected
// fields.
type ParseError struct {
	Operation string

	// RawResponse is a truncated copy of the body that failed to parse.
	RawResponse string

	Cause error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("upstream %s response parse error: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("upstream %s response missing expected fields", e.Operation)
}

// Unwrap returns the underlying error for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
