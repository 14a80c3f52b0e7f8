package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

// Transport performs HTTP requests against the provider with connection
// pooling, retry on transient failures, and typed error classification.
type Transport struct {
	client     *http.Client
	maxRetries int
	timeout    time.Duration
	logger     *slog.Logger
}

// NewTransport creates a transport with the given request timeout and retry
// budget. Retries use exponential backoff and apply only to network errors
// and 5xx responses.
func NewTransport(timeout time.Duration, maxRetries int, logger *slog.Logger) *Transport {
	if logger == nil {
		logger = slog.Default()
	}

	httpTransport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &Transport{
		client: &http.Client{
			Transport: httpTransport,
			Timeout:   timeout,
		},
		maxRetries: maxRetries,
		timeout:    timeout,
		logger:     logger.With("component", "upstream-transport"),
	}
}

// StreamingClient returns an http.Client suitable for long-lived streaming
// reads: same pooled transport, no overall request timeout. The caller
// bounds the read with its context.
func (t *Transport) StreamingClient() *http.Client {
	return &http.Client{Transport: t.client.Transport}
}

// DoRequest performs an HTTP request, retrying transient failures with
// exponential backoff. Non-2xx terminal responses are returned as typed
// errors; the caller owns the response body on success.
func (t *Transport) DoRequest(ctx context.Context, operation, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			t.logger.Debug("retrying upstream request",
				"operation", operation,
				"attempt", attempt,
				"max_retries", t.maxRetries,
				"backoff", backoff,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		for key, value := range headers {
			req.Header.Set(key, value)
		}
		if req.Header.Get("Content-Type") == "" && body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := t.client.Do(req)
		if err != nil {
			lastErr = err

			if ctx.Err() != nil {
				return nil, &TimeoutError{Operation: operation, Timeout: t.timeout}
			}

			t.logger.Warn("upstream request failed, will retry",
				"operation", operation,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, &AuthError{Message: string(errorBody)}

		case http.StatusTooManyRequests:
			return nil, &RateLimitError{
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Message:    string(errorBody),
			}

		case http.StatusBadRequest:
			return nil, &UpstreamError{
				Operation:  operation,
				StatusCode: resp.StatusCode,
				Message:    string(errorBody),
			}

		default:
			lastErr = &UpstreamError{
				Operation:  operation,
				StatusCode: resp.StatusCode,
				Message:    string(errorBody),
			}
			t.logger.Warn("upstream returned error status, will retry",
				"operation", operation,
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("request failed after %d attempts", t.maxRetries+1)
	}
	return nil, &UpstreamError{
		Operation: operation,
		Message:   "retries exhausted",
		Cause:     lastErr,
	}
}

// DoJSON performs a request and parses the response body as a loose JSON
// envelope. The provider moves fields around across versions, so callers
// extract what they need by gjson path instead of struct decoding.
func (t *Transport) DoJSON(ctx context.Context, operation, method, url string, body []byte, headers map[string]string) (gjson.Result, error) {
	resp, err := t.DoRequest(ctx, operation, method, url, body, headers)
	if err != nil {
		return gjson.Result{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, &UpstreamError{
			Operation: operation,
			Message:   "failed to read response body",
			Cause:     err,
		}
	}

	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, &ParseError{
			Operation:   operation,
			RawResponse: truncate(string(raw), 512),
		}
	}

	return gjson.ParseBytes(raw), nil
}

// parseRetryAfter parses a Retry-After header value in seconds.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
