package upstream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// TaskStream is the line sequence of one task's event stream. Blank lines
// and SSE comment lines are filtered out; everything else is handed to the
// caller verbatim for translation.
type TaskStream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	cancel  context.CancelFunc
}

// StreamTask opens the provider's event stream for a previously submitted
// task. The stream is bounded by the configured stream timeout and by ctx;
// Close releases the connection early.
func (c *Client) StreamTask(ctx context.Context, taskID string) (*TaskStream, error) {
	url := c.cfg.BaseURL + "/api/v1/stream/chat/completions"
	headers := c.buildHeaders(headerSpec{
		accept:         "text/event-stream",
		acceptLanguage: "zh",
	})

	body, err := json.Marshal(map[string]any{"message_id": taskID})
	if err != nil {
		return nil, fmt.Errorf("failed to encode stream request: %w", err)
	}

	streamCtx, cancel := context.WithTimeout(ctx, c.cfg.StreamTimeout)

	req, err := http.NewRequestWithContext(streamCtx, "POST", url, strings.NewReader(string(body)))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create stream request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.transport.StreamingClient().Do(req)
	if err != nil {
		cancel()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &UpstreamError{
			Operation: "stream",
			Message:   "failed to open event stream",
			Cause:     err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		cancel()
		return nil, &UpstreamError{
			Operation:  "stream",
			StatusCode: resp.StatusCode,
			Message:    string(errorBody),
		}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	c.logger.DebugContext(ctx, "event stream opened", "task_id", taskID)

	return &TaskStream{
		body:    resp.Body,
		scanner: scanner,
		cancel:  cancel,
	}, nil
}

// Recv returns the next meaningful line of the stream, skipping blanks and
// comments. io.EOF marks a normally exhausted stream; any other error is a
// transport failure mid-stream.
func (s *TaskStream) Recv() (string, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		return line, nil
	}

	if err := s.scanner.Err(); err != nil {
		return "", &UpstreamError{
			Operation: "stream",
			Message:   "event stream read failed",
			Cause:     err,
		}
	}
	return "", io.EOF
}

// Close tears down the stream and its connection. Safe to call after EOF.
func (s *TaskStream) Close() error {
	s.cancel()
	return s.body.Close()
}
