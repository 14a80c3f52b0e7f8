package proxy

import (
	"errors"
	"fmt"

	"kiira-hq/triton/pkg/agent"
	"kiira-hq/triton/pkg/chat"
	"kiira-hq/triton/pkg/proxy/types"
	"kiira-hq/triton/pkg/stream"
	"kiira-hq/triton/pkg/upstream"
)

// HandleError converts internal error types to OpenAI-compatible error
// responses. Upstream failures surface as gateway errors; everything the
// client can fix surfaces as an invalid request.
func HandleError(err error) *types.ErrorResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	var notAllowed *chat.ModelNotAllowedError
	if errors.As(err, &notAllowed) {
		return types.NewInvalidRequestError(notAllowed.Error(), "model", types.CodeModelNotAllowed)
	}

	if errors.Is(err, chat.ErrMissingModel) {
		return types.NewInvalidRequestError(err.Error(), "model", types.CodeMissingField)
	}

	if errors.Is(err, chat.ErrNoUserMessage) {
		return types.NewInvalidRequestError(err.Error(), "messages", types.CodeMissingField)
	}

	var noMatch *agent.NoMatchError
	if errors.As(err, &noMatch) {
		return types.NewInvalidRequestError(noMatch.Error(), "model", types.CodeModelNotFound)
	}

	var rateLimitErr *upstream.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return types.NewErrorResponse(
			rateLimitErr.Error(),
			types.ErrorTypeRateLimitExceeded,
			"",
			"rate_limit_exceeded",
		)
	}

	var timeoutErr *upstream.TimeoutError
	if errors.As(err, &timeoutErr) {
		return types.NewGatewayTimeoutError(
			fmt.Sprintf("Upstream request timed out: %v", timeoutErr),
		)
	}

	var authErr *upstream.AuthError
	if errors.As(err, &authErr) {
		// The upstream rejected the adapter's own credential; the client
		// cannot fix this, so it is a gateway problem.
		return types.NewBadGatewayError(
			fmt.Sprintf("Upstream authentication failed: %v", authErr),
		)
	}

	var parseErr *upstream.ParseError
	if errors.As(err, &parseErr) {
		return types.NewBadGatewayError(
			fmt.Sprintf("Failed to parse upstream response: %v", parseErr),
		)
	}

	var upstreamErr *upstream.UpstreamError
	if errors.As(err, &upstreamErr) {
		return types.NewBadGatewayError(
			fmt.Sprintf("Upstream error: %v", upstreamErr),
		)
	}

	if errors.Is(err, stream.ErrEmptyReply) {
		return types.NewBadGatewayError("Upstream returned an empty reply")
	}

	return types.NewServerError("An internal error occurred. Please try again later.")
}
