package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"kiira-hq/triton/pkg/chat"
	"kiira-hq/triton/pkg/proxy"
	"kiira-hq/triton/pkg/proxy/middleware"
	"kiira-hq/triton/pkg/proxy/types"
	"kiira-hq/triton/pkg/telemetry/metrics"
)

// ChatHandler serves POST /v1/chat/completions.
type ChatHandler struct {
	orchestrator *chat.Orchestrator
	metrics      *metrics.Collector
	logger       *slog.Logger
}

// NewChatHandler creates the chat completions handler. metrics may be nil
// when metrics are disabled.
func NewChatHandler(orchestrator *chat.Orchestrator, collector *metrics.Collector, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		orchestrator: orchestrator,
		metrics:      collector,
		logger:       logger.With("component", "chat-handler"),
	}
}

func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		_ = proxy.WriteJSONResponse(w, http.StatusMethodNotAllowed,
			types.NewInvalidRequestError("method not allowed, use POST", "", ""))
		return
	}

	req, err := proxy.ParseChatCompletionRequest(r)
	if err != nil {
		_ = proxy.WriteErrorResponse(w, proxy.HandleError(err))
		return
	}

	start := time.Now()
	var handleErr error
	if req.Stream {
		handleErr = h.handleStream(w, r, req)
	} else {
		handleErr = h.handleComplete(w, r, req)
	}

	status := "ok"
	if handleErr != nil {
		status = "error"
	}
	h.recordRequest(req.Model, status, time.Since(start))
}

func (h *ChatHandler) handleComplete(w http.ResponseWriter, r *http.Request, req *types.ChatCompletionRequest) error {
	resp, err := h.orchestrator.Complete(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Completion failed",
			"model", req.Model,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		_ = proxy.WriteErrorResponse(w, proxy.HandleError(err))
		return err
	}
	return proxy.WriteJSONResponse(w, http.StatusOK, resp)
}

func (h *ChatHandler) handleStream(w http.ResponseWriter, r *http.Request, req *types.ChatCompletionRequest) error {
	items, err := h.orchestrator.Stream(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Stream setup failed",
			"model", req.Model,
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
		// The stream has not started, a regular JSON error still works.
		_ = proxy.WriteErrorResponse(w, proxy.HandleError(err))
		return err
	}

	proxy.SetSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	var streamErr error
	for item := range items {
		if item.Err != nil {
			streamErr = item.Err
			h.logger.ErrorContext(r.Context(), "Stream failed mid-flight",
				"model", req.Model,
				"request_id", middleware.GetRequestID(r.Context()),
				"error", item.Err,
			)
			_ = proxy.WriteSSEError(w, proxy.HandleError(item.Err))
			break
		}
		if err := proxy.WriteSSEChunk(w, item.Chunk); err != nil {
			// Client went away; drain the channel so the translator
			// goroutine can finish.
			streamErr = err
			for range items {
			}
			break
		}
		if h.metrics != nil {
			h.metrics.RecordStreamChunk()
		}
	}

	_ = proxy.WriteSSEDone(w)
	return streamErr
}

func (h *ChatHandler) recordRequest(model, status string, duration time.Duration) {
	if h.metrics == nil {
		return
	}
	if model == "" {
		model = "default"
	}
	h.metrics.RecordRequest(model, status, duration)
}
