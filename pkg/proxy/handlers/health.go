package handlers

import (
	"net/http"

	"kiira-hq/triton/pkg/conversation"
	"kiira-hq/triton/pkg/proxy"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string             `json:"status"`
	Version  string             `json:"version,omitempty"`
	Sessions conversation.Stats `json:"sessions"`
}

// HealthHandler serves GET /health with store statistics.
type HealthHandler struct {
	store   conversation.Store
	version string
}

// NewHealthHandler creates the health check handler.
func NewHealthHandler(store conversation.Store, version string) *HealthHandler {
	return &HealthHandler{store: store, version: version}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats()
	if err != nil {
		_ = proxy.WriteJSONResponse(w, http.StatusServiceUnavailable, HealthResponse{
			Status:  "degraded",
			Version: h.version,
		})
		return
	}
	_ = proxy.WriteJSONResponse(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Version:  h.version,
		Sessions: stats,
	})
}
