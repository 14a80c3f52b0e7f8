package handlers

import (
	"net/http"

	"kiira-hq/triton/pkg/chat"
	"kiira-hq/triton/pkg/proxy"
	"kiira-hq/triton/pkg/proxy/types"
)

// ModelsHandler serves GET /v1/models with the configured model listing.
type ModelsHandler struct {
	orchestrator *chat.Orchestrator
}

// NewModelsHandler creates the model listing handler.
func NewModelsHandler(orchestrator *chat.Orchestrator) *ModelsHandler {
	return &ModelsHandler{orchestrator: orchestrator}
}

func (h *ModelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		_ = proxy.WriteJSONResponse(w, http.StatusMethodNotAllowed,
			types.NewInvalidRequestError("method not allowed, use GET", "", ""))
		return
	}
	_ = proxy.WriteJSONResponse(w, http.StatusOK, h.orchestrator.Models())
}
