// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/ringcast/ringcast/internal/orchestrator"
)

// ReplayDependencies defines the interface for operator replay triggers.
type ReplayDependencies interface {
	TriggerReplay(ctx context.Context) (string, error)
}

// ReplayHandler handles manual replay trigger requests.
type ReplayHandler struct {
	deps ReplayDependencies
}

// NewReplayHandler creates a new replay handler.
func NewReplayHandler(deps ReplayDependencies) *ReplayHandler {
	return &ReplayHandler{deps: deps}
}

type replayResponse struct {
	Path string `json:"path"`
}

// HandleTriggerReplay handles POST /replay requests. The call blocks until
// the clip lands on disk or the poll deadline passes.
func (h *ReplayHandler) HandleTriggerReplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	path, err := h.deps.TriggerReplay(r.Context())
	if err != nil {
		if errors.Is(err, orchestrator.ErrReplayNotFound) {
			writeError(w, http.StatusGatewayTimeout, "replay_not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, replayResponse{Path: path})
}
