// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ringcast/ringcast/internal/domain/correlate"
	"github.com/ringcast/ringcast/internal/domain/model"
)

// SessionDependencies defines the interface for correlation session reads
// and operator offset corrections.
type SessionDependencies interface {
	Sessions(kind model.SessionKind) []model.RecordingSession
	AdjustOffset(ctx context.Context, sessionID string, offset float64) error
}

// SessionsHandler handles correlation session requests.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

type sessionResponse struct {
	ID               string     `json:"id"`
	Connection       string     `json:"connection"`
	Kind             string     `json:"kind"`
	Number           int        `json:"number"`
	Start            time.Time  `json:"start"`
	End              *time.Time `json:"end,omitempty"`
	CumulativeOffset float64    `json:"cumulative_offset"`
	Directory        string     `json:"directory"`
	Template         string     `json:"template"`
	TournamentDay    string     `json:"tournament_day"`
}

// HandleGetSessions handles GET /sessions?kind=recording requests.
func (h *SessionsHandler) HandleGetSessions(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_sessions"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	kind, ok := parseSessionKind(r.URL.Query().Get("kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request",
			wrapKind(op, ErrBadRequest, "unknown session kind"))
		return
	}

	sessions := h.deps.Sessions(kind)
	out := make([]sessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionResponse{
			ID:               s.ID,
			Connection:       s.Connection,
			Kind:             s.Kind.String(),
			Number:           s.Number,
			Start:            s.Start,
			End:              s.End,
			CumulativeOffset: s.CumulativeOffset,
			Directory:        s.Directory,
			Template:         s.Template,
			TournamentDay:    s.TournamentDay,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type adjustOffsetRequest struct {
	SessionID     string  `json:"session_id"`
	OffsetSeconds float64 `json:"offset_seconds"`
}

// HandleAdjustOffset handles POST /sessions/offset requests. The correction
// propagates to every later session of the same kind.
func (h *SessionsHandler) HandleAdjustOffset(w http.ResponseWriter, r *http.Request) {
	const op = "api.adjust_offset"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req adjustOffsetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request",
			wrapKind(op, ErrBadRequest, "invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			wrapKind(op, ErrBadRequest, "missing session_id"))
		return
	}

	if err := h.deps.AdjustOffset(r.Context(), req.SessionID, req.OffsetSeconds); err != nil {
		if errors.Is(err, correlate.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "adjusted"})
}
