// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/ringcast/ringcast/internal/adapters/repository"
	"github.com/ringcast/ringcast/internal/domain/model"
)

// VideoDependencies defines the interface for recorded-session reads.
type VideoDependencies interface {
	DayVideos(ctx context.Context, day string, kind model.SessionKind) ([]repository.VideoRef, error)
}

// VideosHandler handles tournament-day video listing requests.
type VideosHandler struct {
	deps VideoDependencies
}

// NewVideosHandler creates a new videos handler.
func NewVideosHandler(deps VideoDependencies) *VideosHandler {
	return &VideosHandler{deps: deps}
}

type videoResponse struct {
	SessionID  string     `json:"session_id"`
	Connection string     `json:"connection"`
	Kind       string     `json:"kind"`
	Number     int        `json:"number"`
	Start      time.Time  `json:"start"`
	End        *time.Time `json:"end,omitempty"`
	Directory  string     `json:"directory"`
	Template   string     `json:"template"`
}

// HandleGetVideos handles GET /videos?day=YYYY-MM-DD&kind=recording requests.
func (h *VideosHandler) HandleGetVideos(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_videos"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	day := strings.TrimSpace(r.URL.Query().Get("day"))
	if day == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			wrapKind(op, ErrBadRequest, "day query parameter is required"))
		return
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request",
			wrapKind(op, ErrBadRequest, "day must be formatted YYYY-MM-DD"))
		return
	}
	kind, ok := parseSessionKind(r.URL.Query().Get("kind"))
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request",
			wrapKind(op, ErrBadRequest, "unknown session kind"))
		return
	}

	refs, err := h.deps.DayVideos(r.Context(), day, kind)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	out := make([]videoResponse, 0, len(refs))
	for _, ref := range refs {
		out = append(out, videoResponse{
			SessionID:  ref.SessionID,
			Connection: ref.Connection,
			Kind:       ref.Kind.String(),
			Number:     ref.Number,
			Start:      ref.Start,
			End:        ref.End,
			Directory:  ref.Directory,
			Template:   ref.Template,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
