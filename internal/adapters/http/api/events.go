// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ringcast/ringcast/internal/adapters/repository"
)

// EventDependencies defines the interface for persisted event reads.
type EventDependencies interface {
	MatchEvents(ctx context.Context, day, matchNumber string) ([]repository.EventRecord, error)
}

// EventsHandler handles persisted event queries.
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

type eventResponse struct {
	ID           string          `json:"id"`
	Kind         string          `json:"kind"`
	Category     string          `json:"category"`
	CapturedAt   time.Time       `json:"captured_at"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	RecTimestamp *float64        `json:"rec_timestamp,omitempty"`
	StrTimestamp *float64        `json:"str_timestamp,omitempty"`
	VideoPath    *string         `json:"video_path,omitempty"`
	SeekOffset   *float64        `json:"seek_offset,omitempty"`
}

// HandleGetEvents handles GET /events?day=YYYY-MM-DD&match=N requests.
func (h *EventsHandler) HandleGetEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_events"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	day := strings.TrimSpace(r.URL.Query().Get("day"))
	matchNumber := strings.TrimSpace(r.URL.Query().Get("match"))
	if day == "" || matchNumber == "" {
		writeError(w, http.StatusBadRequest, "bad_request",
			wrapKind(op, ErrBadRequest, "day and match query parameters are required"))
		return
	}
	if _, err := time.Parse("2006-01-02", day); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request",
			wrapKind(op, ErrBadRequest, "day must be formatted YYYY-MM-DD"))
		return
	}

	records, err := h.deps.MatchEvents(r.Context(), day, matchNumber)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}

	out := make([]eventResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, eventResponse{
			ID:           rec.ID,
			Kind:         rec.Kind.String(),
			Category:     rec.Category.String(),
			CapturedAt:   rec.CapturedAt,
			Payload:      rec.Payload,
			RecTimestamp: rec.RecTimestamp,
			StrTimestamp: rec.StrTimestamp,
			VideoPath:    rec.VideoPath,
			SeekOffset:   rec.SeekOffset,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
