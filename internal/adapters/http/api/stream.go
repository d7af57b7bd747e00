// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ringcast/ringcast/internal/domain/model"
	"github.com/ringcast/ringcast/internal/hub"
)

// StreamDependencies defines the interface for live event subscriptions.
type StreamDependencies interface {
	Subscribe() *hub.Subscription
	Unsubscribe(sub *hub.Subscription)
}

// StreamHandler streams live events to UI clients over server-sent events.
type StreamHandler struct {
	deps StreamDependencies
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(deps StreamDependencies) *StreamHandler {
	return &StreamHandler{deps: deps}
}

type streamEvent struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Category     string    `json:"category"`
	CapturedAt   time.Time `json:"captured_at"`
	Payload      any       `json:"payload,omitempty"`
	RecTimestamp *float64  `json:"rec_timestamp,omitempty"`
	StrTimestamp *float64  `json:"str_timestamp,omitempty"`
}

// HandleStream handles GET /stream requests. Events arrive in publish
// order; when the client cannot keep up, the oldest pending events are
// dropped rather than stalling ingestion.
func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	sub := h.deps.Subscribe()
	defer h.deps.Unsubscribe(sub)

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-sub.C:
			if !open {
				return
			}
			data, err := json.Marshal(toStreamEvent(ev))
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func toStreamEvent(ev model.Event) streamEvent {
	return streamEvent{
		ID:           ev.ID,
		Kind:         ev.Kind.String(),
		Category:     ev.Category.String(),
		CapturedAt:   ev.CapturedAt,
		Payload:      ev.Payload,
		RecTimestamp: ev.RecTimestamp,
		StrTimestamp: ev.StrTimestamp,
	}
}
