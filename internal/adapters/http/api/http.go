// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/ringcast/ringcast/internal/adapters/repository"
	"github.com/ringcast/ringcast/internal/domain/model"
	"github.com/ringcast/ringcast/internal/hub"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service wiring.
type Dependencies interface {
	// Live stream surface.
	Subscribe() *hub.Subscription
	Unsubscribe(sub *hub.Subscription)

	// Read operations over live and persisted match state.
	CurrentMatch() model.MatchSnapshot
	OrchestratorState() string
	ConnectionStatuses() map[string]string
	MatchEvents(ctx context.Context, day, matchNumber string) ([]repository.EventRecord, error)
	DayVideos(ctx context.Context, day string, kind model.SessionKind) ([]repository.VideoRef, error)
	Sessions(kind model.SessionKind) []model.RecordingSession

	// Operator controls.
	AdjustOffset(ctx context.Context, sessionID string, offset float64) error
	TriggerReplay(ctx context.Context) (string, error)
}

// Server wires HTTP routes for the operator API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	matchHandler    *MatchHandler
	eventsHandler   *EventsHandler
	videosHandler   *VideosHandler
	sessionsHandler *SessionsHandler
	replayHandler   *ReplayHandler
	streamHandler   *StreamHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		matchHandler:    NewMatchHandler(deps),
		eventsHandler:   NewEventsHandler(deps),
		videosHandler:   NewVideosHandler(deps),
		sessionsHandler: NewSessionsHandler(deps),
		replayHandler:   NewReplayHandler(deps),
		streamHandler:   NewStreamHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/match", MetricsMiddleware(s.matchHandler.HandleGetMatch, "match"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandleGetEvents, "events"))
	mux.HandleFunc("/videos", MetricsMiddleware(s.videosHandler.HandleGetVideos, "videos"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandleGetSessions, "sessions"))
	mux.HandleFunc("/sessions/offset", MetricsMiddleware(s.sessionsHandler.HandleAdjustOffset, "sessions_offset"))
	mux.HandleFunc("/replay", MetricsMiddleware(s.replayHandler.HandleTriggerReplay, "replay"))

	// Long-lived connection; per-request duration metrics would only
	// measure how long the client stayed subscribed.
	mux.HandleFunc("/stream", s.streamHandler.HandleStream)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// parseSessionKind maps the query-parameter spelling to a session kind.
// An empty value defaults to recording.
func parseSessionKind(s string) (model.SessionKind, bool) {
	switch s {
	case "", "recording":
		return model.SessionRecording, true
	case "streaming":
		return model.SessionStreaming, true
	case "replay_buffer":
		return model.SessionReplayBuffer, true
	default:
		return 0, false
	}
}
