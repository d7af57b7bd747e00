// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/ringcast/ringcast/internal/domain/model"
)

// MatchDependencies defines the interface for live match state reads.
type MatchDependencies interface {
	CurrentMatch() model.MatchSnapshot
	OrchestratorState() string
}

// MatchHandler handles current-match requests.
type MatchHandler struct {
	deps MatchDependencies
}

// NewMatchHandler creates a new match handler.
func NewMatchHandler(deps MatchDependencies) *MatchHandler {
	return &MatchHandler{deps: deps}
}

type athleteResponse struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

type matchResponse struct {
	Loaded               bool            `json:"loaded"`
	MatchNumber          string          `json:"match_number,omitempty"`
	Phase                string          `json:"phase,omitempty"`
	Athlete1             athleteResponse `json:"athlete1"`
	Athlete2             athleteResponse `json:"athlete2"`
	Rounds               int             `json:"rounds"`
	Round                *int            `json:"round,omitempty"`
	TimeRemainingSeconds *float64        `json:"time_remaining_seconds,omitempty"`
	ClockRunning         bool            `json:"clock_running"`
	ManualOverride       bool            `json:"manual_override"`
	RecordingState       string          `json:"recording_state"`
}

// HandleGetMatch handles GET /match requests.
func (h *MatchHandler) HandleGetMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	snap := h.deps.CurrentMatch()
	resp := matchResponse{
		Loaded:         snap.Loaded(),
		MatchNumber:    snap.MatchNumber,
		Phase:          snap.Phase,
		Athlete1:       athleteResponse{Name: snap.Athlete1.Name, Country: snap.Athlete1.Country},
		Athlete2:       athleteResponse{Name: snap.Athlete2.Name, Country: snap.Athlete2.Country},
		Rounds:         snap.Rounds,
		Round:          snap.Round,
		ClockRunning:   snap.ClockRunning,
		ManualOverride: snap.ManualOverride,
		RecordingState: h.deps.OrchestratorState(),
	}
	if snap.TimeRemaining != nil {
		seconds := snap.TimeRemaining.Seconds()
		resp.TimeRemainingSeconds = &seconds
	}
	writeJSON(w, http.StatusOK, resp)
}
