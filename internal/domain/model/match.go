package model

import "time"

// AthleteInfo identifies one competitor.
type AthleteInfo struct {
	Name    string
	Country string
}

// MatchSnapshot is a read-only copy of the tracker's match state. The
// tracker owns the mutable state; everything downstream sees snapshots.
type MatchSnapshot struct {
	MatchNumber     string
	Phase           string
	Athlete1        AthleteInfo
	Athlete2        AthleteInfo
	Rounds          int
	RoundDuration   time.Duration
	CountdownFormat string

	// Round and TimeRemaining are nil until the first round/clock event
	// after a fight load.
	Round         *int
	TimeRemaining *time.Duration

	ClockRunning   bool
	ManualOverride bool
}

// Loaded reports whether a bout has been configured since the last reset.
func (m *MatchSnapshot) Loaded() bool {
	return m.MatchNumber != ""
}
