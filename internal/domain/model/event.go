// Package model contains domain models passed between layers.
package model

import "time"

// Kind identifies the wire message a decoded event came from.
type Kind int

// Wire message kinds. KindRaw covers unknown or truncated datagrams.
const (
	KindRaw Kind = iota
	KindPoints
	KindHitLevel
	KindWarning
	KindChallenge
	KindInjury
	KindBreak
	KindClock
	KindRound
	KindWinner
	KindWinnerRounds
	KindAthletes
	KindMatchConfig
	KindScores
	KindCurrentScores
	KindFightReady
	KindFightLoaded
)

// String returns the kind name used in logs and persisted records.
func (k Kind) String() string {
	switch k {
	case KindPoints:
		return "points"
	case KindHitLevel:
		return "hit_level"
	case KindWarning:
		return "warning"
	case KindChallenge:
		return "challenge"
	case KindInjury:
		return "injury"
	case KindBreak:
		return "break"
	case KindClock:
		return "clock"
	case KindRound:
		return "round"
	case KindWinner:
		return "winner"
	case KindWinnerRounds:
		return "winner_rounds"
	case KindAthletes:
		return "athletes"
	case KindMatchConfig:
		return "match_config"
	case KindScores:
		return "scores"
	case KindCurrentScores:
		return "current_scores"
	case KindFightReady:
		return "fight_ready"
	case KindFightLoaded:
		return "fight_loaded"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Category is the coarse display/analytics category assigned to an event.
type Category int

// Categories. Every Kind maps to exactly one of these.
const (
	CategoryOther Category = iota
	CategoryPunch
	CategoryHead
	CategoryTechnicalBody
	CategoryTechnicalHead
	CategoryKick
	CategoryReferee
)

// String returns the category name used in logs and persisted records.
func (c Category) String() string {
	switch c {
	case CategoryPunch:
		return "punch"
	case CategoryHead:
		return "head"
	case CategoryTechnicalBody:
		return "technical_body"
	case CategoryTechnicalHead:
		return "technical_head"
	case CategoryKick:
		return "kick"
	case CategoryReferee:
		return "referee"
	default:
		return "other"
	}
}

// ClockAction distinguishes clock start from clock stop messages.
type ClockAction int

// Clock actions.
const (
	ClockStop ClockAction = iota
	ClockStart
)

// Payload is the closed set of decoded message bodies. Kinds without
// fields (FightReady, FightLoaded, Raw) carry a nil payload.
type Payload interface {
	isPayload()
}

// Points is a scored point for one athlete. Code is the point-type code 1..5.
type Points struct {
	Athlete int
	Code    int
}

// HitLevel is an impact-level reading 1..100 for one athlete.
type HitLevel struct {
	Athlete int
	Level   int
}

// Warning is a referee warning against one athlete.
type Warning struct {
	Athlete int
}

// Challenge is a video-review request. Source 0 means referee-initiated.
// Decided is false while the challenge is still open.
type Challenge struct {
	Source   int
	Decided  bool
	Accepted bool
}

// Injury is an injury-time message with the displayed injury clock.
type Injury struct {
	Display string
	Time    time.Duration
}

// Break is a rest-break message. Phase carries the protocol phase token,
// e.g. "stopEnd" at the end of an inter-round break.
type Break struct {
	Display string
	Time    time.Duration
	Phase   string
}

// Clock is a match-clock message: remaining time plus start/stop action.
type Clock struct {
	Display string
	Time    time.Duration
	Action  ClockAction
}

// Round announces the current round number.
type Round struct {
	Number int
}

// Winner announces the match winner by corner color.
type Winner struct {
	Color string
}

// WinnerRounds announces the winner together with per-round results.
type WinnerRounds struct {
	Color  string
	Rounds string
}

// Athletes carries the identity for one athlete slot (1 or 2).
type Athletes struct {
	Slot    int
	Name    string
	Country string
}

// MatchConfig carries the bout configuration sent when a fight is loaded.
type MatchConfig struct {
	Number          string
	Phase           string
	Rounds          int
	RoundDuration   time.Duration
	CountdownFormat string
}

// Scores is a per-round score echo.
type Scores struct {
	Round    int
	Athlete1 int
	Athlete2 int
}

// CurrentScores is the running total score echo.
type CurrentScores struct {
	Athlete1 int
	Athlete2 int
}

func (Points) isPayload()        {}
func (HitLevel) isPayload()      {}
func (Warning) isPayload()       {}
func (Challenge) isPayload()     {}
func (Injury) isPayload()        {}
func (Break) isPayload()         {}
func (Clock) isPayload()         {}
func (Round) isPayload()         {}
func (Winner) isPayload()        {}
func (WinnerRounds) isPayload()  {}
func (Athletes) isPayload()      {}
func (MatchConfig) isPayload()   {}
func (Scores) isPayload()        {}
func (CurrentScores) isPayload() {}

// Event is one decoded wire message. Immutable once decoded, except for
// the correlation timestamps which are written exactly once by the
// correlation engine.
type Event struct {
	ID         string    // unique id assigned at decode time
	Kind       Kind      // message kind
	CapturedAt time.Time // arrival timestamp, distinct from payload times
	Raw        string    // original datagram text
	Payload    Payload   // decoded body, nil for kinds without fields

	Category Category // assigned by the categorizer

	// Offsets in seconds from the active recording/streaming session
	// start, adjusted by the session's cumulative offset. Nil until an
	// active session of the matching kind stamps them.
	RecTimestamp *float64
	StrTimestamp *float64
}
