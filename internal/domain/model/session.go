package model

import "time"

// SessionKind identifies which capture backend a session belongs to.
type SessionKind int

// Session kinds.
const (
	SessionRecording SessionKind = iota
	SessionStreaming
	SessionReplayBuffer
)

// String returns the session-kind name used in logs and persisted records.
func (k SessionKind) String() string {
	switch k {
	case SessionRecording:
		return "recording"
	case SessionStreaming:
		return "streaming"
	case SessionReplayBuffer:
		return "replay_buffer"
	default:
		return "unknown"
	}
}

// RecordingSession is one real instance of "capture is active on connection
// X from time T". At most one session per (connection, kind) pair is active
// at any instant.
type RecordingSession struct {
	ID         string
	Connection string
	Kind       SessionKind
	Start      time.Time
	End        *time.Time // nil while the session is active

	// Number is the session ordinal within the tournament day, starting
	// at 1 and incremented on every interruption-driven restart.
	Number int

	// CumulativeOffset is the running time correction in seconds carried
	// over from prior sessions of the same kind on the same day. It keeps
	// per-event offsets continuous across restarts.
	CumulativeOffset float64

	Directory string
	Template  string

	// TournamentDay scopes session numbering and folder layout,
	// formatted as YYYY-MM-DD.
	TournamentDay string
}

// Active reports whether the session is still open.
func (s *RecordingSession) Active() bool {
	return s.End == nil
}

// ReplayRequest is an ephemeral "surface the last N seconds" trigger. The
// deadline bounds the poll for the saved replay file.
type ReplayRequest struct {
	Deadline time.Time
	// SeekOffset is the signed seek handed to the player: negative values
	// mean seconds from the end of the clip.
	SeekOffset float64
}
