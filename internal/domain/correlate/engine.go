// Package correlate computes per-event offsets relative to the active
// recording/streaming session and keeps those offsets continuous across
// session interruptions via cumulative offset bookkeeping.
package correlate

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ringcast/ringcast/internal/domain/model"
	"github.com/ringcast/ringcast/pkg/logger"
	"github.com/ringcast/ringcast/pkg/metrics"
)

// defaultGapThreshold is the gap between sessions of one kind treated as
// an interruption. Tunable; there is no single canonical value.
const defaultGapThreshold = 5 * time.Minute

// Engine tracks active and historical capture sessions per kind for the
// current tournament day and stamps events with session-relative offsets.
type Engine struct {
	mu  sync.Mutex
	log logger.Logger

	gapThreshold time.Duration

	active  map[model.SessionKind]*model.RecordingSession
	history map[model.SessionKind][]*model.RecordingSession
	day     string
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithGapThreshold sets the interruption-detection gap threshold.
func WithGapThreshold(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.gapThreshold = d
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// New constructs an Engine with no active sessions.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:          logger.Get().Named("correlate"),
		gapThreshold: defaultGapThreshold,
		active:       make(map[model.SessionKind]*model.RecordingSession),
		history:      make(map[model.SessionKind][]*model.RecordingSession),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartSession opens a session of the given kind. Session numbering and
// cumulative offsets follow the day's prior sessions of the same kind: a
// gap of at least the threshold since the previous session's end is an
// interruption and extends the cumulative offset by the gap duration.
// Starting a kind that is already active closes the active session first.
func (e *Engine) StartSession(ctx context.Context, kind model.SessionKind, connection, day string, start time.Time, directory, template string) model.RecordingSession {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.day != day {
		// New tournament day: numbering and offsets start over.
		e.active = make(map[model.SessionKind]*model.RecordingSession)
		e.history = make(map[model.SessionKind][]*model.RecordingSession)
		e.day = day
	}

	if open, ok := e.active[kind]; ok {
		end := start
		open.End = &end
		e.log.Warn(ctx, "session started while previous still active, closing it",
			logger.String("kind", kind.String()),
			logger.String("session", open.ID),
		)
	}

	s := &model.RecordingSession{
		ID:            uuid.NewString(),
		Connection:    connection,
		Kind:          kind,
		Start:         start,
		Number:        1,
		Directory:     directory,
		Template:      template,
		TournamentDay: day,
	}

	if prior := e.history[kind]; len(prior) > 0 {
		prev := prior[len(prior)-1]
		s.Number = prev.Number + 1
		s.CumulativeOffset = prev.CumulativeOffset
		if prev.End != nil {
			gap := start.Sub(*prev.End)
			if gap >= e.gapThreshold {
				s.CumulativeOffset += gap.Seconds()
				metrics.RecordCorrelationGap()
				e.log.Info(ctx, "session interruption detected",
					logger.String("kind", kind.String()),
					logger.Float64("gap_seconds", gap.Seconds()),
					logger.Int("session_number", s.Number),
				)
			}
		}
	}

	e.active[kind] = s
	e.history[kind] = append(e.history[kind], s)
	metrics.RecordSessionStarted(kind.String())
	return *s
}

// EndSession closes the active session of the given kind. The second
// return value is false when no session of that kind is active.
func (e *Engine) EndSession(ctx context.Context, kind model.SessionKind, end time.Time) (model.RecordingSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.active[kind]
	if !ok {
		e.log.Warn(ctx, "end requested for inactive session kind", logger.String("kind", kind.String()))
		return model.RecordingSession{}, false
	}
	endAt := end
	s.End = &endAt
	delete(e.active, kind)
	metrics.RecordSessionEnded(kind.String())
	return *s, true
}

// ActiveSession returns a copy of the active session of the given kind.
func (e *Engine) ActiveSession(kind model.SessionKind) (model.RecordingSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.active[kind]
	if !ok {
		return model.RecordingSession{}, false
	}
	return *s, true
}

// Sessions returns copies of the day's sessions of the given kind in start
// order.
func (e *Engine) Sessions(kind model.SessionKind) []model.RecordingSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.RecordingSession, 0, len(e.history[kind]))
	for _, s := range e.history[kind] {
		out = append(out, *s)
	}
	return out
}

// Stamp writes the recording and streaming offsets onto the event for
// whichever session kinds apply. Each offset is written at most once;
// stamping an already-stamped event is a no-op.
func (e *Engine) Stamp(ev *model.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ev.RecTimestamp == nil {
		ev.RecTimestamp = e.offsetLocked(model.SessionRecording, ev.CapturedAt)
	}
	if ev.StrTimestamp == nil {
		ev.StrTimestamp = e.offsetLocked(model.SessionStreaming, ev.CapturedAt)
	}
}

// offsetLocked computes the session-relative offset for a capture time, or
// nil when no session covers it. An event can reach the stamp stage after
// its session closed: the stop path waits out the post-winner delay, so
// events captured inside that window arrive behind the session end. Those
// events were captured while the output was still rolling and belong to
// the just-closed session.
func (e *Engine) offsetLocked(kind model.SessionKind, capturedAt time.Time) *float64 {
	s, ok := e.active[kind]
	if !ok {
		hist := e.history[kind]
		if len(hist) == 0 {
			return nil
		}
		last := hist[len(hist)-1]
		if last.End == nil || capturedAt.After(*last.End) {
			return nil
		}
		s = last
	}
	offset := capturedAt.Sub(s.Start).Seconds() + s.CumulativeOffset
	return &offset
}

// AdjustOffset applies an operator correction to one session's cumulative
// offset and recomputes the cumulative offsets of all subsequent sessions
// of the same kind. Per-event offsets already written stay as recorded;
// the asymmetry is intentional, they are historical record.
func (e *Engine) AdjustOffset(ctx context.Context, sessionID string, offset float64) ([]model.RecordingSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for kind, sessions := range e.history {
		for i, s := range sessions {
			if s.ID != sessionID {
				continue
			}
			s.CumulativeOffset = offset
			for j := i + 1; j < len(sessions); j++ {
				prev, cur := sessions[j-1], sessions[j]
				cur.CumulativeOffset = prev.CumulativeOffset
				if prev.End != nil {
					if gap := cur.Start.Sub(*prev.End); gap >= e.gapThreshold {
						cur.CumulativeOffset += gap.Seconds()
					}
				}
			}
			e.log.Info(ctx, "session offset adjusted",
				logger.String("kind", kind.String()),
				logger.String("session", sessionID),
				logger.Float64("offset", offset),
			)
			out := make([]model.RecordingSession, 0, len(sessions)-i)
			for _, s := range sessions[i:] {
				out = append(out, *s)
			}
			return out, nil
		}
	}
	return nil, ErrSessionNotFound
}
