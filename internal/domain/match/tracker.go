// Package match folds the ordered event stream into the current match
// state and classifies round transitions as normal flow or manual override.
package match

import (
	"context"
	"sync"
	"time"

	"github.com/ringcast/ringcast/internal/domain/model"
	"github.com/ringcast/ringcast/pkg/logger"
)

// defaultRoundDuration is the fallback display duration used before the
// first MatchConfig of a bout arrives.
const defaultRoundDuration = 2 * time.Minute

// Transition describes what a single applied event changed.
type Transition struct {
	Snapshot model.MatchSnapshot

	// Reset is set on FightLoaded.
	Reset bool

	// RoundAdvanced is set when a Round event advanced the round through
	// normal flow. It stays false for manual-override transitions, which
	// must not trigger automatic round-advance side effects.
	RoundAdvanced bool

	// ManualOverride is set when the transition happened inside the
	// clock-stopped window outside the inter-round break exception.
	ManualOverride bool

	// MatchEnded is set on Winner.
	MatchEnded bool
}

// Tracker owns the mutable match state. Apply is the only mutation entry;
// everything downstream works from snapshots.
type Tracker struct {
	mu  sync.RWMutex
	log logger.Logger

	matchNumber     string
	phase           string
	rounds          int
	roundDuration   time.Duration
	countdownFormat string
	athlete1        model.AthleteInfo
	athlete2        model.AthleteInfo
	round           *int
	timeRemaining   *time.Duration
	clockRunning    bool
	manualOverride  bool

	// overrideWindow is open while the clock is stopped. A Round event
	// inside the window is a manual override unless the immediately
	// preceding event was a zero-time Break stopEnd.
	overrideWindow   bool
	prevBreakStopEnd bool
}

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithLogger sets a custom logger for the tracker.
func WithLogger(log logger.Logger) Option {
	return func(t *Tracker) {
		if log != nil {
			t.log = log
		}
	}
}

// New constructs a Tracker in the empty pre-fight state.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		log: logger.Get().Named("match"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Apply folds one event into the match state. It never fails: events that
// cannot update any field are accepted as no-ops, and inconsistencies are
// logged rather than raised.
func (t *Tracker) Apply(ctx context.Context, ev model.Event) Transition {
	t.mu.Lock()
	defer t.mu.Unlock()

	tr := Transition{}

	switch ev.Kind {
	case model.KindFightLoaded:
		t.reset()
		tr.Reset = true
	case model.KindMatchConfig:
		if cfg, ok := ev.Payload.(model.MatchConfig); ok {
			t.matchNumber = cfg.Number
			t.phase = cfg.Phase
			t.rounds = cfg.Rounds
			t.roundDuration = cfg.RoundDuration
			t.countdownFormat = cfg.CountdownFormat
		}
	case model.KindAthletes:
		if a, ok := ev.Payload.(model.Athletes); ok {
			info := model.AthleteInfo{Name: a.Name, Country: a.Country}
			switch a.Slot {
			case 1:
				t.athlete1 = info
			case 2:
				t.athlete2 = info
			default:
				t.log.Warn(ctx, "athlete event with unknown slot", logger.Int("slot", a.Slot))
			}
		}
	case model.KindClock:
		if c, ok := ev.Payload.(model.Clock); ok {
			remaining := c.Time
			t.timeRemaining = &remaining
			if c.Action == model.ClockStart {
				t.clockRunning = true
				t.overrideWindow = false
			} else {
				t.clockRunning = false
				t.overrideWindow = true
			}
		}
	case model.KindRound:
		if r, ok := ev.Payload.(model.Round); ok {
			tr.RoundAdvanced, tr.ManualOverride = t.applyRound(ctx, r.Number)
		}
	case model.KindWinner:
		tr.MatchEnded = true
	case model.KindRaw:
		// No state mutation for unrecognized input, but it still counts
		// as an intervening event for the break exception below.
	default:
		// Points, hit levels, warnings, challenges, scores and the rest
		// carry no tracker state.
	}

	// The break exception demands *no* event between the zero-time
	// Break stopEnd and the Round, so every applied event rewrites it.
	if b, ok := ev.Payload.(model.Break); ok && ev.Kind == model.KindBreak {
		t.prevBreakStopEnd = b.Time == 0 && b.Phase == "stopEnd"
	} else {
		t.prevBreakStopEnd = false
	}

	tr.Snapshot = t.snapshotLocked()
	return tr
}

// applyRound classifies and applies a round change. Returns (advanced,
// manualOverride) for the transition.
func (t *Tracker) applyRound(ctx context.Context, n int) (bool, bool) {
	if t.round != nil && n < *t.round {
		t.log.Warn(ctx, "round number decreased, ignoring",
			logger.Int("current", *t.round),
			logger.Int("received", n),
		)
		return false, false
	}

	changed := t.round == nil || n != *t.round
	round := n
	t.round = &round

	if !t.overrideWindow {
		t.manualOverride = false
		return changed, false
	}

	if t.prevBreakStopEnd {
		// Normal inter-round flow: stopEnd break immediately followed by
		// the next round announcement.
		t.manualOverride = false
		return changed, false
	}

	t.manualOverride = true
	return false, true
}

func (t *Tracker) reset() {
	t.matchNumber = ""
	t.phase = ""
	t.rounds = 0
	t.roundDuration = 0
	t.countdownFormat = ""
	t.athlete1 = model.AthleteInfo{}
	t.athlete2 = model.AthleteInfo{}
	t.round = nil
	t.timeRemaining = nil
	t.clockRunning = false
	t.manualOverride = false
	t.overrideWindow = false
	t.prevBreakStopEnd = false
}

// Snapshot returns a read-only copy of the current match state.
func (t *Tracker) Snapshot() model.MatchSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() model.MatchSnapshot {
	snap := model.MatchSnapshot{
		MatchNumber:     t.matchNumber,
		Phase:           t.phase,
		Athlete1:        t.athlete1,
		Athlete2:        t.athlete2,
		Rounds:          t.rounds,
		RoundDuration:   t.roundDuration,
		CountdownFormat: t.countdownFormat,
		ClockRunning:    t.clockRunning,
		ManualOverride:  t.manualOverride,
	}
	if t.round != nil {
		round := *t.round
		snap.Round = &round
	}
	if t.timeRemaining != nil {
		remaining := *t.timeRemaining
		snap.TimeRemaining = &remaining
	}
	return snap
}

// EffectiveTime returns the last known time remaining, falling back to the
// configured round duration so consumers always have a display value.
func (t *Tracker) EffectiveTime() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.timeRemaining != nil {
		return *t.timeRemaining
	}
	if t.roundDuration > 0 {
		return t.roundDuration
	}
	return defaultRoundDuration
}

// EffectiveRound returns the last known round, or 1 before the first round
// event of a bout.
func (t *Tracker) EffectiveRound() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.round != nil {
		return *t.round
	}
	return 1
}
