// Package orchestrator drives the production tool from match lifecycle
// events: it starts a recording when a fight is loaded, names the output
// after the bout, stops after the winner is declared, and saves replay
// clips around video review challenges.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ringcast/ringcast/internal/domain/correlate"
	"github.com/ringcast/ringcast/internal/domain/model"
	"github.com/ringcast/ringcast/pkg/logger"
	"github.com/ringcast/ringcast/pkg/metrics"
	"github.com/ringcast/ringcast/pkg/retry"

	"github.com/ringcast/ringcast/internal/adapters/repository"
)

// ControlClient is the subset of the control protocol the orchestrator
// drives. The obs client satisfies it; tests substitute a fake.
type ControlClient interface {
	StartRecording(ctx context.Context) error
	StopRecording(ctx context.Context) (string, error)
	StartReplayBuffer(ctx context.Context) error
	SaveReplayBuffer(ctx context.Context) error
	LastReplayPath(ctx context.Context) (string, error)
	SetRecordingDirectory(ctx context.Context, dir string) error
	SetFilenameTemplate(ctx context.Context, template string) error
}

// ReplayPlayer launches and closes external replay playback.
type ReplayPlayer interface {
	Open(ctx context.Context, path string, seekOffset float64) error
	Close(ctx context.Context)
}

// Default orchestrator configuration constants.
const (
	defaultSettleDelay        = 500 * time.Millisecond
	defaultPostWinnerDelay    = 3 * time.Second
	defaultReplayMaxWait      = 10 * time.Second
	defaultReplayPollInterval = 250 * time.Millisecond
	defaultReplaySeekBack     = 20.0
	defaultConnectionName     = "recording"
)

// Orchestrator owns the recording lifecycle for one recording connection.
// Event handling is single-threaded; the pipeline calls HandleEvent from
// one goroutine.
type Orchestrator struct {
	control  ControlClient
	engine   *correlate.Engine
	store    repository.Store
	player   ReplayPlayer
	log      logger.Logger
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) bool
	retryCfg retry.Config

	connectionName     string
	recordingRoot      string
	template           string
	settleDelay        time.Duration
	postWinnerDelay    time.Duration
	replayAutoTrigger  bool
	replayMaxWait      time.Duration
	replayPollInterval time.Duration
	replaySeekBack     float64

	mu             sync.Mutex
	state          State
	currentDay     string // day whose folder has been pushed to the tool
	templatePushed string // match number the template was last pushed for
	replayArmed    bool   // replay buffer started for the current day
	lastReplayPath string
}

// New creates an orchestrator driving the given control connection.
func New(control ControlClient, engine *correlate.Engine, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		control:            control,
		engine:             engine,
		now:                time.Now,
		retryCfg:           retry.DefaultConfig(),
		connectionName:     defaultConnectionName,
		template:           DefaultTemplate,
		settleDelay:        defaultSettleDelay,
		postWinnerDelay:    defaultPostWinnerDelay,
		replayMaxWait:      defaultReplayMaxWait,
		replayPollInterval: defaultReplayPollInterval,
		replaySeekBack:     defaultReplaySeekBack,
	}

	// Apply all options
	for _, opt := range opts {
		opt(o)
	}

	if o.log == nil {
		o.log = logger.Get().Named("orchestrator")
	}
	if o.sleep == nil {
		o.sleep = sleepCtx
	}
	o.setState(StateIdle)
	return o
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	metrics.UpdateOrchestratorState(int(s))
}

// HandleEvent reacts to one decoded event and the tracker state after it
// was applied. It never returns an error: recording failures are contained
// here so the scoring pipeline keeps flowing.
func (o *Orchestrator) HandleEvent(ctx context.Context, ev model.Event, snap model.MatchSnapshot) {
	switch ev.Kind {
	case model.KindFightLoaded:
		o.onFightLoaded(ctx)
	case model.KindWinner, model.KindWinnerRounds:
		o.onWinner(ctx)
	case model.KindChallenge:
		o.onChallenge(ctx, ev)
	case model.KindClock:
		if clock, ok := ev.Payload.(model.Clock); ok && clock.Action == model.ClockStart {
			// Play resumed; any open replay window is over.
			if o.player != nil {
				o.player.Close(ctx)
			}
		}
	}

	// A fight load enters Preparing before the bout details arrive. Start
	// the recording as soon as the snapshot can name the file.
	if o.State() == StatePreparing && snap.Loaded() &&
		ev.Kind != model.KindWinner && ev.Kind != model.KindWinnerRounds {
		o.beginRecording(ctx, ev, snap)
	}
}

// onFightLoaded transitions into Preparing. If a previous recording is
// still running (a bout without a declared winner), it is stopped first.
func (o *Orchestrator) onFightLoaded(ctx context.Context) {
	if o.State() == StateRecording {
		o.log.Warn(ctx, "new fight loaded while recording, stopping previous bout")
		o.stopRecording(ctx, 0)
	}
	o.setState(StatePreparing)
}

// beginRecording pushes directory and template to the tool and starts the
// recording output. Failures park the orchestrator in Error; the next
// fight load tries again.
func (o *Orchestrator) beginRecording(ctx context.Context, ev model.Event, snap model.MatchSnapshot) {
	day := ev.CapturedAt.Format("2006-01-02")
	dir := filepath.Join(o.recordingRoot, day)

	err := retry.Do(ctx, o.retryCfg, func() error {
		return o.prepare(ctx, day, dir, snap)
	})
	if err != nil {
		o.log.Error(ctx, "preparing recording failed",
			logger.String("match", snap.MatchNumber), logger.Error(err))
		o.setState(StateError)
		return
	}

	o.armReplayBuffer(ctx)

	if err := retry.Do(ctx, o.retryCfg, func() error {
		return o.control.StartRecording(ctx)
	}); err != nil {
		o.log.Error(ctx, "starting recording failed",
			logger.String("match", snap.MatchNumber), logger.Error(err))
		o.setState(StateError)
		return
	}

	session := o.engine.StartSession(ctx, model.SessionRecording, o.connectionName,
		day, o.now(), dir, renderTemplate(o.template, snap))
	o.persistSession(ctx, session)

	metrics.RecordRecordingStarted()
	o.setState(StateRecording)
	o.log.Info(ctx, "recording started",
		logger.String("match", snap.MatchNumber),
		logger.Int("session_number", session.Number),
		logger.String("directory", dir))
}

// prepare resolves the tournament-day folder and names the output file.
// The directory is pushed once per day, the template once per match.
func (o *Orchestrator) prepare(ctx context.Context, day, dir string, snap model.MatchSnapshot) error {
	o.mu.Lock()
	dayPushed := o.currentDay == day
	templatePushed := o.templatePushed == snap.MatchNumber
	o.mu.Unlock()

	if !dayPushed {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
		if err := o.control.SetRecordingDirectory(ctx, dir); err != nil {
			return err
		}
		o.mu.Lock()
		o.currentDay = day
		// The tool may have restarted since yesterday; re-arm the buffer.
		o.replayArmed = false
		o.mu.Unlock()
	}

	if !templatePushed {
		if err := o.control.SetFilenameTemplate(ctx, renderTemplate(o.template, snap)); err != nil {
			return err
		}
		o.mu.Lock()
		o.templatePushed = snap.MatchNumber
		o.mu.Unlock()

		// Give the tool time to apply the profile change before the
		// recording output opens its file.
		if !o.sleep(ctx, o.settleDelay) {
			return ctx.Err()
		}
	}
	return nil
}

// armReplayBuffer starts the tool's rolling replay buffer once per day so
// a challenge always has footage to save. Best effort: arming must never
// block the recording itself.
func (o *Orchestrator) armReplayBuffer(ctx context.Context) {
	o.mu.Lock()
	armed := o.replayArmed
	o.mu.Unlock()
	if armed {
		return
	}

	if err := o.control.StartReplayBuffer(ctx); err != nil {
		// Retried on the next fight load; tools that already run the
		// buffer answer with an error here too.
		o.log.Warn(ctx, "arming replay buffer failed", logger.Error(err))
		return
	}

	o.mu.Lock()
	o.replayArmed = true
	o.mu.Unlock()
	o.log.Info(ctx, "replay buffer armed")
}

// onWinner schedules the stop after the post-winner delay so the victory
// ceremony makes it into the recording.
func (o *Orchestrator) onWinner(ctx context.Context) {
	if o.State() != StateRecording {
		return
	}
	o.stopRecording(ctx, o.postWinnerDelay)
}

func (o *Orchestrator) stopRecording(ctx context.Context, delay time.Duration) {
	o.setState(StateStopping)

	if delay > 0 && !o.sleep(ctx, delay) {
		return
	}

	path, err := o.control.StopRecording(ctx)
	if err != nil {
		o.log.Error(ctx, "stopping recording failed", logger.Error(err))
		o.setState(StateError)
		return
	}

	if session, ok := o.engine.EndSession(ctx, model.SessionRecording, o.now()); ok {
		o.persistSession(ctx, session)
	}

	metrics.RecordRecordingStopped()
	o.setState(StateIdle)
	o.log.Info(ctx, "recording stopped",
		logger.String("output", path),
		logger.Duration("post_winner_delay", delay))
}

func (o *Orchestrator) persistSession(ctx context.Context, session model.RecordingSession) {
	if o.store == nil {
		return
	}
	if err := o.store.SaveSession(ctx, session); err != nil {
		o.log.Error(ctx, "persisting session failed",
			logger.String("session_id", session.ID), logger.Error(err))
	}
}

// sleepCtx waits for d unless ctx ends first. Returns false on cancel.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
