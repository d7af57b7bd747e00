package orchestrator

import (
	"context"
	"time"

	"github.com/ringcast/ringcast/internal/adapters/repository"
	"github.com/ringcast/ringcast/pkg/logger"
	"github.com/ringcast/ringcast/pkg/retry"
)

// Option applies a configuration option to the Orchestrator.
type Option func(*Orchestrator)

// WithStore sets the persistence gateway for sessions and replay links.
func WithStore(store repository.Store) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// WithPlayer sets the external replay player.
func WithPlayer(player ReplayPlayer) Option {
	return func(o *Orchestrator) {
		o.player = player
	}
}

// WithConnectionName names the control connection in sessions and metrics.
func WithConnectionName(name string) Option {
	return func(o *Orchestrator) {
		if name != "" {
			o.connectionName = name
		}
	}
}

// WithRecordingRoot sets the directory tournament-day folders live under.
func WithRecordingRoot(root string) Option {
	return func(o *Orchestrator) {
		o.recordingRoot = root
	}
}

// WithTemplate sets the operator-facing filename template.
func WithTemplate(template string) Option {
	return func(o *Orchestrator) {
		if template != "" {
			o.template = template
		}
	}
}

// WithSettleDelay sets the pause between the template push and the
// recording start.
func WithSettleDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.settleDelay = d
		}
	}
}

// WithPostWinnerDelay sets how long recording continues after the winner
// is declared.
func WithPostWinnerDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.postWinnerDelay = d
		}
	}
}

// WithReplayAutoTrigger enables saving a replay clip on every challenge.
func WithReplayAutoTrigger(enabled bool) Option {
	return func(o *Orchestrator) {
		o.replayAutoTrigger = enabled
	}
}

// WithReplayMaxWait bounds the wait for a saved clip to appear.
func WithReplayMaxWait(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.replayMaxWait = d
		}
	}
}

// WithReplayPollInterval sets the clip-path polling cadence.
func WithReplayPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.replayPollInterval = d
		}
	}
}

// WithReplaySeekBack sets how many seconds before the end of the clip
// playback starts.
func WithReplaySeekBack(seconds float64) Option {
	return func(o *Orchestrator) {
		if seconds >= 0 {
			o.replaySeekBack = seconds
		}
	}
}

// WithRetryPolicy sets the backoff policy for control-protocol calls.
func WithRetryPolicy(cfg retry.Config) Option {
	return func(o *Orchestrator) {
		o.retryCfg = cfg
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithSleeper overrides the delay primitive.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) bool) Option {
	return func(o *Orchestrator) {
		if sleep != nil {
			o.sleep = sleep
		}
	}
}

// WithLogger sets the logger used by the orchestrator.
func WithLogger(log logger.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}
