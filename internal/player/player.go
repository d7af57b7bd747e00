// Package player launches an external video player on saved replay files.
// The player binary is operator-configured and treated as opaque.
package player

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"sync"

	"github.com/ringcast/ringcast/pkg/logger"
)

// Launcher starts and stops replay playback. At most one playback process
// runs at a time; opening a new replay closes the previous one.
type Launcher struct {
	command string
	log     logger.Logger

	mu  sync.Mutex
	cmd *exec.Cmd
}

// Option applies a configuration option to the Launcher.
type Option func(*Launcher)

// WithLogger sets the logger used by the launcher.
func WithLogger(log logger.Logger) Option {
	return func(l *Launcher) {
		if log != nil {
			l.log = log
		}
	}
}

// New creates a launcher that runs the given player command.
func New(command string, opts ...Option) *Launcher {
	l := &Launcher{
		command: command,
	}

	// Apply all options
	for _, opt := range opts {
		opt(l)
	}

	if l.log == nil {
		l.log = logger.Get().Named("player")
	}
	return l
}

// Open starts playback of path seeked to seekOffset seconds. Any playback
// already running is closed first.
func (l *Launcher) Open(ctx context.Context, path string, seekOffset float64) error {
	if l.command == "" {
		return fmt.Errorf("no player command configured")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeLocked(ctx)

	cmd := exec.Command(l.command, path, "--start", strconv.FormatFloat(seekOffset, 'f', 1, 64))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting player: %w", err)
	}
	l.cmd = cmd

	// Reap the process so it never lingers as a zombie.
	go func() { _ = cmd.Wait() }()

	l.log.Info(ctx, "replay opened",
		logger.String("path", path),
		logger.Float64("seek_offset", seekOffset))
	return nil
}

// Close stops the running playback. Closing when nothing is playing is a
// no-op, so callers can close on every trigger without bookkeeping.
func (l *Launcher) Close(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeLocked(ctx)
}

func (l *Launcher) closeLocked(ctx context.Context) {
	if l.cmd == nil || l.cmd.Process == nil {
		l.cmd = nil
		return
	}
	if err := l.cmd.Process.Kill(); err != nil {
		l.log.Debug(ctx, "player already gone", logger.Error(err))
	}
	l.cmd = nil
}

// Playing reports whether a playback process has been started and not yet
// closed by the launcher.
func (l *Launcher) Playing() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cmd != nil
}
