package orchestrator

import (
	"context"
	"time"

	"github.com/ringcast/ringcast/internal/adapters/obs"
	"github.com/ringcast/ringcast/internal/adapters/repository"
	"github.com/ringcast/ringcast/internal/domain/correlate"
	"github.com/ringcast/ringcast/internal/domain/model"
	"github.com/ringcast/ringcast/pkg/logger"
)

// StreamingClient is the subset of the control protocol the stream monitor
// drives. The obs client satisfies it; tests substitute a fake.
type StreamingClient interface {
	StreamingStatus(ctx context.Context) (obs.StreamStatus, error)
}

// Default stream monitor configuration constants.
const (
	defaultStreamPollInterval = 5 * time.Second
	defaultStreamConnection   = "streaming"
)

// StreamMonitor mirrors the tool's streaming output into correlation
// sessions. Streaming is started and stopped by the operator on the tool
// itself, so the monitor observes rather than commands: it polls the
// output state and opens or closes the streaming session accordingly.
type StreamMonitor struct {
	client StreamingClient
	engine *correlate.Engine
	store  repository.Store
	log    logger.Logger
	now    func() time.Time

	connectionName string
	pollInterval   time.Duration
}

// StreamMonitorOption applies a configuration option to the StreamMonitor.
type StreamMonitorOption func(*StreamMonitor)

// WithStreamStore sets the persistence gateway for streaming sessions.
func WithStreamStore(store repository.Store) StreamMonitorOption {
	return func(m *StreamMonitor) {
		m.store = store
	}
}

// WithStreamConnectionName names the streaming connection in sessions.
func WithStreamConnectionName(name string) StreamMonitorOption {
	return func(m *StreamMonitor) {
		if name != "" {
			m.connectionName = name
		}
	}
}

// WithStreamPollInterval sets the output-state polling cadence.
func WithStreamPollInterval(d time.Duration) StreamMonitorOption {
	return func(m *StreamMonitor) {
		if d > 0 {
			m.pollInterval = d
		}
	}
}

// WithStreamClock overrides the time source.
func WithStreamClock(now func() time.Time) StreamMonitorOption {
	return func(m *StreamMonitor) {
		if now != nil {
			m.now = now
		}
	}
}

// WithStreamLogger sets the logger used by the monitor.
func WithStreamLogger(log logger.Logger) StreamMonitorOption {
	return func(m *StreamMonitor) {
		if log != nil {
			m.log = log
		}
	}
}

// NewStreamMonitor creates a monitor observing the given streaming
// connection into the correlation engine.
func NewStreamMonitor(client StreamingClient, engine *correlate.Engine, opts ...StreamMonitorOption) *StreamMonitor {
	m := &StreamMonitor{
		client:         client,
		engine:         engine,
		now:            time.Now,
		connectionName: defaultStreamConnection,
		pollInterval:   defaultStreamPollInterval,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	if m.log == nil {
		m.log = logger.Get().Named("stream-monitor")
	}
	return m
}

// Run polls until the context ends.
func (m *StreamMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		m.Check(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Check reconciles the correlation engine with the tool's streaming
// output state once. Poll failures leave the session state untouched; a
// disconnected tool does not mean the stream stopped.
func (m *StreamMonitor) Check(ctx context.Context) {
	status, err := m.client.StreamingStatus(ctx)
	if err != nil {
		m.log.Debug(ctx, "streaming status unavailable", logger.Error(err))
		return
	}

	_, active := m.engine.ActiveSession(model.SessionStreaming)

	switch {
	case status.Active && !active:
		now := m.now()
		// The output has been rolling for status.Duration already; the
		// session starts when the stream did, not when the poll saw it.
		start := now.Add(-time.Duration(status.Duration * float64(time.Millisecond)))
		day := now.Format("2006-01-02")

		session := m.engine.StartSession(ctx, model.SessionStreaming, m.connectionName, day, start, "", "")
		m.persist(ctx, session)
		m.log.Info(ctx, "streaming session opened",
			logger.String("connection", m.connectionName),
			logger.Int("session_number", session.Number))

	case !status.Active && active:
		if session, ok := m.engine.EndSession(ctx, model.SessionStreaming, m.now()); ok {
			m.persist(ctx, session)
			m.log.Info(ctx, "streaming session closed",
				logger.String("connection", m.connectionName),
				logger.Int("session_number", session.Number))
		}
	}
}

func (m *StreamMonitor) persist(ctx context.Context, session model.RecordingSession) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveSession(ctx, session); err != nil {
		m.log.Error(ctx, "persisting streaming session failed",
			logger.String("session_id", session.ID), logger.Error(err))
	}
}
