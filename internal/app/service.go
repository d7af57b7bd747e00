// Package service wires the scoring ingest, match tracking, recording
// orchestration, and fan-out components into one runnable unit and
// implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ringcast/ringcast/internal/adapters/obs"
	"github.com/ringcast/ringcast/internal/adapters/repository"
	"github.com/ringcast/ringcast/internal/adapters/udp"
	"github.com/ringcast/ringcast/internal/config"
	"github.com/ringcast/ringcast/internal/domain/correlate"
	"github.com/ringcast/ringcast/internal/domain/match"
	"github.com/ringcast/ringcast/internal/domain/model"
	"github.com/ringcast/ringcast/internal/hub"
	"github.com/ringcast/ringcast/internal/orchestrator"
	"github.com/ringcast/ringcast/internal/pipeline"
	"github.com/ringcast/ringcast/internal/player"
	"github.com/ringcast/ringcast/pkg/logger"
	"github.com/ringcast/ringcast/pkg/retry"
)

// shutdownTimeout bounds the wait for the pipeline to drain on Stop.
const shutdownTimeout = 5 * time.Second

// Service owns the component lifecycle: UDP listener feeding the pipeline,
// the orchestrator driving the production tool, and the hub delivering
// events to the store and subscribers.
type Service struct {
	mu  sync.RWMutex
	cfg *config.Config

	manager   *obs.Manager
	store     *repository.SQLiteStore
	engine    *correlate.Engine
	tracker   *match.Tracker
	orch      *orchestrator.Orchestrator
	monitor   *orchestrator.StreamMonitor
	hub       *hub.Hub
	processor *pipeline.Processor
	listener  *udp.Listener
	launcher  *player.Launcher

	// State
	started bool
	cancel  context.CancelFunc

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a Service around the given configuration.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		cfg: cfg,
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting ringcast service...")

	store, err := repository.New(s.cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening event store: %w", err)
	}
	s.store = store

	s.engine = correlate.New(
		correlate.WithGapThreshold(time.Duration(s.cfg.Correlation.GapThresholdMinutes) * time.Minute),
	)
	s.tracker = match.New()

	s.manager = obs.NewManager()
	for _, conn := range s.cfg.Connections {
		s.manager.Add(obs.NewClient(conn.Name, conn.URL, conn.Password))
	}

	if s.cfg.PlayerCommand != "" {
		s.launcher = player.New(s.cfg.PlayerCommand)
	}

	var handler pipeline.Handler
	if rec, ok := s.cfg.RecordingConnection(); ok {
		client, err := s.manager.Client(rec.Name)
		if err != nil {
			return fmt.Errorf("resolving recording connection: %w", err)
		}
		orchOpts := []orchestrator.Option{
			orchestrator.WithStore(s.store),
			orchestrator.WithConnectionName(rec.Name),
			orchestrator.WithRecordingRoot(s.cfg.RecordingRoot),
			orchestrator.WithTemplate(s.cfg.FilenameTemplate),
			orchestrator.WithSettleDelay(time.Duration(s.cfg.SettleDelayMS) * time.Millisecond),
			orchestrator.WithPostWinnerDelay(time.Duration(s.cfg.PostWinnerDelayMS) * time.Millisecond),
			orchestrator.WithReplayAutoTrigger(s.cfg.Replay.AutoTrigger),
			orchestrator.WithReplayMaxWait(time.Duration(s.cfg.Replay.MaxWaitMS) * time.Millisecond),
			orchestrator.WithReplayPollInterval(time.Duration(s.cfg.Replay.PollIntervalMS) * time.Millisecond),
			orchestrator.WithReplaySeekBack(s.cfg.Replay.SeekBackSeconds),
		}
		if s.launcher != nil {
			orchOpts = append(orchOpts, orchestrator.WithPlayer(s.launcher))
		}
		s.orch = orchestrator.New(client, s.engine, orchOpts...)
		handler = s.orch
	} else {
		s.logger.Warn(ctx, "no recording connection configured, recording orchestration disabled")
	}

	if stream, ok := s.cfg.StreamingConnection(); ok {
		client, err := s.manager.Client(stream.Name)
		if err != nil {
			return fmt.Errorf("resolving streaming connection: %w", err)
		}
		s.monitor = orchestrator.NewStreamMonitor(client, s.engine,
			orchestrator.WithStreamStore(s.store),
			orchestrator.WithStreamConnectionName(stream.Name),
		)
	}

	s.hub = hub.New(s.store, hub.WithSubscriberBuffer(s.cfg.Hub.SubscriberBuffer))

	pipeOpts := []pipeline.Option{
		pipeline.WithStamper(s.engine),
		pipeline.WithPublisher(s.hub),
	}
	if handler != nil {
		pipeOpts = append(pipeOpts, pipeline.WithHandler(handler))
	}
	s.processor = pipeline.New(s.tracker, pipeOpts...)

	// The run context outlives the Start call; Stop cancels it.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.listener = udp.New(s.cfg.UDPAddr)
	events, err := s.listener.Start(runCtx)
	if err != nil {
		cancel()
		_ = s.store.Close()
		return fmt.Errorf("starting listener: %w", err)
	}

	go s.processor.Run(runCtx, events)
	go s.connectTool(runCtx)
	if s.monitor != nil {
		go s.monitor.Run(runCtx)
	}

	s.started = true
	s.logger.Info(ctx, "ringcast service started",
		logger.String("udp_addr", s.listener.Addr()),
		logger.Int("connections", len(s.cfg.Connections)),
		logger.String("recording_root", s.cfg.RecordingRoot),
	)

	return nil
}

// connectTool dials the configured control connections, retrying with
// backoff until every connection authenticates or the run context ends.
// Already-authenticated clients are left alone between attempts.
func (s *Service) connectTool(ctx context.Context) {
	if len(s.manager.Names()) == 0 {
		return
	}

	err := retry.Do(ctx, retry.Connect(), func() error {
		var firstErr error
		for _, name := range s.manager.Names() {
			client, err := s.manager.Client(name)
			if err != nil {
				continue
			}
			if client.Status() == obs.StatusAuthenticated {
				continue
			}
			if err := client.Connect(ctx); err != nil {
				s.logger.Warn(ctx, "control connection failed",
					logger.String("connection", name), logger.Error(err))
				if firstErr == nil {
					firstErr = err
				}
			}
		}
		return firstErr
	})
	if err != nil && ctx.Err() == nil {
		s.logger.Error(ctx, "control connections never came up", logger.Error(err))
	}
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping ringcast service...")

	// Closing the run context shuts the listener socket, which closes the
	// event channel and lets the pipeline drain.
	s.cancel()

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := s.processor.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn(ctx, "pipeline did not drain", logger.Error(err))
	}

	s.hub.Close()
	s.manager.DisconnectAll()

	if s.launcher != nil {
		s.launcher.Close(ctx)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "closing event store failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "ringcast service stopped")
}

// Subscribe registers a new event-stream consumer.
func (s *Service) Subscribe() *hub.Subscription {
	return s.hub.Subscribe()
}

// Unsubscribe removes an event-stream consumer.
func (s *Service) Unsubscribe(sub *hub.Subscription) {
	s.hub.Unsubscribe(sub)
}

// OrchestratorState returns the recording lifecycle state name.
func (s *Service) OrchestratorState() string {
	s.mu.RLock()
	orch := s.orch
	s.mu.RUnlock()

	if orch == nil {
		return "disabled"
	}
	return orch.State().String()
}

// ConnectionStatuses returns the status name of every control connection.
func (s *Service) ConnectionStatuses() map[string]string {
	s.mu.RLock()
	manager := s.manager
	s.mu.RUnlock()

	out := make(map[string]string)
	if manager == nil {
		return out
	}
	for name, status := range manager.Statuses() {
		out[name] = status.String()
	}
	return out
}

// MatchEvents returns the persisted events of one match on one day.
func (s *Service) MatchEvents(ctx context.Context, day, matchNumber string) ([]repository.EventRecord, error) {
	return s.store.MatchEvents(ctx, day, matchNumber)
}

// DayVideos returns the recorded sessions of one tournament day.
func (s *Service) DayVideos(ctx context.Context, day string, kind model.SessionKind) ([]repository.VideoRef, error) {
	return s.store.DayVideos(ctx, day, kind)
}

// Sessions returns the correlation engine's view of the day's sessions.
func (s *Service) Sessions(kind model.SessionKind) []model.RecordingSession {
	return s.engine.Sessions(kind)
}

// AdjustOffset applies an operator correction to a session's cumulative
// offset and persists the recomputed sessions.
func (s *Service) AdjustOffset(ctx context.Context, sessionID string, offset float64) error {
	sessions, err := s.engine.AdjustOffset(ctx, sessionID, offset)
	if err != nil {
		return err
	}
	for _, session := range sessions {
		if err := s.store.SaveSession(ctx, session); err != nil {
			return err
		}
	}
	return nil
}

// TriggerReplay saves a replay clip on operator demand and returns its path.
func (s *Service) TriggerReplay(ctx context.Context) (string, error) {
	s.mu.RLock()
	orch := s.orch
	s.mu.RUnlock()

	if orch == nil {
		return "", fmt.Errorf("recording orchestration disabled")
	}
	return orch.TriggerReplay(ctx)
}

// CurrentMatch returns the tracker's view of the loaded match.
func (s *Service) CurrentMatch() model.MatchSnapshot {
	return s.tracker.Snapshot()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":           s.started,
		"orchestratorState": s.orchestratorStateLocked(),
		"subscribers":       0,
	}

	if s.hub != nil {
		stats["subscribers"] = s.hub.Subscribers()
	}
	if s.manager != nil {
		statuses := make(map[string]string, len(s.manager.Statuses()))
		for name, status := range s.manager.Statuses() {
			statuses[name] = status.String()
		}
		stats["connections"] = statuses
	}
	if s.listener != nil {
		stats["udpAddr"] = s.listener.Addr()
	}
	return stats
}

// orchestratorStateLocked reads the state with the service lock held.
func (s *Service) orchestratorStateLocked() string {
	if s.orch == nil {
		return "disabled"
	}
	return s.orch.State().String()
}
