// Package pipeline moves decoded events through the processing stages.
// A single processor consumes the listener channel so events are applied
// in arrival order; everything that could block for long runs behind it.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ringcast/ringcast/internal/domain/category"
	"github.com/ringcast/ringcast/internal/domain/match"
	"github.com/ringcast/ringcast/internal/domain/model"
	"github.com/ringcast/ringcast/pkg/logger"
	"github.com/ringcast/ringcast/pkg/metrics"
)

// Tracker applies an event to the match state.
type Tracker interface {
	Apply(ctx context.Context, ev model.Event) match.Transition
}

// Stamper writes capture-to-video offsets onto an event.
type Stamper interface {
	Stamp(ev *model.Event)
}

// Handler reacts to an event and the state it produced.
type Handler interface {
	HandleEvent(ctx context.Context, ev model.Event, snap model.MatchSnapshot)
}

// Publisher delivers the finished event downstream.
type Publisher interface {
	Publish(ctx context.Context, ev model.Event, matchNumber, day string)
}

// Processor runs the per-event stage sequence: categorize, track, stamp,
// orchestrate, publish.
type Processor struct {
	tracker   Tracker
	stamper   Stamper
	handler   Handler
	publisher Publisher
	name      string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	log logger.Logger
}

// New creates a processor around the given tracker.
func New(tracker Tracker, opts ...Option) *Processor {
	p := &Processor{
		tracker:  tracker,
		name:     "processor",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(p)
	}

	if p.log == nil {
		p.log = logger.Get().Named(p.name)
	}
	return p
}

// Run consumes events until the channel closes or ctx ends.
func (p *Processor) Run(ctx context.Context, events <-chan model.Event) {
	defer close(p.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			p.processEvent(ctx, ev)
		}
	}
}

// Shutdown gracefully stops the processor.
func (p *Processor) Shutdown(ctx context.Context) error {
	close(p.shutdown)

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		p.log.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processEvent runs one event through every stage. Stage failures are
// contained; the stream must keep flowing no matter what arrives.
func (p *Processor) processEvent(ctx context.Context, ev model.Event) {
	start := time.Now()
	defer func() {
		metrics.RecordEventProcessingLatency(time.Since(start).Seconds())
	}()

	ev.Category = category.Categorize(ev)
	metrics.RecordEventCategory(ev.Category.String())

	tr := p.tracker.Apply(ctx, ev)

	if p.stamper != nil {
		p.stamper.Stamp(&ev)
	}

	if p.handler != nil {
		p.handler.HandleEvent(ctx, ev, tr.Snapshot)
	}

	if p.publisher != nil {
		day := ev.CapturedAt.Format("2006-01-02")
		p.publisher.Publish(ctx, ev, tr.Snapshot.MatchNumber, day)
	}
}
