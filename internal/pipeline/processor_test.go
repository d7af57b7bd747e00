package pipeline_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ringcast/ringcast/internal/domain/correlate"
	"github.com/ringcast/ringcast/internal/domain/match"
	"github.com/ringcast/ringcast/internal/domain/model"
	"github.com/ringcast/ringcast/internal/pipeline"
	"github.com/ringcast/ringcast/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// capture records everything that reaches the downstream stages.
type capture struct {
	mu        sync.Mutex
	handled   []model.Event
	published []model.Event
	days      []string
	matches   []string
}

func (c *capture) HandleEvent(_ context.Context, ev model.Event, _ model.MatchSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handled = append(c.handled, ev)
}

func (c *capture) Publish(_ context.Context, ev model.Event, matchNumber, day string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, ev)
	c.matches = append(c.matches, matchNumber)
	c.days = append(c.days, day)
}

func (c *capture) publishedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.published)
}

func run(t *testing.T, p *pipeline.Processor, events []model.Event) {
	t.Helper()
	ch := make(chan model.Event, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(context.Background(), ch)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("processor did not drain the channel")
	}
}

func TestProcessor(t *testing.T) {
	at := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	convey.Convey("Given a processor with all stages wired", t, func() {
		tracker := match.New()
		engine := correlate.New()
		sink := &capture{}
		p := pipeline.New(tracker,
			pipeline.WithStamper(engine),
			pipeline.WithHandler(sink),
			pipeline.WithPublisher(sink))

		convey.Convey("Events flow through in arrival order", func() {
			events := []model.Event{
				{ID: "e1", Kind: model.KindFightLoaded, CapturedAt: at},
				{ID: "e2", Kind: model.KindMatchConfig, CapturedAt: at,
					Payload: model.MatchConfig{Number: "101", Rounds: 3}},
				{ID: "e3", Kind: model.KindPoints, CapturedAt: at,
					Payload: model.Points{Athlete: 1, Code: 3}},
			}
			run(t, p, events)

			convey.So(len(sink.published), convey.ShouldEqual, 3)
			convey.So(sink.published[0].ID, convey.ShouldEqual, "e1")
			convey.So(sink.published[2].ID, convey.ShouldEqual, "e3")

			convey.Convey("And each event is categorized before delivery", func() {
				convey.So(sink.published[2].Category, convey.ShouldEqual, model.CategoryHead)
			})

			convey.Convey("And the publisher sees the tracked match and day", func() {
				convey.So(sink.matches[2], convey.ShouldEqual, "101")
				convey.So(sink.days[2], convey.ShouldEqual, "2026-08-29")
			})
		})

		convey.Convey("Events are stamped when a session is active", func() {
			engine.StartSession(context.Background(), model.SessionRecording,
				"recording", "2026-08-29", at, "", "")

			run(t, p, []model.Event{
				{ID: "e1", Kind: model.KindPoints, CapturedAt: at.Add(30 * time.Second),
					Payload: model.Points{Athlete: 1, Code: 1}},
			})

			convey.So(sink.published[0].RecTimestamp, convey.ShouldNotBeNil)
			convey.So(*sink.published[0].RecTimestamp, convey.ShouldAlmostEqual, 30.0, 0.001)
		})

		convey.Convey("Raw events pass through without breaking anything", func() {
			run(t, p, []model.Event{
				{ID: "e1", Kind: model.KindRaw, Raw: "???", CapturedAt: at},
			})

			convey.So(sink.publishedCount(), convey.ShouldEqual, 1)
			convey.So(sink.published[0].Category, convey.ShouldEqual, model.CategoryOther)
		})
	})
}

func TestProcessorShutdown(t *testing.T) {
	convey.Convey("Given a running processor", t, func() {
		p := pipeline.New(match.New())
		ch := make(chan model.Event)
		go p.Run(context.Background(), ch)

		convey.Convey("Shutdown returns once the loop exits", func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			convey.So(p.Shutdown(ctx), convey.ShouldBeNil)
		})
	})
}
