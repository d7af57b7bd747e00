package orchestrator_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ringcast/ringcast/internal/adapters/obs"
	"github.com/ringcast/ringcast/internal/domain/correlate"
	"github.com/ringcast/ringcast/internal/domain/model"
	"github.com/ringcast/ringcast/internal/orchestrator"
	"github.com/smartystreets/goconvey/convey"
)

// fakeStream simulates the tool's streaming output state.
type fakeStream struct {
	mu       sync.Mutex
	status   obs.StreamStatus
	statusOK bool
}

func (f *fakeStream) set(active bool, duration float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = obs.StreamStatus{Active: active, Duration: duration}
	f.statusOK = true
}

func (f *fakeStream) StreamingStatus(context.Context) (obs.StreamStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.statusOK {
		return obs.StreamStatus{}, errors.New("not connected")
	}
	return f.status, nil
}

func TestStreamMonitor(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	convey.Convey("Given a stream monitor over an idle output", t, func() {
		stream := &fakeStream{}
		stream.set(false, 0)
		engine := correlate.New()
		monitor := orchestrator.NewStreamMonitor(stream, engine,
			orchestrator.WithStreamConnectionName("stream-pc"),
			orchestrator.WithStreamClock(func() time.Time { return now }),
		)

		monitor.Check(ctx)
		_, active := engine.ActiveSession(model.SessionStreaming)
		convey.So(active, convey.ShouldBeFalse)

		convey.Convey("When the output goes live", func() {
			// The poll sees the stream 90 seconds after it started.
			stream.set(true, 90_000)
			monitor.Check(ctx)

			convey.Convey("Then a streaming session opens, back-dated to the stream start", func() {
				session, ok := engine.ActiveSession(model.SessionStreaming)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(session.Connection, convey.ShouldEqual, "stream-pc")
				convey.So(session.Start.Equal(now.Add(-90*time.Second)), convey.ShouldBeTrue)

				ev := model.Event{ID: "s1", CapturedAt: now}
				engine.Stamp(&ev)
				convey.So(ev.StrTimestamp, convey.ShouldNotBeNil)
				convey.So(*ev.StrTimestamp, convey.ShouldAlmostEqual, 90.0, 0.001)
			})

			convey.Convey("And further polls do not open duplicates", func() {
				monitor.Check(ctx)
				monitor.Check(ctx)
				convey.So(len(engine.Sessions(model.SessionStreaming)), convey.ShouldEqual, 1)
			})

			convey.Convey("And the session closes when the output stops", func() {
				stream.set(false, 0)
				monitor.Check(ctx)

				_, ok := engine.ActiveSession(model.SessionStreaming)
				convey.So(ok, convey.ShouldBeFalse)

				sessions := engine.Sessions(model.SessionStreaming)
				convey.So(len(sessions), convey.ShouldEqual, 1)
				convey.So(sessions[0].End, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the status poll fails", func() {
			stream.set(true, 0)
			monitor.Check(ctx)
			_, ok := engine.ActiveSession(model.SessionStreaming)
			convey.So(ok, convey.ShouldBeTrue)

			stream.mu.Lock()
			stream.statusOK = false
			stream.mu.Unlock()
			monitor.Check(ctx)

			convey.Convey("Then the open session is left alone", func() {
				_, ok := engine.ActiveSession(model.SessionStreaming)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})
	})
}
