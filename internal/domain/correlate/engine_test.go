package correlate_test

import (
	"context"
	"os"
	"testing"
	"time"

	correlate "github.com/ringcast/ringcast/internal/domain/correlate"
	model "github.com/ringcast/ringcast/internal/domain/model"
	"github.com/ringcast/ringcast/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

const day = "2026-08-29"

func TestStampIdempotence(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given an engine with an active recording session", t, func() {
		e := correlate.New()
		start := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
		e.StartSession(ctx, model.SessionRecording, "recording", day, start, "/videos", "tpl")

		convey.Convey("When stamping an event captured 30s in", func() {
			ev := model.Event{ID: "e1", Kind: model.KindPoints, CapturedAt: start.Add(30 * time.Second)}
			e.Stamp(&ev)

			convey.Convey("Then the recording offset is set once", func() {
				convey.So(ev.RecTimestamp, convey.ShouldNotBeNil)
				convey.So(*ev.RecTimestamp, convey.ShouldAlmostEqual, 30.0, 0.001)
				convey.So(ev.StrTimestamp, convey.ShouldBeNil)
			})

			convey.Convey("And stamping again is a no-op even after a restart", func() {
				first := *ev.RecTimestamp
				e.EndSession(ctx, model.SessionRecording, start.Add(time.Minute))
				e.StartSession(ctx, model.SessionRecording, "recording", day, start.Add(10*time.Minute), "/videos", "tpl")
				e.Stamp(&ev)

				convey.So(*ev.RecTimestamp, convey.ShouldEqual, first)
			})
		})

		convey.Convey("When no streaming session is active", func() {
			ev := model.Event{ID: "e2", CapturedAt: start.Add(time.Second)}
			e.Stamp(&ev)

			convey.So(ev.StrTimestamp, convey.ShouldBeNil)
		})

		convey.Convey("When a streaming session is also active", func() {
			e.StartSession(ctx, model.SessionStreaming, "streaming", day, start.Add(5*time.Second), "", "")
			ev := model.Event{ID: "e3", CapturedAt: start.Add(15 * time.Second)}
			e.Stamp(&ev)

			convey.So(ev.RecTimestamp, convey.ShouldNotBeNil)
			convey.So(ev.StrTimestamp, convey.ShouldNotBeNil)
			convey.So(*ev.StrTimestamp, convey.ShouldAlmostEqual, 10.0, 0.001)
		})
	})
}

func TestStampAfterSessionEnd(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a recording session that has ended", t, func() {
		e := correlate.New()
		start := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
		end := start.Add(5 * time.Minute)

		e.StartSession(ctx, model.SessionRecording, "recording", day, start, "/videos", "tpl")
		e.EndSession(ctx, model.SessionRecording, end)

		convey.Convey("When stamping an event captured before the end", func() {
			// The stop path holds the session open past the winner, so
			// events from that window reach the stamp stage late.
			ev := model.Event{ID: "t1", Kind: model.KindCurrentScores, CapturedAt: end.Add(-10 * time.Second)}
			e.Stamp(&ev)

			convey.Convey("Then it is stamped against the closed session", func() {
				convey.So(ev.RecTimestamp, convey.ShouldNotBeNil)
				convey.So(*ev.RecTimestamp, convey.ShouldAlmostEqual, (5*time.Minute - 10*time.Second).Seconds(), 0.001)
			})
		})

		convey.Convey("When stamping an event captured after the end", func() {
			ev := model.Event{ID: "t2", CapturedAt: end.Add(10 * time.Second)}
			e.Stamp(&ev)

			convey.Convey("Then no offset is written", func() {
				convey.So(ev.RecTimestamp, convey.ShouldBeNil)
			})
		})
	})
}

func TestInterruptionHandling(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given an engine with a 5 minute gap threshold", t, func() {
		e := correlate.New(correlate.WithGapThreshold(5 * time.Minute))
		start := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)

		first := e.StartSession(ctx, model.SessionStreaming, "streaming", day, start, "", "")
		convey.So(first.Number, convey.ShouldEqual, 1)
		convey.So(first.CumulativeOffset, convey.ShouldEqual, 0.0)

		end := start.Add(30 * time.Minute)
		e.EndSession(ctx, model.SessionStreaming, end)

		convey.Convey("When the next session starts after a gap over the threshold", func() {
			gap := 10 * time.Minute
			second := e.StartSession(ctx, model.SessionStreaming, "streaming", day, end.Add(gap), "", "")

			convey.Convey("Then the session number increments and the gap accumulates", func() {
				convey.So(second.Number, convey.ShouldEqual, 2)
				convey.So(second.CumulativeOffset, convey.ShouldAlmostEqual, first.CumulativeOffset+gap.Seconds(), 0.001)
			})

			convey.Convey("And offsets across the restart keep increasing", func() {
				firstOfSecond := model.Event{ID: "b", CapturedAt: end.Add(gap)}
				e.Stamp(&firstOfSecond)
				later := model.Event{ID: "c", CapturedAt: end.Add(gap + time.Minute)}
				e.Stamp(&later)

				convey.So(firstOfSecond.StrTimestamp, convey.ShouldNotBeNil)
				convey.So(*firstOfSecond.StrTimestamp, convey.ShouldAlmostEqual, gap.Seconds(), 0.001)
				convey.So(*later.StrTimestamp, convey.ShouldBeGreaterThan, *firstOfSecond.StrTimestamp)
			})
		})

		convey.Convey("When the next session starts within the threshold", func() {
			second := e.StartSession(ctx, model.SessionStreaming, "streaming", day, end.Add(time.Minute), "", "")

			convey.Convey("Then the number still increments but nothing accumulates", func() {
				convey.So(second.Number, convey.ShouldEqual, 2)
				convey.So(second.CumulativeOffset, convey.ShouldEqual, first.CumulativeOffset)
			})
		})

		convey.Convey("When a new tournament day begins", func() {
			next := e.StartSession(ctx, model.SessionStreaming, "streaming", "2026-08-30", end.Add(18*time.Hour), "", "")

			convey.Convey("Then numbering and offsets start over", func() {
				convey.So(next.Number, convey.ShouldEqual, 1)
				convey.So(next.CumulativeOffset, convey.ShouldEqual, 0.0)
			})
		})
	})
}

func TestManualAdjustment(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given three sessions separated by interruptions", t, func() {
		e := correlate.New(correlate.WithGapThreshold(5 * time.Minute))
		base := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)

		s1 := e.StartSession(ctx, model.SessionRecording, "recording", day, base, "", "")
		e.EndSession(ctx, model.SessionRecording, base.Add(10*time.Minute))
		s2 := e.StartSession(ctx, model.SessionRecording, "recording", day, base.Add(20*time.Minute), "", "")
		e.EndSession(ctx, model.SessionRecording, base.Add(30*time.Minute))
		s3 := e.StartSession(ctx, model.SessionRecording, "recording", day, base.Add(40*time.Minute), "", "")

		convey.So(s2.CumulativeOffset, convey.ShouldAlmostEqual, 600.0, 0.001)
		convey.So(s3.CumulativeOffset, convey.ShouldAlmostEqual, 1200.0, 0.001)

		convey.Convey("When the operator corrects the second session's offset", func() {
			updated, err := e.AdjustOffset(ctx, s2.ID, 700.0)
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then subsequent sessions are recomputed", func() {
				convey.So(len(updated), convey.ShouldEqual, 2)
				convey.So(updated[0].ID, convey.ShouldEqual, s2.ID)
				convey.So(updated[0].CumulativeOffset, convey.ShouldAlmostEqual, 700.0, 0.001)
				convey.So(updated[1].ID, convey.ShouldEqual, s3.ID)
				convey.So(updated[1].CumulativeOffset, convey.ShouldAlmostEqual, 1300.0, 0.001)
			})

			convey.Convey("And the first session is untouched", func() {
				sessions := e.Sessions(model.SessionRecording)
				convey.So(sessions[0].ID, convey.ShouldEqual, s1.ID)
				convey.So(sessions[0].CumulativeOffset, convey.ShouldEqual, 0.0)
			})
		})

		convey.Convey("When the session id is unknown", func() {
			_, err := e.AdjustOffset(ctx, "nope", 1.0)
			convey.So(err, convey.ShouldEqual, correlate.ErrSessionNotFound)
		})
	})
}
