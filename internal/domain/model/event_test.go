package model_test

import (
	"testing"
	"time"

	model "github.com/ringcast/ringcast/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestKindString(t *testing.T) {
	convey.Convey("Given the wire message kinds", t, func() {
		convey.Convey("Then each kind has a stable name", func() {
			convey.So(model.KindPoints.String(), convey.ShouldEqual, "points")
			convey.So(model.KindHitLevel.String(), convey.ShouldEqual, "hit_level")
			convey.So(model.KindBreak.String(), convey.ShouldEqual, "break")
			convey.So(model.KindClock.String(), convey.ShouldEqual, "clock")
			convey.So(model.KindFightLoaded.String(), convey.ShouldEqual, "fight_loaded")
			convey.So(model.KindRaw.String(), convey.ShouldEqual, "raw")
		})

		convey.Convey("Then an out-of-range kind is reported as unknown", func() {
			convey.So(model.Kind(99).String(), convey.ShouldEqual, "unknown")
		})
	})
}

func TestCategoryString(t *testing.T) {
	convey.Convey("Given the event categories", t, func() {
		convey.So(model.CategoryPunch.String(), convey.ShouldEqual, "punch")
		convey.So(model.CategoryHead.String(), convey.ShouldEqual, "head")
		convey.So(model.CategoryTechnicalBody.String(), convey.ShouldEqual, "technical_body")
		convey.So(model.CategoryTechnicalHead.String(), convey.ShouldEqual, "technical_head")
		convey.So(model.CategoryKick.String(), convey.ShouldEqual, "kick")
		convey.So(model.CategoryReferee.String(), convey.ShouldEqual, "referee")
		convey.So(model.CategoryOther.String(), convey.ShouldEqual, "other")
	})
}

func TestRecordingSession(t *testing.T) {
	convey.Convey("Given a recording session", t, func() {
		start := time.Now()
		s := model.RecordingSession{
			ID:            "session-1",
			Connection:    "recording",
			Kind:          model.SessionRecording,
			Start:         start,
			Number:        1,
			TournamentDay: "2026-08-29",
		}

		convey.Convey("Then it is active while End is unset", func() {
			convey.So(s.Active(), convey.ShouldBeTrue)
		})

		convey.Convey("When the session is closed", func() {
			end := start.Add(10 * time.Minute)
			s.End = &end

			convey.Convey("Then it is no longer active", func() {
				convey.So(s.Active(), convey.ShouldBeFalse)
			})
		})

		convey.Convey("Then session kinds have stable names", func() {
			convey.So(model.SessionRecording.String(), convey.ShouldEqual, "recording")
			convey.So(model.SessionStreaming.String(), convey.ShouldEqual, "streaming")
			convey.So(model.SessionReplayBuffer.String(), convey.ShouldEqual, "replay_buffer")
		})
	})
}

func TestMatchSnapshot(t *testing.T) {
	convey.Convey("Given a match snapshot", t, func() {
		convey.Convey("When no fight has been loaded", func() {
			snap := model.MatchSnapshot{}

			convey.Convey("Then it reports not loaded and has nil round/time", func() {
				convey.So(snap.Loaded(), convey.ShouldBeFalse)
				convey.So(snap.Round, convey.ShouldBeNil)
				convey.So(snap.TimeRemaining, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a bout is configured", func() {
			round := 2
			remaining := 90 * time.Second
			snap := model.MatchSnapshot{
				MatchNumber:   "101",
				Athlete1:      model.AthleteInfo{Name: "Smith", Country: "USA"},
				Athlete2:      model.AthleteInfo{Name: "Jones", Country: "CAN"},
				RoundDuration: 2 * time.Minute,
				Round:         &round,
				TimeRemaining: &remaining,
				ClockRunning:  true,
			}

			convey.Convey("Then it reports loaded with populated fields", func() {
				convey.So(snap.Loaded(), convey.ShouldBeTrue)
				convey.So(*snap.Round, convey.ShouldEqual, 2)
				convey.So(*snap.TimeRemaining, convey.ShouldEqual, 90*time.Second)
				convey.So(snap.Athlete1.Country, convey.ShouldEqual, "USA")
			})
		})
	})
}
