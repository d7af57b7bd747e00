package pss_test

import (
	"testing"
	"time"

	model "github.com/ringcast/ringcast/internal/domain/model"
	pss "github.com/ringcast/ringcast/internal/domain/pss"
	"github.com/smartystreets/goconvey/convey"
)

func decode(s string) model.Event {
	return pss.Decode([]byte(s), time.Now())
}

func TestDecodePoints(t *testing.T) {
	convey.Convey("Given point datagrams", t, func() {
		convey.Convey("When decoding a head point for athlete 1", func() {
			ev := decode("pt1;3;")

			convey.So(ev.Kind, convey.ShouldEqual, model.KindPoints)
			p, ok := ev.Payload.(model.Points)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(p.Athlete, convey.ShouldEqual, 1)
			convey.So(p.Code, convey.ShouldEqual, 3)
		})

		convey.Convey("When decoding a point for athlete 2", func() {
			ev := decode("pt2;5;")

			p := ev.Payload.(model.Points)
			convey.So(p.Athlete, convey.ShouldEqual, 2)
			convey.So(p.Code, convey.ShouldEqual, 5)
		})

		convey.Convey("When the point code is out of range", func() {
			ev := decode("pt1;9;")

			convey.So(ev.Kind, convey.ShouldEqual, model.KindRaw)
			convey.So(ev.Payload, convey.ShouldBeNil)
		})
	})
}

func TestDecodeHitLevel(t *testing.T) {
	convey.Convey("Given hit-level datagrams", t, func() {
		ev := decode("hl2;50;")

		convey.So(ev.Kind, convey.ShouldEqual, model.KindHitLevel)
		hl := ev.Payload.(model.HitLevel)
		convey.So(hl.Athlete, convey.ShouldEqual, 2)
		convey.So(hl.Level, convey.ShouldEqual, 50)

		convey.Convey("When the level is out of range it becomes raw", func() {
			convey.So(decode("hl1;0;").Kind, convey.ShouldEqual, model.KindRaw)
			convey.So(decode("hl1;101;").Kind, convey.ShouldEqual, model.KindRaw)
		})
	})
}

func TestDecodeClockAndBreak(t *testing.T) {
	convey.Convey("Given clock and break datagrams", t, func() {
		convey.Convey("When decoding a clock start", func() {
			ev := decode("clk;02:00;start;")

			convey.So(ev.Kind, convey.ShouldEqual, model.KindClock)
			c := ev.Payload.(model.Clock)
			convey.So(c.Action, convey.ShouldEqual, model.ClockStart)
			convey.So(c.Time, convey.ShouldEqual, 2*time.Minute)
			convey.So(c.Display, convey.ShouldEqual, "02:00")
		})

		convey.Convey("When decoding a clock stop", func() {
			c := decode("clk;01:23;stop;").Payload.(model.Clock)
			convey.So(c.Action, convey.ShouldEqual, model.ClockStop)
			convey.So(c.Time, convey.ShouldEqual, time.Minute+23*time.Second)
		})

		convey.Convey("When decoding an end-of-break marker", func() {
			ev := decode("brk;0:00;stopEnd;")

			convey.So(ev.Kind, convey.ShouldEqual, model.KindBreak)
			b := ev.Payload.(model.Break)
			convey.So(b.Time, convey.ShouldEqual, time.Duration(0))
			convey.So(b.Phase, convey.ShouldEqual, "stopEnd")
		})

		convey.Convey("When the clock action is unknown it becomes raw", func() {
			convey.So(decode("clk;02:00;pause;").Kind, convey.ShouldEqual, model.KindRaw)
		})
	})
}

func TestDecodeChallenge(t *testing.T) {
	convey.Convey("Given challenge datagrams", t, func() {
		convey.Convey("When a challenge is opened", func() {
			ch := decode("ch1;").Payload.(model.Challenge)
			convey.So(ch.Source, convey.ShouldEqual, 1)
			convey.So(ch.Decided, convey.ShouldBeFalse)
		})

		convey.Convey("When a challenge is accepted", func() {
			ch := decode("ch2;accepted;").Payload.(model.Challenge)
			convey.So(ch.Source, convey.ShouldEqual, 2)
			convey.So(ch.Decided, convey.ShouldBeTrue)
			convey.So(ch.Accepted, convey.ShouldBeTrue)
		})

		convey.Convey("When a referee challenge is rejected", func() {
			ch := decode("ch0;rejected;").Payload.(model.Challenge)
			convey.So(ch.Source, convey.ShouldEqual, 0)
			convey.So(ch.Decided, convey.ShouldBeTrue)
			convey.So(ch.Accepted, convey.ShouldBeFalse)
		})
	})
}

func TestDecodeMatchSetup(t *testing.T) {
	convey.Convey("Given match setup datagrams", t, func() {
		convey.Convey("When decoding a match config", func() {
			ev := decode("mch;101;F-58kg;3;120;down;")

			convey.So(ev.Kind, convey.ShouldEqual, model.KindMatchConfig)
			cfg := ev.Payload.(model.MatchConfig)
			convey.So(cfg.Number, convey.ShouldEqual, "101")
			convey.So(cfg.Phase, convey.ShouldEqual, "F-58kg")
			convey.So(cfg.Rounds, convey.ShouldEqual, 3)
			convey.So(cfg.RoundDuration, convey.ShouldEqual, 2*time.Minute)
			convey.So(cfg.CountdownFormat, convey.ShouldEqual, "down")
		})

		convey.Convey("When decoding athlete identities", func() {
			a1 := decode("at1;Smith;USA;").Payload.(model.Athletes)
			a2 := decode("at2;Jones;CAN;").Payload.(model.Athletes)

			convey.So(a1.Slot, convey.ShouldEqual, 1)
			convey.So(a1.Name, convey.ShouldEqual, "Smith")
			convey.So(a1.Country, convey.ShouldEqual, "USA")
			convey.So(a2.Slot, convey.ShouldEqual, 2)
			convey.So(a2.Name, convey.ShouldEqual, "Jones")
		})

		convey.Convey("When decoding lifecycle markers", func() {
			convey.So(decode("rdy;").Kind, convey.ShouldEqual, model.KindFightReady)
			convey.So(decode("load;").Kind, convey.ShouldEqual, model.KindFightLoaded)
		})

		convey.Convey("When decoding score echoes", func() {
			sc := decode("sc2;5;3;").Payload.(model.Scores)
			convey.So(sc.Round, convey.ShouldEqual, 2)
			convey.So(sc.Athlete1, convey.ShouldEqual, 5)
			convey.So(sc.Athlete2, convey.ShouldEqual, 3)

			cur := decode("cur;7;4;").Payload.(model.CurrentScores)
			convey.So(cur.Athlete1, convey.ShouldEqual, 7)
			convey.So(cur.Athlete2, convey.ShouldEqual, 4)
		})

		convey.Convey("When decoding winner datagrams", func() {
			w := decode("win;BLUE;").Payload.(model.Winner)
			convey.So(w.Color, convey.ShouldEqual, "BLUE")

			wr := decode("wrd;RED;2-1;").Payload.(model.WinnerRounds)
			convey.So(wr.Color, convey.ShouldEqual, "RED")
			convey.So(wr.Rounds, convey.ShouldEqual, "2-1")
		})
	})
}

func TestDecodeRobustness(t *testing.T) {
	convey.Convey("Given malformed or unknown datagrams", t, func() {
		cases := []string{
			"",
			";",
			"bogus;1;2;",
			"pt1;",
			"pt1;abc;",
			"clk;nonsense;start;",
			"brk;0:00;",
			"rnd;0;",
			"rnd;-1;",
			"mch;",
			"sc0;1;2;",
			"scx;1;2;",
		}

		convey.Convey("Then every one decodes to a raw event without panicking", func() {
			for _, c := range cases {
				ev := decode(c)
				convey.So(ev.Kind, convey.ShouldEqual, model.KindRaw)
				convey.So(ev.Payload, convey.ShouldBeNil)
				convey.So(ev.ID, convey.ShouldNotBeEmpty)
			}
		})

		convey.Convey("Then the raw text is preserved for diagnostics", func() {
			ev := decode("bogus;1;2;")
			convey.So(ev.Raw, convey.ShouldEqual, "bogus;1;2;")
		})
	})
}

func TestParseClock(t *testing.T) {
	convey.Convey("Given display clock values", t, func() {
		convey.Convey("Then well-formed values parse", func() {
			d, err := pss.ParseClock("02:00")
			convey.So(err, convey.ShouldBeNil)
			convey.So(d, convey.ShouldEqual, 2*time.Minute)

			d, err = pss.ParseClock("0:07")
			convey.So(err, convey.ShouldBeNil)
			convey.So(d, convey.ShouldEqual, 7*time.Second)
		})

		convey.Convey("Then malformed values fail with a typed error", func() {
			for _, v := range []string{"", "200", "xx:yy", "1:60", "-1:00"} {
				_, err := pss.ParseClock(v)
				convey.So(err, convey.ShouldNotBeNil)
			}
		})
	})
}
