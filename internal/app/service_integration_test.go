package service_test

import (
	"context"
	"testing"
	"time"

	service "github.com/ringcast/ringcast/internal/app"
	"github.com/ringcast/ringcast/internal/domain/model"
	"github.com/ringcast/ringcast/internal/simulator"
	"github.com/smartystreets/goconvey/convey"
)

// TestService_Integration drives a whole simulated bout through the UDP
// listener and watches it come out of the subscription stream and the store.
func TestService_Integration(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		svc := service.New(testConfig(t))
		defer svc.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		convey.So(svc.Start(ctx), convey.ShouldBeNil)

		addr, ok := svc.GetStats()["udpAddr"].(string)
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(addr, convey.ShouldNotBeEmpty)

		sub := svc.Subscribe()
		defer svc.Unsubscribe(sub)

		convey.Convey("When a simulated bout is sent to the listener", func() {
			simCfg := &simulator.Config{
				Addr:         addr,
				Match:        "310",
				Phase:        "finals",
				Rounds:       1,
				RoundSeconds: 60,
				Delay:        time.Millisecond,
			}
			convey.So(simulator.Run(ctx, simCfg), convey.ShouldBeNil)

			convey.Convey("Then the subscription should carry the bout to its end", func() {
				seen := map[model.Kind]bool{}
				deadline := time.After(10 * time.Second)
				for !seen[model.KindWinner] {
					select {
					case ev := <-sub.C:
						seen[ev.Kind] = true
					case <-deadline:
						t.Fatalf("winner never arrived, saw %v", seen)
					}
				}
				convey.So(seen[model.KindMatchConfig], convey.ShouldBeTrue)
				convey.So(seen[model.KindPoints], convey.ShouldBeTrue)
				convey.So(seen[model.KindClock], convey.ShouldBeTrue)

				convey.Convey("And the tracker should reflect the bout", func() {
					snap := svc.CurrentMatch()
					convey.So(snap.Loaded(), convey.ShouldBeTrue)
					convey.So(snap.MatchNumber, convey.ShouldEqual, "310")
					convey.So(snap.Phase, convey.ShouldEqual, "finals")
					convey.So(snap.Athlete1.Name, convey.ShouldNotBeEmpty)
				})

				convey.Convey("And the bout's events should be persisted", func() {
					day := time.Now().Format("2006-01-02")
					records, err := svc.MatchEvents(ctx, day, "310")
					convey.So(err, convey.ShouldBeNil)
					convey.So(len(records), convey.ShouldBeGreaterThan, 0)
				})
			})
		})
	})
}
