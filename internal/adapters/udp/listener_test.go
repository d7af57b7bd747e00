package udp_test

import (
	"context"
	"net"
	"os"
	"testing"
	"time"

	"github.com/ringcast/ringcast/internal/adapters/udp"
	"github.com/ringcast/ringcast/internal/domain/model"
	"github.com/ringcast/ringcast/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

func sendDatagrams(t *testing.T, addr string, payloads ...string) {
	t.Helper()
	conn, err := net.Dial("udp", addr)
	if err != nil {
		t.Fatalf("dialing listener: %v", err)
	}
	defer conn.Close()
	for _, p := range payloads {
		if _, err := conn.Write([]byte(p)); err != nil {
			t.Fatalf("sending datagram: %v", err)
		}
	}
}

func receive(t *testing.T, events <-chan model.Event, n int) []model.Event {
	t.Helper()
	var got []model.Event
	deadline := time.After(2 * time.Second)
	for len(got) < n {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("channel closed after %d events, wanted %d", len(got), n)
			}
			got = append(got, ev)
		case <-deadline:
			t.Fatalf("timed out after %d events, wanted %d", len(got), n)
		}
	}
	return got
}

func TestListener(t *testing.T) {
	convey.Convey("Given a running listener", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		l := udp.New("127.0.0.1:0")
		events, err := l.Start(ctx)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Datagrams are decoded in arrival order", func() {
			sendDatagrams(t, l.Addr(), "pt1;3", "clk;1:30;start", "rnd;2")

			got := receive(t, events, 3)
			convey.So(got[0].Kind, convey.ShouldEqual, model.KindPoints)
			convey.So(got[1].Kind, convey.ShouldEqual, model.KindClock)
			convey.So(got[2].Kind, convey.ShouldEqual, model.KindRound)
		})

		convey.Convey("Malformed datagrams do not stop the loop", func() {
			sendDatagrams(t, l.Addr(), "???;;;", "pt2;1")

			got := receive(t, events, 2)
			convey.So(got[0].Kind, convey.ShouldEqual, model.KindRaw)
			convey.So(got[1].Kind, convey.ShouldEqual, model.KindPoints)
		})

		convey.Convey("Cancelling the context closes the channel", func() {
			cancel()

			select {
			case _, ok := <-events:
				convey.So(ok, convey.ShouldBeFalse)
			case <-time.After(2 * time.Second):
				t.Fatal("channel not closed after cancel")
			}
		})
	})
}

func TestStartFailures(t *testing.T) {
	convey.Convey("Given an unusable address", t, func() {
		l := udp.New("not-an-address")
		_, err := l.Start(context.Background())
		convey.So(err, convey.ShouldNotBeNil)
	})
}
