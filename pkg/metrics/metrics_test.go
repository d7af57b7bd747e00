package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with empty or zero option values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept and creation succeeds", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the package-level recording helpers", t, func() {
		Convey("When recording ingest metrics", func() {
			So(func() {
				RecordDatagramReceived()
				RecordDatagramUnrecognized()
				RecordEventDecoded("points")
				RecordEventCategory("head")
				RecordEventProcessingLatency(0.002)
			}, ShouldNotPanic)
		})

		Convey("When recording control-protocol metrics", func() {
			So(func() {
				RecordControlRequest("recording", "StartRecord")
				RecordControlError("recording", "timeout")
				UpdateConnectionStatus("recording", 4)
				RecordControlRequestTime(0.05)
			}, ShouldNotPanic)
		})

		Convey("When recording recording-lifecycle metrics", func() {
			So(func() {
				RecordRecordingStarted()
				RecordRecordingStopped()
				UpdateOrchestratorState(2)
				RecordReplaySaved()
				RecordReplayNotFound()
			}, ShouldNotPanic)
		})

		Convey("When recording correlation metrics", func() {
			So(func() {
				RecordSessionStarted("recording")
				RecordSessionEnded("streaming")
				RecordCorrelationGap()
			}, ShouldNotPanic)
		})

		Convey("When recording hub and persistence metrics", func() {
			So(func() {
				RecordBroadcastDelivered()
				RecordBroadcastDropped()
				UpdateHubSubscribers(3)
				RecordEventPersisted()
				RecordPersistError()
				RecordPersistLatency(0.001)
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP API metrics", func() {
			So(func() {
				RecordHTTPRequest("stats", "GET", "200")
				RecordHTTPRequestDuration("stats", "GET", 0.003)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent metric recording", t, func() {
		done := make(chan bool, 10)

		for i := 0; i < 10; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					RecordDatagramReceived()
					RecordEventCategory("kick")
					RecordEventProcessingLatency(float64(j) / 1000)
					UpdateHubSubscribers(j)
				}
				done <- true
			}()
		}

		for i := 0; i < 10; i++ {
			<-done
		}

		Convey("Then it should handle concurrent access without panics", func() {
			So(true, ShouldBeTrue)
		})
	})
}

func TestRegistryAccess(t *testing.T) {
	Convey("Given the global registry", t, func() {
		registry := GetRegistry()

		Convey("Then it is usable for scraping", func() {
			So(registry, ShouldNotBeNil)
			families, err := registry.Gather()
			So(err, ShouldBeNil)
			So(families, ShouldNotBeNil)
		})
	})
}
