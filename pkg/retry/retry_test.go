package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ringcast/ringcast/pkg/retry"
	"github.com/smartystreets/goconvey/convey"
)

func fastConfig(attempts int) retry.Config {
	return retry.Config{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDo(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given a retryable operation", t, func() {
		convey.Convey("When it succeeds on the first attempt", func() {
			calls := 0
			err := retry.Do(ctx, fastConfig(3), func() error {
				calls++
				return nil
			})

			convey.So(err, convey.ShouldBeNil)
			convey.So(calls, convey.ShouldEqual, 1)
		})

		convey.Convey("When it succeeds after transient failures", func() {
			calls := 0
			err := retry.Do(ctx, fastConfig(5), func() error {
				calls++
				if calls < 3 {
					return errors.New("transient")
				}
				return nil
			})

			convey.So(err, convey.ShouldBeNil)
			convey.So(calls, convey.ShouldEqual, 3)
		})

		convey.Convey("When every attempt fails", func() {
			cause := errors.New("broken")
			calls := 0
			err := retry.Do(ctx, fastConfig(3), func() error {
				calls++
				return cause
			})

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, cause), convey.ShouldBeTrue)
			convey.So(calls, convey.ShouldEqual, 3)
		})

		convey.Convey("When the error is marked non-retryable", func() {
			calls := 0
			err := retry.Do(ctx, fastConfig(5), func() error {
				calls++
				return retry.NonRetryable(errors.New("bad request"))
			})

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(retry.IsNonRetryable(err), convey.ShouldBeTrue)
			convey.So(calls, convey.ShouldEqual, 1)
		})

		convey.Convey("When the context is cancelled between attempts", func() {
			cancelCtx, cancel := context.WithCancel(ctx)
			calls := 0
			err := retry.Do(cancelCtx, fastConfig(10), func() error {
				calls++
				cancel()
				return errors.New("transient")
			})

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
			convey.So(calls, convey.ShouldEqual, 1)
		})
	})
}

func TestDoValidation(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given invalid configurations", t, func() {
		convey.Convey("A negative initial delay is rejected", func() {
			err := retry.Do(ctx, retry.Config{InitialDelay: -1}, func() error { return nil })
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("A max delay below the initial delay is rejected", func() {
			cfg := retry.Config{InitialDelay: time.Second, MaxDelay: time.Millisecond}
			err := retry.Do(ctx, cfg, func() error { return nil })
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("A zero config still runs the operation once", func() {
			calls := 0
			err := retry.Do(ctx, retry.Config{}, func() error {
				calls++
				return nil
			})
			convey.So(err, convey.ShouldBeNil)
			convey.So(calls, convey.ShouldEqual, 1)
		})
	})
}

func TestDoWithResult(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given an operation returning a value", t, func() {
		convey.Convey("The value from the successful attempt is returned", func() {
			calls := 0
			got, err := retry.DoWithResult(ctx, fastConfig(5), func() (string, error) {
				calls++
				if calls < 2 {
					return "", errors.New("transient")
				}
				return "ready", nil
			})

			convey.So(err, convey.ShouldBeNil)
			convey.So(got, convey.ShouldEqual, "ready")
		})

		convey.Convey("The zero value is returned on failure", func() {
			got, err := retry.DoWithResult(ctx, fastConfig(2), func() (int, error) {
				return 42, errors.New("broken")
			})

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(got, convey.ShouldEqual, 42)
		})
	})
}

func TestNonRetryable(t *testing.T) {
	convey.Convey("Given the non-retryable wrapper", t, func() {
		convey.Convey("Wrapping nil returns nil", func() {
			convey.So(retry.NonRetryable(nil), convey.ShouldBeNil)
		})

		convey.Convey("The cause is preserved through Unwrap", func() {
			cause := errors.New("cause")
			wrapped := retry.NonRetryable(cause)
			convey.So(errors.Is(wrapped, cause), convey.ShouldBeTrue)
		})

		convey.Convey("Plain errors are retryable", func() {
			convey.So(retry.IsNonRetryable(errors.New("plain")), convey.ShouldBeFalse)
		})
	})
}
