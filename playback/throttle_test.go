package playback

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDebouncer(t *testing.T) {
	Convey("Given a 500ms debouncer", t, func() {
		clock := newFakeClock()
		start := clock.now
		d := NewDebouncer(500*time.Millisecond, clock.Now)

		Convey("It accepts 3 of [0,100,200,600,700,1200]", func() {
			var accepted []bool
			for _, ms := range []int{0, 100, 200, 600, 700, 1200} {
				clock.now = start.Add(time.Duration(ms) * time.Millisecond)
				accepted = append(accepted, d.Accept())
			}
			So(accepted, ShouldResemble, []bool{true, false, false, true, false, true})
		})

		Convey("It always accepts the first event", func() {
			clock.now = time.Time{}
			So(d.Accept(), ShouldBeTrue)
		})

		Convey("It accepts exactly at the gap", func() {
			So(d.Accept(), ShouldBeTrue)
			clock.advance(500 * time.Millisecond)
			So(d.Accept(), ShouldBeTrue)
		})

		Convey("Reset forgets the last accepted event", func() {
			So(d.Accept(), ShouldBeTrue)
			d.Reset()
			So(d.Accept(), ShouldBeTrue)
		})
	})
}

func TestThrottle(t *testing.T) {
	Convey("Given a 10s throttle", t, func() {
		clock := newFakeClock()
		var fired []float64
		th := NewThrottle(10*time.Second, clock.Now, func(v float64) { fired = append(fired, v) })

		Convey("The first call fires immediately", func() {
			So(th.Call(1), ShouldBeTrue)
			So(fired, ShouldResemble, []float64{1})
			So(th.Pending().IsAbsent(), ShouldBeTrue)
		})

		Convey("Calls within the window are suppressed, keeping the latest", func() {
			th.Call(1)
			clock.advance(3 * time.Second)
			So(th.Call(4), ShouldBeFalse)
			clock.advance(3 * time.Second)
			So(th.Call(7), ShouldBeFalse)

			So(fired, ShouldResemble, []float64{1})
			So(th.Pending().MustGet(), ShouldEqual, 7)

			Convey("And nothing fires on its own when the window ends", func() {
				clock.advance(time.Minute)
				So(fired, ShouldResemble, []float64{1})
			})

			Convey("And the next call after the window fires with its own argument", func() {
				clock.advance(4 * time.Second)
				So(th.Call(11), ShouldBeTrue)
				So(fired, ShouldResemble, []float64{1, 11})
				So(th.Pending().IsAbsent(), ShouldBeTrue)
			})
		})

		Convey("Cancel drops the pending call and reopens the window", func() {
			th.Call(1)
			th.Call(2)
			th.Cancel()
			So(th.Pending().IsAbsent(), ShouldBeTrue)
			So(th.Call(3), ShouldBeTrue)
			So(fired, ShouldResemble, []float64{1, 3})
		})
	})
}
