package playback

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestClampSeek(t *testing.T) {
	Convey("ClampSeek", t, func() {
		clamped := func(target, duration float64) float64 {
			position, ok := ClampSeek(target, duration)
			So(ok, ShouldBeTrue)
			return position
		}

		Convey("Keeps seeks a quarter second short of the end", func() {
			So(clamped(60, 60), ShouldEqual, 59.75)
			So(clamped(65, 60), ShouldEqual, 59.75)
			So(clamped(59.9, 60), ShouldEqual, 59.75)
			So(clamped(1, 1), ShouldEqual, 0.75)
		})

		Convey("Leaves positions inside the media alone", func() {
			So(clamped(30, 60), ShouldEqual, 30)
			So(clamped(0, 60), ShouldEqual, 0)
		})

		Convey("Never seeks before the start", func() {
			So(clamped(-5, 60), ShouldEqual, 0)
			So(clamped(0.1, 0.2), ShouldEqual, 0)
		})

		Convey("Refuses unknown or empty media", func() {
			for _, duration := range []float64{0, -10} {
				_, ok := ClampSeek(30, duration)
				So(ok, ShouldBeFalse)
			}
		})

		Convey("Stays within [0, duration-epsilon] for positive durations", func() {
			for _, duration := range []float64{0.5, 1, 42, 3600} {
				for _, target := range []float64{-100, 0, duration / 2, duration, duration + 100} {
					position := clamped(target, duration)
					So(position, ShouldBeGreaterThanOrEqualTo, 0)
					So(position, ShouldBeLessThanOrEqualTo, duration-SeekEpsilon)
				}
			}
		})
	})
}

func TestSafeSeek(t *testing.T) {
	Convey("Given a player", t, func() {
		player := newFakePlayer(60)

		Convey("It seeks to the clamped position", func() {
			position, issued := SafeSeek(player, 59.9)
			So(issued, ShouldBeTrue)
			So(position, ShouldEqual, 59.75)
			So(player.seeks, ShouldResemble, []float64{59.75})
		})

		Convey("It does nothing when the duration is zero", func() {
			player.duration = 0
			_, issued := SafeSeek(player, 10)
			So(issued, ShouldBeFalse)
			So(player.seeks, ShouldBeEmpty)
		})

		Convey("It does nothing when the duration is unavailable", func() {
			player.durationErr = errNoMedia
			_, issued := SafeSeek(player, 10)
			So(issued, ShouldBeFalse)
			So(player.seeks, ShouldBeEmpty)
		})

		Convey("It swallows seek errors", func() {
			player.seekErr = errNoMedia
			So(func() { SafeSeek(player, 10) }, ShouldNotPanic)
		})

		Convey("It swallows player panics", func() {
			player.seekPanics = true
			var issued bool
			So(func() { _, issued = SafeSeek(player, 10) }, ShouldNotPanic)
			So(issued, ShouldBeFalse)
		})
	})
}
