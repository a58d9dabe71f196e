package history

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/playmark/playmark/filesystem"
	"github.com/playmark/playmark/playback"
	"github.com/playmark/playmark/telemetry"
	"github.com/playmark/playmark/where"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
	_ = os.Setenv(where.EnvConfigPath, "/playmark-history-test")
}

func TestSink(t *testing.T) {
	Convey("Given an empty history", t, func() {
		So(Clear(), ShouldBeNil)

		now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
		sink := &Sink{Now: func() time.Time { return now }}
		ctx := context.Background()

		Convey("When a watch event is recorded", func() {
			So(sink.Consumption(ctx, telemetry.ConsumptionEvent{
				EventType: telemetry.EventWatch,
				ItemID:    "ep-1",
				Title:     "Episode 1",
			}), ShouldBeNil)

			Convey("Then the record counts the watch", func() {
				r, err := Lookup("ep-1")
				So(err, ShouldBeNil)
				So(r.IsPresent(), ShouldBeTrue)
				So(r.MustGet().Watches, ShouldEqual, 1)
				So(r.MustGet().Name(), ShouldEqual, "Episode 1")
			})
		})

		Convey("When checkpoints are recorded", func() {
			So(sink.Checkpoint(ctx, telemetry.Checkpoint{ItemID: "ep-1", Location: 12}), ShouldBeNil)
			So(sink.Checkpoint(ctx, telemetry.Checkpoint{ItemID: "ep-1", Location: 42.5, ContentLength: mo.Some(100.0)}), ShouldBeNil)

			Convey("Then the latest location wins", func() {
				r, err := Lookup("ep-1")
				So(err, ShouldBeNil)
				So(r.MustGet().Location, ShouldEqual, 42.5)
				So(r.MustGet().Progress().MustGet(), ShouldEqual, 0.425)
			})

			Convey("Then seeding a playlist restores the location", func() {
				items := []*playback.Item{{ID: "ep-1"}, {ID: "ep-2"}}
				So(Seed(items), ShouldBeNil)

				So(items[0].LastKnownLocation.MustGet(), ShouldEqual, 42.5)
				So(items[0].ContentLength.MustGet(), ShouldEqual, 100.0)
				So(items[1].LastKnownLocation.IsAbsent(), ShouldBeTrue)
			})

			Convey("Then seeding keeps locations already known", func() {
				items := []*playback.Item{{ID: "ep-1", LastKnownLocation: mo.Some(7.0)}}
				So(Seed(items), ShouldBeNil)
				So(items[0].LastKnownLocation.MustGet(), ShouldEqual, 7.0)
			})

			Convey("Then removing the item forgets it", func() {
				So(Remove("ep-1"), ShouldBeNil)
				r, err := Lookup("ep-1")
				So(err, ShouldBeNil)
				So(r.IsAbsent(), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled nothing is written", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			So(sink.Checkpoint(cancelled, telemetry.Checkpoint{ItemID: "ep-9", Location: 1}), ShouldNotBeNil)

			r, err := Lookup("ep-9")
			So(err, ShouldBeNil)
			So(r.IsAbsent(), ShouldBeTrue)
		})
	})
}

// player is a playback.Control that plays a single item of fixed length.
type player struct {
	handlers map[playback.Event]playback.Handler
	duration float64
	seeks    []float64
}

func newPlayer(duration float64) *player {
	return &player{handlers: make(map[playback.Event]playback.Handler), duration: duration}
}

func (p *player) Duration() (float64, error) { return p.duration, nil }
func (p *player) PlaylistIndex() (int, error) { return 0, nil }
func (p *player) SelectItem(int) error { return nil }
func (p *player) On(event playback.Event, handler playback.Handler) { p.handlers[event] = handler }

func (p *player) Seek(position float64) error {
	p.seeks = append(p.seeks, position)
	return nil
}

func (p *player) emit(event playback.Event, payload playback.Payload) {
	if h, ok := p.handlers[event]; ok {
		h(payload)
	}
}

func watchOnce(items []*playback.Item, control *player, fn func()) {
	s := playback.NewSession(control, items, playback.Options{
		SessionRedirectID: "redirect",
		PurchaseID:        mo.Some("purchase"),
		Sink:              NewSink(),
	})
	s.Attach()
	defer s.Close()

	control.emit(playback.EventPlay, playback.Payload{})
	control.emit(playback.EventVisualQuality, playback.Payload{})
	fn()
	s.Flush()
}

func TestWatchAgain(t *testing.T) {
	Convey("Given an item watched to the end without a known length", t, func() {
		So(Clear(), ShouldBeNil)

		first := newPlayer(60)
		watchOnce([]*playback.Item{{ID: "ep-1"}}, first, func() {
			first.emit(playback.EventTime, playback.Payload{Position: 30, Duration: 60})
			first.emit(playback.EventComplete, playback.Payload{Duration: 60})
		})

		Convey("Then the record knows the length", func() {
			r, err := Lookup("ep-1")
			So(err, ShouldBeNil)
			So(r.MustGet().Location, ShouldEqual, 60)
			So(r.MustGet().ContentLength, ShouldResemble, mo.Some(60.0))
		})

		Convey("Then watching it again starts from the beginning", func() {
			items := []*playback.Item{{ID: "ep-1"}}
			So(Seed(items), ShouldBeNil)
			So(items[0].LastKnownLocation.MustGet(), ShouldEqual, items[0].ContentLength.MustGet())

			second := newPlayer(60)
			watchOnce(items, second, func() {})

			So(second.seeks, ShouldBeEmpty)
		})
	})
}

func TestList(t *testing.T) {
	Convey("List orders records by last update", t, func() {
		So(Clear(), ShouldBeNil)

		at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
		sink := &Sink{Now: func() time.Time { return at }}
		ctx := context.Background()

		So(sink.Checkpoint(ctx, telemetry.Checkpoint{ItemID: "old", Location: 1}), ShouldBeNil)
		at = at.Add(time.Hour)
		So(sink.Checkpoint(ctx, telemetry.Checkpoint{ItemID: "new", Location: 2}), ShouldBeNil)

		list, err := List()
		So(err, ShouldBeNil)
		So(len(list), ShouldEqual, 2)
		So(list[0].ItemID, ShouldEqual, "new")
		So(list[1].ItemID, ShouldEqual, "old")
	})
}

func TestFormatLocation(t *testing.T) {
	Convey("FormatLocation", t, func() {
		So(FormatLocation(0), ShouldEqual, "0:00")
		So(FormatLocation(59.75), ShouldEqual, "1:00")
		So(FormatLocation(3725), ShouldEqual, "1:02:05")
	})
}
