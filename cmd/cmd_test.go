package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/playmark/playmark/constant"
	"github.com/playmark/playmark/history"
	"github.com/playmark/playmark/key"
	"github.com/playmark/playmark/telemetry"
	"github.com/playmark/playmark/where"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestItemsFor(t *testing.T) {
	Convey("Given playlist targets", t, func() {
		targets := []string{"/media/show/ep1.mkv", "https://cdn.example.com/show/ep2.m3u8?token=x"}

		Convey("Titles default to the file name", func() {
			items := itemsFor(targets, "")

			So(items, ShouldHaveLength, 2)
			So(items[0].ID, ShouldEqual, targets[0])
			So(items[0].Title, ShouldEqual, "ep1.mkv")
			So(items[1].Title, ShouldEqual, "ep2.m3u8")
			So(items[1].LastKnownLocation.IsAbsent(), ShouldBeTrue)
		})

		Convey("A title is numbered across several items", func() {
			items := itemsFor(targets, "Show")

			So(items[0].Title, ShouldEqual, "Show #1")
			So(items[1].Title, ShouldEqual, "Show #2")
		})

		Convey("A single item takes the title as is", func() {
			So(itemsFor(targets[:1], "Show")[0].Title, ShouldEqual, "Show")
		})
	})
}

func TestParseHeaders(t *testing.T) {
	Convey("parseHeaders", t, func() {
		Convey("Splits on the first colon", func() {
			headers, err := parseHeaders([]string{"Referer: https://example.com", "X-Empty:"})

			So(err, ShouldBeNil)
			So(headers, ShouldResemble, map[string]string{
				"Referer": "https://example.com",
				"X-Empty": "",
			})
		})

		Convey("Rejects entries without a name", func() {
			_, err := parseHeaders([]string{"no colon"})
			So(err, ShouldNotBeNil)

			_, err = parseHeaders([]string{": value"})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSessionOptions(t *testing.T) {
	Convey("Given tracking settings", t, func() {
		viper.Set(key.TrackingCheckpointInterval, 5000)
		viper.Set(key.TrackingResumeDebounce, 250)
		viper.Set(key.TelemetryTimeout, 3)
		viper.Set(key.PlayerStartIndex, 2)
		viper.Set(key.HistoryEnable, false)
		viper.Set(key.TelemetryEnable, false)
		Reset(func() {
			for _, k := range []string{
				key.TrackingCheckpointInterval, key.TrackingResumeDebounce, key.TelemetryTimeout,
				key.PlayerStartIndex, key.HistoryEnable, key.TelemetryEnable, key.SessionPurchaseID,
				key.TelemetryEndpoint,
			} {
				viper.Set(k, nil)
			}
		})

		Convey("Durations are read in their configured units", func() {
			viper.Set(key.SessionPurchaseID, "p-1")
			opts := sessionOptions("session")

			So(opts.SessionRedirectID, ShouldEqual, "session")
			So(opts.PurchaseID, ShouldResemble, mo.Some("p-1"))
			So(opts.StartIndex, ShouldEqual, 2)
			So(opts.CheckpointInterval.Milliseconds(), ShouldEqual, 5000)
			So(opts.ResumeDebounce.Milliseconds(), ShouldEqual, 250)
			So(opts.DispatchTimeout.Seconds(), ShouldEqual, 3)
		})

		Convey("An empty purchase disables it", func() {
			viper.Set(key.SessionPurchaseID, "")
			So(sessionOptions("s").PurchaseID.IsAbsent(), ShouldBeTrue)
		})

		Convey("Sinks follow the enabled backends", func() {
			So(sinkFor(), ShouldHaveSameTypeAs, telemetry.Nop{})

			viper.Set(key.HistoryEnable, true)
			So(sinkFor(), ShouldHaveSameTypeAs, &history.Sink{})

			viper.Set(key.TelemetryEnable, true)
			So(sinkFor(), ShouldHaveSameTypeAs, &history.Sink{})

			viper.Set(key.TelemetryEndpoint, "https://telemetry.example.com")
			sink := sinkFor()
			So(sink, ShouldHaveSameTypeAs, telemetry.Multi{})
			So(sink.(telemetry.Multi), ShouldHaveLength, 2)
		})
	})
}

func TestHistoryListing(t *testing.T) {
	Convey("Given history records", t, func() {
		records := []*history.Record{
			{ItemID: "ep1", Title: "Pilot", Location: 600, ContentLength: mo.Some(1200.0), Watches: 2},
			{ItemID: "/media/ep2.mkv", Location: 75},
		}

		Convey("Filtering matches titles and IDs fuzzily", func() {
			So(filterRecords(records, ""), ShouldHaveLength, 2)
			So(filterRecords(records, "plt"), ShouldResemble, records[:1])
			So(filterRecords(records, "EP2"), ShouldResemble, records[1:])
			So(filterRecords(records, "zzz"), ShouldBeEmpty)
		})

		Convey("Rendering shows location, progress and watches", func() {
			var out bytes.Buffer
			renderRecords(&out, records, 100)
			lines := strings.Split(strings.TrimSpace(out.String()), "\n")

			So(lines, ShouldHaveLength, 2)
			So(lines[0], ShouldContainSubstring, "Pilot")
			So(lines[0], ShouldContainSubstring, "10:00")
			So(lines[0], ShouldContainSubstring, "50%")
			So(lines[0], ShouldContainSubstring, "2 watches")
			So(lines[1], ShouldContainSubstring, "/media/ep2.mkv")
			So(lines[1], ShouldContainSubstring, "1:15")
		})

		Convey("Long titles are truncated", func() {
			var out bytes.Buffer
			renderRecords(&out, []*history.Record{{ItemID: strings.Repeat("x", 200)}}, 60)

			So(out.String(), ShouldContainSubstring, "…")
			So(out.String(), ShouldNotContainSubstring, strings.Repeat("x", 100))
		})

		Convey("Resume labels", func() {
			So(resumeLabel(records[0]), ShouldEqual, "at 10:00")
			So(resumeLabel(&history.Record{}), ShouldEqual, "from the start")
		})
	})
}

func TestConfigValues(t *testing.T) {
	Convey("parseValue converts to the default's type", t, func() {
		v, err := parseValue(key.TrackingCheckpointInterval, "2500")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, 2500)

		v, err = parseValue(key.TelemetryEnable, "true")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, true)

		v, err = parseValue(key.TelemetryEndpoint, "https://x")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, "https://x")

		_, err = parseValue(key.PlayerStartIndex, "first")
		So(err, ShouldNotBeNil)
	})

	Convey("Unknown keys suggest the closest one", t, func() {
		_, err := parseValue("telemetry.endpiont", "x")

		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, key.TelemetryEndpoint)
	})
}

func TestEnvVars(t *testing.T) {
	Convey("Every setting and the config path are listed", t, func() {
		vars := envVars()

		So(vars, ShouldContain, where.EnvConfigPath)
		So(vars, ShouldContain, "PLAYMARK_TELEMETRY_ENDPOINT")
		So(vars, ShouldContain, "PLAYMARK_TRACKING_CHECKPOINT_INTERVAL")
	})
}

func TestInstallHint(t *testing.T) {
	Convey("Install hints depend on the platform", t, func() {
		So(installHint(constant.Darwin), ShouldContainSubstring, "brew")
		So(installHint(constant.Windows), ShouldContainSubstring, "scoop")
		So(installHint("plan9"), ShouldBeEmpty)
		So(missingDependency("mpv", ""), ShouldContainSubstring, "mpv")
	})
}
