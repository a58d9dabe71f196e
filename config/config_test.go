package config

import (
	"os"
	"testing"

	"github.com/playmark/playmark/filesystem"
	"github.com/playmark/playmark/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without a config file", func() {
			So(Setup(), ShouldBeNil)
		})

		Convey("Should populate every default", func() {
			So(Setup(), ShouldBeNil)
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
			So(viper.GetInt(key.TrackingCheckpointInterval), ShouldEqual, 10_000)
			So(viper.GetInt(key.TrackingResumeDebounce), ShouldEqual, 500)
		})

		Convey("Should read environment overrides", func() {
			So(os.Setenv("PLAYMARK_SESSION_PURCHASE_ID", "p-42"), ShouldBeNil)
			Reset(func() { _ = os.Unsetenv("PLAYMARK_SESSION_PURCHASE_ID") })

			So(Setup(), ShouldBeNil)
			So(viper.GetString(key.SessionPurchaseID), ShouldEqual, "p-42")
		})

		Convey("Should read the config file", func() {
			So(filesystem.API().WriteFile(Path(), []byte("[player]\nstart_index = 3\n"), 0o644), ShouldBeNil)
			Reset(func() {
				_ = filesystem.API().Remove(Path())
				viper.Set(key.PlayerStartIndex, 0)
			})

			So(Setup(), ShouldBeNil)
			So(viper.GetInt(key.PlayerStartIndex), ShouldEqual, 3)
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given a registered field", t, func() {
		field := Default[key.TelemetryEndpoint]

		Convey("Env uses the app prefix", func() {
			So(field.Env(), ShouldEqual, "PLAYMARK_TELEMETRY_ENDPOINT")
		})

		Convey("EnvKeyReplacer converts dots to underscores", func() {
			So(EnvKeyReplacer.Replace("tracking.resume_debounce"), ShouldEqual, "tracking_resume_debounce")
		})

		Convey("JSON includes the default and env", func() {
			data, err := field.MarshalJSON()
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, `"env":"PLAYMARK_TELEMETRY_ENDPOINT"`)
		})
	})
}
