// Package config registers every setting with its default and wires viper to the config file and environment.
package config

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"text/template"

	"github.com/playmark/playmark/constant"
	"github.com/playmark/playmark/key"
	"github.com/playmark/playmark/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field is a registered setting.
type Field struct {
	Key         string
	Value       any
	Description string
}

// Pretty renders the field with its current value for terminal output.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

// Env returns the environment variable bound to the field.
func (f *Field) Env() string {
	return strings.ToUpper(constant.Playmark + "_" + EnvKeyReplacer.Replace(f.Key))
}

func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Env         string `json:"env"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Env:         f.Env(),
	})
}

// Default maps every registered key to its field.
var Default = make(map[string]Field)

// EnvExposed lists the keys bound to environment variables.
var EnvExposed []string

func register(k string, v any, desc string) {
	if _, exists := Default[k]; exists {
		panic("duplicate config key: " + k)
	}
	Default[k] = Field{Key: k, Value: v, Description: desc}
	EnvExposed = append(EnvExposed, k)
}

func init() {
	register(key.TrackingCheckpointInterval, 10_000, "Minimum milliseconds between two checkpoint reports while playing")
	register(key.TrackingResumeDebounce, 500, "Milliseconds a rendition change must be apart from the previous one to trigger a resume check")
	register(key.TelemetryEnable, false, "Send telemetry to the HTTP backend")
	register(key.TelemetryEndpoint, "", "Base URL of the telemetry backend")
	register(key.TelemetryTimeout, 10, "Seconds before a telemetry request is abandoned")
	register(key.SessionPurchaseID, "local", "Purchase ID attached to telemetry.\nCheckpoints are not reported when empty")
	register(key.HistoryEnable, true, "Record watched items and resume locations locally")
	register(key.PlayerStartIndex, 0, "Playlist item to start playback with")
	register(key.LogsWrite, false, "Write logs")
	register(key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace")
	register(key.LogsJson, false, "Use json format for logs")
	register(key.CliColored, true, "Enable colored CLI output")
	register(key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, plain, nerd (nerd-font required)")
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":    style.Faint,
	"blue":     style.Fg(style.Blue),
	"purple":   style.Fg(style.Purple),
	"value":    func(k string) any { return viper.Get(k) },
	"typename": func(v any) string { return reflect.TypeOf(v).String() },
	"hl": func(v any) string {
		switch value := v.(type) {
		case bool:
			if value {
				return style.Fg(style.Green)(strconv.FormatBool(value))
			}
			return style.Fg(style.Red)(strconv.FormatBool(value))
		case string:
			return style.Fg(style.Yellow)(strconv.Quote(value))
		default:
			return fmt.Sprint(value)
		}
	},
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl .Value }}
{{ blue "Type:" }}    {{ typename .Value }}`))
