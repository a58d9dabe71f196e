// Package key defines the configuration identifiers shared by viper, flags and environment variables.
package key

// Tracking - timing of checkpoint and resume-check handling.
const (
	TrackingCheckpointInterval = "tracking.checkpoint_interval"
	TrackingResumeDebounce     = "tracking.resume_debounce"
)

// Telemetry - delivery of watch and checkpoint events to the backend.
const (
	TelemetryEnable   = "telemetry.enable"
	TelemetryEndpoint = "telemetry.endpoint"
	TelemetryTimeout  = "telemetry.timeout"
)

// Session - identifiers attached to every telemetry event.
const (
	SessionPurchaseID = "session.purchase_id"
)

// History - local record of watched items and their last locations.
const (
	HistoryEnable = "history.enable"
)

// Player - media player behaviour.
const (
	PlayerStartIndex = "player.start_index"
)

// Logs
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI
const (
	CliColored   = "cli.colored"
	IconsVariant = "icons.variant"
)
