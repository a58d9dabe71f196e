// Package playback tracks resume positions and emits watch telemetry for a playlist driven by a media player.
package playback

// Event names the player lifecycle and progress notifications a Session subscribes to.
type Event string

const (
	EventReady         Event = "ready"
	EventPlay          Event = "play"
	EventTime          Event = "time"
	EventSeek          Event = "seek"
	EventComplete      Event = "complete"
	EventVisualQuality Event = "visualQuality"
	EventError         Event = "error"
)

// Events lists every event a Session installs a handler for.
var Events = []Event{
	EventReady,
	EventPlay,
	EventTime,
	EventSeek,
	EventComplete,
	EventVisualQuality,
	EventError,
}

// Payload carries the event-specific data. Only the fields relevant to the event are set:
// Offset for seek, Position and Duration for time, Duration for complete when the player
// knows the finished media's length, Err for error.
type Payload struct {
	Offset   float64
	Position float64
	Duration float64
	Err      error
}

// Handler receives a single player event.
type Handler func(Payload)

// Seeker is the subset of the player surface needed to issue a safe seek.
type Seeker interface {
	// Duration returns the length of the loaded media in seconds.
	Duration() (float64, error)

	// Seek moves playback to an absolute position in seconds.
	// It may fail when no media is loaded yet.
	Seek(position float64) error
}

// Control is the player surface consumed by a Session.
type Control interface {
	Seeker

	// PlaylistIndex returns the index of the playlist item currently loaded.
	PlaylistIndex() (int, error)

	// SelectItem switches playback to the playlist item at index.
	SelectItem(index int) error

	// On registers the handler for an event. A Session registers exactly one handler per event.
	On(event Event, handler Handler)
}
