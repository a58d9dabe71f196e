// Package constant defines immutable application-level identifiers.
package constant

const (
	// Playmark is the canonical application identifier used for filesystem paths, env prefixes and keyring entries.
	Playmark = "playmark"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// UserAgent identifies telemetry requests.
	UserAgent = Playmark + "/" + Version
)

// Build metadata, set with -ldflags "-X".
var (
	Revision = "unknown"
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
)
