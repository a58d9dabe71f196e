package constant

// runtime.GOOS values with platform-specific install hints.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
	Android = "android"
)
