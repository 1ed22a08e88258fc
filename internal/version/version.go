package version

// Overridden at build time via -ldflags.
var (
	AppName   = "server-arcade"
	BuildDate = "unknown"
	GoVersion = "unknown"
)
