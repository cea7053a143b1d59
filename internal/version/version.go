package version

// Overridden at build time via -ldflags "-X pupilla/internal/version.VERSION=...".
var (
	VERSION = "0.1.0"
	COMMIT  = "dev"
)
