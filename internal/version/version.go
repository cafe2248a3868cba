package version

// Name is the service identifier used for logging and tracing.
const Name = "foldpanel"

// Version is overridable at build time via -ldflags.
var Version = "dev"
