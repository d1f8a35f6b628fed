package version

// Version is overridden at link time with -ldflags "-X .../internal/version.Version=v1.2.3".
var Version = "dev"
