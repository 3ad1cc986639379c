// Package version exposes build version information.
package version

// Version is the build version, overridden at build time via
// -ldflags "-X revenue-split-engine/internal/version.Version=...".
var Version = "dev"
