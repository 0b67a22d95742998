// Package version holds the build version of the edgeprobe binaries.
package version

// Version is the symbolic version of the running code. It is overridden at
// build time with -ldflags "-X github.com/erebus-edge/edgeprobe/pkg/version.Version=...".
var Version = "v0.0.0-dev"
