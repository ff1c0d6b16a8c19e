// Package version carries the build identity shared by the client and
// the daemon it spawns. A daemon reporting a different version than the
// connecting client is treated as stale and restarted via autostart.
package version

// Version is overridable at build time via -ldflags.
var Version = "0.1.0"
