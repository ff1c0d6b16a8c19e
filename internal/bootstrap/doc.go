// Package bootstrap owns the client-side daemon bootstrap sequence.
//
// Ownership boundary:
// - project root resolution (marker file ascent)
// - the connect/retry/autostart state machine
// - the global wall-clock deadline and bounded sleeps
// - spawning the daemon bootstrap process
//
// Every failure path here terminates the process at the point of
// detection with a diagnostic on stderr and a fixed exit code; callers
// only ever see a live connection handle.
package bootstrap
