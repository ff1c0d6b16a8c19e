// Package daemon owns the lensd server runtime.
//
// Ownership boundary:
// - the admin API on the project's unix socket
// - the warmup index pass and the state clients observe
// - pidfile and socket lifecycle
//
// The client-side retry policy against this server lives in
// internal/bootstrap; the daemon only reports its state truthfully.
package daemon
