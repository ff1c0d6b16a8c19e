package transport

import "errors"

// Classified connection failures. The bootstrap orchestrator picks its
// next action with errors.Is against these; anything else is unknown
// and never retried.
var (
	ErrInitializing   = errors.New("transport: server initializing")
	ErrBusy           = errors.New("transport: server busy")
	ErrCantConnect    = errors.New("transport: cannot connect to server")
	ErrStaleOrMissing = errors.New("transport: server absent or stale")
)
