package bootstrap

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

// Governor enforces the global wall-clock deadline across the whole
// bootstrap sequence. The deadline is armed at most once per run;
// unarmed means unbounded. Once armed it is never cleared or extended.
type Governor struct {
	hooks    Hooks
	deadline time.Time
	armed    bool
}

func NewGovernor(hooks Hooks) *Governor {
	return &Governor{hooks: hooks.WithDefaults()}
}

// Arm sets the deadline to now + seconds. A second call is ignored.
func (g *Governor) Arm(seconds int) {
	if g.armed {
		log.Warn().Msg("deadline already armed, ignoring")
		return
	}
	g.armed = true
	g.deadline = g.hooks.Now().Add(time.Duration(seconds) * time.Second)
}

// Armed reports whether a deadline is in effect.
func (g *Governor) Armed() bool {
	return g.armed
}

// Check terminates the process with the timeout exit code when the
// deadline has passed. Called before every connection attempt, not
// only before sleeps.
func (g *Governor) Check() {
	if !g.armed {
		return
	}
	if g.hooks.Now().After(g.deadline) {
		g.timeout()
	}
}

// BoundedSleep sleeps for the requested duration unless doing so would
// run past the deadline, in which case it takes the timeout exit path
// immediately instead of oversleeping.
func (g *Governor) BoundedSleep(seconds int) {
	if !g.armed {
		g.hooks.Sleep(time.Duration(seconds) * time.Second)
		return
	}
	remaining := int(math.Ceil(g.deadline.Sub(g.hooks.Now()).Seconds()))
	if remaining <= seconds {
		g.timeout()
		return
	}
	g.hooks.Sleep(time.Duration(seconds) * time.Second)
}

func (g *Governor) timeout() {
	fmt.Fprintln(g.hooks.Stderr, "lensctl: timed out waiting for the server")
	g.hooks.Exit(ExitTimeout)
}
