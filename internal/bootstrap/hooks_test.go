package bootstrap

import (
	"bytes"
	"testing"
	"time"
)

// procProbe substitutes the process-level effects: a fake clock that
// advances with sleeps, captured stderr, and an exit that unwinds via
// panic the way os.Exit stops the real process.
type procProbe struct {
	now    time.Time
	slept  []time.Duration
	stderr bytes.Buffer
}

type exitSignal struct{ code int }

func newProcProbe() *procProbe {
	return &procProbe{now: time.Unix(1700000000, 0)}
}

func (p *procProbe) hooks() Hooks {
	return Hooks{
		Now: func() time.Time { return p.now },
		Sleep: func(d time.Duration) {
			p.slept = append(p.slept, d)
			p.now = p.now.Add(d)
		},
		Exit:   func(code int) { panic(exitSignal{code}) },
		Stderr: &p.stderr,
	}
}

func captureExit(t *testing.T, fn func()) (code int, exited bool) {
	t.Helper()
	func() {
		defer func() {
			if r := recover(); r != nil {
				sig, ok := r.(exitSignal)
				if !ok {
					panic(r)
				}
				code = sig.code
				exited = true
			}
		}()
		fn()
	}()
	return code, exited
}
