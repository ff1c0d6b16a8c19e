package bootstrap

import (
	"io"
	"os"
	"time"
)

// Process exit codes, part of the user-visible contract.
const (
	ExitFatal    = 2
	ExitTimeout  = 3
	ExitLauncher = 77
)

// Hooks are the process-level effects the bootstrap sequence performs.
// Production code uses the defaults; tests substitute a fake clock,
// recorded sleeps, and a trapping exit.
type Hooks struct {
	Now    func() time.Time
	Sleep  func(time.Duration)
	Exit   func(code int)
	Stderr io.Writer
}

func (h Hooks) WithDefaults() Hooks {
	if h.Now == nil {
		h.Now = time.Now
	}
	if h.Sleep == nil {
		h.Sleep = time.Sleep
	}
	if h.Exit == nil {
		h.Exit = os.Exit
	}
	if h.Stderr == nil {
		h.Stderr = os.Stderr
	}
	return h
}
