package bootstrap

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/rs/zerolog/log"
)

// Launcher spawns the daemon bootstrap as a child process and waits
// for the bootstrap exit only; the daemon itself detaches and keeps
// running. A non-zero bootstrap exit is fatal and never re-enters the
// retry loop.
type Launcher struct {
	hooks Hooks

	// Program and Args override the spawned command; empty means
	// re-invoke the current executable with "start <root>".
	Program string
	Args    []string
}

func NewLauncher(hooks Hooks) *Launcher {
	return &Launcher{
		hooks: hooks.WithDefaults(),
		Args:  []string{"start"},
	}
}

// Start runs the daemon bootstrap for root, streaming the child's
// output to the parent's error stream. It returns only when the
// bootstrap exited with status 0; any other outcome terminates the
// process with the launcher exit code.
func (l *Launcher) Start(root string) {
	program := l.Program
	if program == "" {
		exe, err := os.Executable()
		if err != nil {
			l.fail(fmt.Errorf("locate executable: %w", err))
			return
		}
		program = exe
	}
	args := append(append([]string{}, l.Args...), root)

	log.Info().Str("program", program).Str("root", root).Msg("starting server")
	cmd := exec.Command(program, args...)
	cmd.Stdout = l.hooks.Stderr
	cmd.Stderr = l.hooks.Stderr
	if err := cmd.Run(); err != nil {
		l.fail(err)
	}
}

func (l *Launcher) fail(err error) {
	fmt.Fprintf(l.hooks.Stderr, "lensctl: could not start the server: %v\n", err)
	l.hooks.Exit(ExitLauncher)
}
