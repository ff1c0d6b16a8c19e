// Package cli owns command wiring and the process exit-code contract.
//
// Exit codes: 0 success, 2 connection or resolution failure, 3 global
// deadline exceeded, 77 daemon bootstrap failure. The bootstrap
// components exit directly at their point of detection; errors
// returned from commands are mapped by ExitCode in main.
package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

// RootOptions holds the persistent flags shared by all commands.
type RootOptions struct {
	From       string
	ConfigPath string
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	cmd := &cobra.Command{
		Use:           "lensctl",
		Short:         "Client for the lensd background analysis daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.From, "from", "", "file or directory to resolve the project root from (default: current directory)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "user-level override config file")

	cmd.AddCommand(
		NewStatusCommand(opts),
		NewStopCommand(opts),
		NewStartCommand(),
		NewServeCommand(),
		NewAnnotateCommand(),
		NewInitCommand(),
		NewVersionCommand(),
	)
	return cmd
}

func Execute() error {
	return NewRootCommand().Execute()
}

type codedError struct {
	code int
	err  error
}

func (e codedError) Error() string { return e.err.Error() }
func (e codedError) Unwrap() error { return e.err }

// Coded tags err with a process exit code.
func Coded(code int, err error) error {
	return codedError{code: code, err: err}
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ce codedError
	if errors.As(err, &ce) {
		return ce.code
	}
	return 1
}
