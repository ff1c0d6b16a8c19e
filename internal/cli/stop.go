package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewStopCommand(opts *RootOptions) *cobra.Command {
	cf := &connectFlags{}
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Ask the project's lensd to shut down",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, cfg, err := resolveProject(cmd, opts, cf)
			if err != nil {
				return err
			}
			// Stopping must never spawn the daemon it is about to stop.
			cfg.Connect.Autostart = false
			client := connectDaemon(cmd, root, cfg)
			defer client.Close()

			if err := client.Shutdown(cmd.Context()); err != nil {
				return Coded(2, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "server stopping")
			return nil
		},
	}
	cf.register(cmd)
	return cmd
}
