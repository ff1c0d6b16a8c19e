package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewStatusCommand(opts *RootOptions) *cobra.Command {
	cf := &connectFlags{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Connect to the project's lensd and report its status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, cfg, err := resolveProject(cmd, opts, cf)
			if err != nil {
				return err
			}
			client := connectDaemon(cmd, root, cfg)
			defer client.Close()

			st, err := client.Status(cmd.Context())
			if err != nil {
				return Coded(2, err)
			}
			out := cmd.OutOrStdout()
			if st.Project != "" {
				fmt.Fprintf(out, "project:       %s\n", st.Project)
			}
			fmt.Fprintf(out, "root:          %s\n", st.Root)
			fmt.Fprintf(out, "state:         %s\n", st.State)
			fmt.Fprintf(out, "pid:           %d\n", st.Pid)
			fmt.Fprintf(out, "uptime:        %ds\n", st.UptimeSec)
			fmt.Fprintf(out, "files indexed: %d\n", st.FilesIndexed)
			return nil
		},
	}
	cf.register(cmd)
	return cmd
}
