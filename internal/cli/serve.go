package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hollis-dev/lensctl/internal/bootstrap"
	"github.com/hollis-dev/lensctl/internal/config"
	"github.com/hollis-dev/lensctl/internal/daemon"
)

// NewServeCommand runs lensd in the foreground. It is spawned by
// "lensctl start" and hidden from help output.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "serve <root>",
		Short:  "Run lensd in the foreground",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := bootstrap.FindRoot(args[0])
			if err != nil {
				return Coded(bootstrap.ExitFatal, err)
			}
			cfg, err := config.LoadRoot(root)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := daemon.NewServer(daemon.Config{
				Root:        root,
				Project:     cfg.Project.Name,
				Socket:      cfg.SocketPath(root),
				PidPath:     cfg.PidPath(root),
				WarmupFloor: cfg.Daemon.WarmupFloor,
			})
			return srv.Run(ctx)
		},
	}
}
