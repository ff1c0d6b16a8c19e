package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hollis-dev/lensctl/internal/bootstrap"
	"github.com/hollis-dev/lensctl/internal/config"
	"github.com/hollis-dev/lensctl/internal/transport"
)

// NewStartCommand is the daemon bootstrap surface: the launcher (and
// users) invoke "lensctl start <root>". The bootstrap validates the
// project, spawns a detached "lensctl serve" and exits; it does not
// wait for the server's lifetime.
func NewStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start <root>",
		Short: "Spawn a detached lensd for the project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := bootstrap.FindRoot(args[0])
			if err != nil {
				return Coded(bootstrap.ExitFatal, err)
			}
			cfg, err := config.LoadRoot(root)
			if err != nil {
				return err
			}

			socket := cfg.SocketPath(root)
			if serverAnswers(cmd.Context(), socket) {
				fmt.Fprintln(cmd.OutOrStdout(), "server already running")
				return nil
			}

			logPath := cfg.LogPath(root)
			if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
				return fmt.Errorf("prepare log dir: %w", err)
			}
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("open server log: %w", err)
			}
			defer logFile.Close()

			exe, err := os.Executable()
			if err != nil {
				return fmt.Errorf("locate executable: %w", err)
			}
			child := exec.Command(exe, "serve", root)
			child.Stdout = logFile
			child.Stderr = logFile
			child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
			if err := child.Start(); err != nil {
				return fmt.Errorf("spawn server: %w", err)
			}
			// Detach: the server outlives this bootstrap process.
			if err := child.Process.Release(); err != nil {
				return fmt.Errorf("release server process: %w", err)
			}
			log.Info().Str("root", root).Str("log", logPath).Msg("lensd spawned")
			fmt.Fprintf(cmd.OutOrStdout(), "server starting for %s (log: %s)\n", root, logPath)
			return nil
		},
	}
}

// serverAnswers reports whether a live daemon already owns the socket.
// Initializing and busy daemons count as running.
func serverAnswers(ctx context.Context, socket string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	client, err := transport.Dial(probeCtx, socket, transport.Config{})
	if err == nil {
		client.Close()
		return true
	}
	return errors.Is(err, transport.ErrInitializing) || errors.Is(err, transport.ErrBusy)
}
