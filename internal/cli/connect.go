package cli

import (
	"github.com/spf13/cobra"

	"github.com/hollis-dev/lensctl/internal/bootstrap"
	"github.com/hollis-dev/lensctl/internal/config"
	"github.com/hollis-dev/lensctl/internal/transport"
)

// connectFlags are the per-command overrides for the bootstrap
// sequence; unset flags defer to lens.toml and the user config.
type connectFlags struct {
	retries     int
	timeout     int
	noAutostart bool
	noRetryInit bool
}

func (cf *connectFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&cf.retries, "retries", 3, "transient-failure retry budget")
	cmd.Flags().IntVar(&cf.timeout, "timeout", 0, "global deadline in seconds (0 = unbounded)")
	cmd.Flags().BoolVar(&cf.noAutostart, "no-autostart", false, "fail instead of starting an absent server")
	cmd.Flags().BoolVar(&cf.noRetryInit, "no-retry-if-init", false, "fail instead of waiting out server initialization")
}

// resolveProject locates the root and loads its effective connect
// configuration: lens.toml, then the user override file, then flags.
func resolveProject(cmd *cobra.Command, opts *RootOptions, cf *connectFlags) (string, config.Config, error) {
	root, err := bootstrap.FindRoot(opts.From)
	if err != nil {
		return "", config.Config{}, Coded(bootstrap.ExitFatal, err)
	}
	cfg, err := config.LoadRoot(root)
	if err != nil {
		return "", config.Config{}, Coded(bootstrap.ExitFatal, err)
	}
	if opts.ConfigPath != "" {
		if err := applyUserOverrides(opts.ConfigPath, &cfg.Connect); err != nil {
			return "", config.Config{}, Coded(bootstrap.ExitFatal, err)
		}
	}
	if cf != nil {
		flags := cmd.Flags()
		if flags.Changed("retries") {
			cfg.Connect.Retries = cf.retries
		}
		if flags.Changed("timeout") {
			cfg.Connect.TimeoutSeconds = cf.timeout
		}
		if cf.noAutostart {
			cfg.Connect.Autostart = false
		}
		if cf.noRetryInit {
			cfg.Connect.RetryIfInitializing = false
		}
	}
	return root, cfg, nil
}

// connectDaemon runs the bootstrap sequence and returns a live client.
// Unrecoverable failures terminate the process inside the orchestrator.
func connectDaemon(cmd *cobra.Command, root string, cfg config.Config) *transport.Client {
	hooks := bootstrap.Hooks{}
	governor := bootstrap.NewGovernor(hooks)
	if cfg.Connect.TimeoutSeconds > 0 {
		governor.Arm(cfg.Connect.TimeoutSeconds)
	}
	occfg := bootstrap.OrchestratorConfig{
		Socket:              cfg.SocketPath(root),
		Retries:             cfg.Connect.Retries,
		Autostart:           cfg.Connect.Autostart,
		RetryIfInitializing: cfg.Connect.RetryIfInitializing,
	}
	o := bootstrap.NewOrchestrator(occfg, governor, hooks)
	return o.Connect(cmd.Context(), root)
}
