package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hollis-dev/lensctl/internal/transport"
)

// OrchestratorConfig controls one bootstrap connection sequence.
type OrchestratorConfig struct {
	// Socket is the daemon's unix socket path.
	Socket string
	// Retries is the transient-failure budget.
	Retries int
	// Autostart spawns the daemon when it is absent or stale.
	Autostart bool
	// RetryIfInitializing waits out daemon startup without consuming
	// the retry budget.
	RetryIfInitializing bool
	Transport           transport.Config
}

func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		Retries:             3,
		Autostart:           true,
		RetryIfInitializing: true,
	}
}

type serverStarter interface {
	Start(root string)
}

type dialFunc func(ctx context.Context, socket string, cfg transport.Config) (*transport.Client, error)

// Orchestrator drives connection attempts against the daemon,
// classifying each failure and retrying, waiting, or autostarting as
// the classification dictates. Every path either returns a live client
// or terminates the process with an explicit exit code.
type Orchestrator struct {
	cfg      OrchestratorConfig
	governor *Governor
	starter  serverStarter
	dial     dialFunc
	hooks    Hooks
}

func NewOrchestrator(cfg OrchestratorConfig, governor *Governor, hooks Hooks) *Orchestrator {
	hooks = hooks.WithDefaults()
	if governor == nil {
		governor = NewGovernor(hooks)
	}
	return &Orchestrator{
		cfg:      cfg,
		governor: governor,
		starter:  NewLauncher(hooks),
		dial:     transport.Dial,
		hooks:    hooks,
	}
}

// Connect runs the bootstrap state machine until a connection is
// established. The deadline governor is consulted before every attempt
// and inside every sleep.
func (o *Orchestrator) Connect(ctx context.Context, root string) *transport.Client {
	retries := o.cfg.Retries
	waited := false
	for {
		o.governor.Check()
		client, err := o.dial(ctx, o.cfg.Socket, o.cfg.Transport)
		if err == nil {
			if waited {
				fmt.Fprintln(o.hooks.Stderr)
			}
			log.Debug().Str("socket", o.cfg.Socket).Msg("connected")
			return client
		}
		log.Debug().Err(err).Str("socket", o.cfg.Socket).Msg("connection attempt failed")

		switch {
		case errors.Is(err, transport.ErrInitializing):
			if !o.cfg.RetryIfInitializing {
				o.fatalf("the server is still initializing")
				return nil
			}
			// Startup time is unbounded, so waiting here does not
			// consume the retry budget. With no deadline armed this
			// can wait forever on a daemon that never finishes
			// initializing.
			if !waited {
				fmt.Fprint(o.hooks.Stderr, "lensctl: waiting for the server to initialize")
				waited = true
			}
			fmt.Fprint(o.hooks.Stderr, ".")
			o.governor.BoundedSleep(1)
		case errors.Is(err, transport.ErrBusy):
			retries = o.retry(retries, 1, "the server is busy; retrying")
		case errors.Is(err, transport.ErrCantConnect):
			retries = o.retry(retries, 1, "could not connect to the server; retrying")
		case errors.Is(err, transport.ErrStaleOrMissing):
			if !o.cfg.Autostart {
				o.fatalf("no server running for %s", root)
				return nil
			}
			// A launcher failure exits with its own code and never
			// comes back here.
			o.starter.Start(root)
			retries = o.retry(retries, 3, "server starting")
		default:
			o.fatalf("connection failed: %v", err)
			return nil
		}
	}
}

// retry consumes one unit of the budget after a governed delay, or
// gives up when the budget is spent.
func (o *Orchestrator) retry(retries, delaySeconds int, message string) int {
	o.governor.Check()
	if retries <= 0 {
		o.fatalf("out of retries, giving up")
		return 0
	}
	fmt.Fprintf(o.hooks.Stderr, "lensctl: %s\n", message)
	o.governor.BoundedSleep(delaySeconds)
	return retries - 1
}

func (o *Orchestrator) fatalf(format string, args ...any) {
	fmt.Fprintf(o.hooks.Stderr, "lensctl: "+format+"\n", args...)
	o.hooks.Exit(ExitFatal)
}
