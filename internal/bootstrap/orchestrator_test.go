package bootstrap

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hollis-dev/lensctl/internal/testutil/testlog"
	"github.com/hollis-dev/lensctl/internal/transport"
)

type scriptedDialer struct {
	outcomes []error
	calls    int
}

// next replays the scripted outcomes; the final outcome repeats.
func (s *scriptedDialer) next(context.Context, string, transport.Config) (*transport.Client, error) {
	i := s.calls
	s.calls++
	if i >= len(s.outcomes) {
		i = len(s.outcomes) - 1
	}
	if s.outcomes[i] == nil {
		return &transport.Client{}, nil
	}
	return nil, s.outcomes[i]
}

type fakeStarter struct {
	roots []string
}

func (f *fakeStarter) Start(root string) {
	f.roots = append(f.roots, root)
}

func newTestOrchestrator(cfg OrchestratorConfig, probe *procProbe, dialer *scriptedDialer) (*Orchestrator, *fakeStarter) {
	hooks := probe.hooks()
	o := NewOrchestrator(cfg, NewGovernor(hooks), hooks)
	starter := &fakeStarter{}
	o.starter = starter
	o.dial = dialer.next
	return o, starter
}

func TestConnectFirstAttempt(t *testing.T) {
	testlog.Start(t)
	probe := newProcProbe()
	dialer := &scriptedDialer{outcomes: []error{nil}}
	o, _ := newTestOrchestrator(DefaultOrchestratorConfig(), probe, dialer)

	var client *transport.Client
	code, exited := captureExit(t, func() { client = o.Connect(context.Background(), "/proj") })
	if exited {
		t.Fatalf("unexpected exit code=%d", code)
	}
	if client == nil {
		t.Fatalf("expected a connection handle")
	}
	if dialer.calls != 1 || len(probe.slept) != 0 {
		t.Fatalf("unexpected attempts=%d sleeps=%v", dialer.calls, probe.slept)
	}
}

func TestBusyConsumesExactRetryBudget(t *testing.T) {
	testlog.Start(t)
	probe := newProcProbe()
	dialer := &scriptedDialer{outcomes: []error{transport.ErrBusy}}
	cfg := DefaultOrchestratorConfig()
	cfg.Retries = 3
	o, _ := newTestOrchestrator(cfg, probe, dialer)

	code, exited := captureExit(t, func() { o.Connect(context.Background(), "/proj") })
	if !exited || code != ExitFatal {
		t.Fatalf("expected fatal exit, got code=%d exited=%v", code, exited)
	}
	// Budget of 3: three delayed re-attempts, then the fourth failure
	// gives up.
	if dialer.calls != 4 {
		t.Fatalf("expected 4 attempts, got %d", dialer.calls)
	}
	if len(probe.slept) != 3 {
		t.Fatalf("expected 3 retry sleeps, got %v", probe.slept)
	}
	if !strings.Contains(probe.stderr.String(), "out of retries") {
		t.Fatalf("missing diagnostic: %q", probe.stderr.String())
	}
}

func TestCantConnectIsTransient(t *testing.T) {
	testlog.Start(t)
	probe := newProcProbe()
	dialer := &scriptedDialer{outcomes: []error{transport.ErrCantConnect, transport.ErrCantConnect, nil}}
	o, _ := newTestOrchestrator(DefaultOrchestratorConfig(), probe, dialer)

	code, exited := captureExit(t, func() { o.Connect(context.Background(), "/proj") })
	if exited {
		t.Fatalf("unexpected exit code=%d", code)
	}
	if dialer.calls != 3 || len(probe.slept) != 2 {
		t.Fatalf("unexpected attempts=%d sleeps=%v", dialer.calls, probe.slept)
	}
}

func TestInitializingFatalWhenNotWaiting(t *testing.T) {
	testlog.Start(t)
	probe := newProcProbe()
	dialer := &scriptedDialer{outcomes: []error{transport.ErrInitializing}}
	cfg := DefaultOrchestratorConfig()
	cfg.RetryIfInitializing = false
	o, _ := newTestOrchestrator(cfg, probe, dialer)

	code, exited := captureExit(t, func() { o.Connect(context.Background(), "/proj") })
	if !exited || code != ExitFatal {
		t.Fatalf("expected fatal exit, got code=%d exited=%v", code, exited)
	}
	if dialer.calls != 1 || len(probe.slept) != 0 {
		t.Fatalf("no retry budget may be consumed: attempts=%d sleeps=%v", dialer.calls, probe.slept)
	}
}

func TestInitializingDoesNotConsumeBudget(t *testing.T) {
	testlog.Start(t)
	probe := newProcProbe()
	dialer := &scriptedDialer{outcomes: []error{
		transport.ErrInitializing,
		transport.ErrInitializing,
		transport.ErrInitializing,
		nil,
	}}
	cfg := DefaultOrchestratorConfig()
	cfg.Retries = 0
	o, _ := newTestOrchestrator(cfg, probe, dialer)

	code, exited := captureExit(t, func() { o.Connect(context.Background(), "/proj") })
	if exited {
		t.Fatalf("zero budget must still wait out initialization, exit code=%d", code)
	}
	if dialer.calls != 4 {
		t.Fatalf("expected 4 attempts, got %d", dialer.calls)
	}
	for _, d := range probe.slept {
		if d != time.Second {
			t.Fatalf("initializing wait should sleep 1s, got %v", probe.slept)
		}
	}
}

func TestDeadlineBeatsRetryBudget(t *testing.T) {
	testlog.Start(t)
	probe := newProcProbe()
	dialer := &scriptedDialer{outcomes: []error{transport.ErrBusy}}
	cfg := DefaultOrchestratorConfig()
	cfg.Retries = 100
	hooks := probe.hooks()
	g := NewGovernor(hooks)
	g.Arm(5)
	o := NewOrchestrator(cfg, g, hooks)
	o.dial = dialer.next
	o.starter = &fakeStarter{}

	code, exited := captureExit(t, func() { o.Connect(context.Background(), "/proj") })
	if !exited || code != ExitTimeout {
		t.Fatalf("expected timeout exit, got code=%d exited=%v", code, exited)
	}
}

func TestStaleServerAutostarts(t *testing.T) {
	testlog.Start(t)
	probe := newProcProbe()
	dialer := &scriptedDialer{outcomes: []error{transport.ErrStaleOrMissing, nil}}
	cfg := DefaultOrchestratorConfig()
	cfg.Retries = 1
	o, starter := newTestOrchestrator(cfg, probe, dialer)

	code, exited := captureExit(t, func() { o.Connect(context.Background(), "/proj") })
	if exited {
		t.Fatalf("unexpected exit code=%d", code)
	}
	if len(starter.roots) != 1 || starter.roots[0] != "/proj" {
		t.Fatalf("expected one autostart for /proj, got %v", starter.roots)
	}
	if len(probe.slept) != 1 || probe.slept[0] != 3*time.Second {
		t.Fatalf("expected one 3s post-start delay, got %v", probe.slept)
	}
}

func TestStaleServerWithoutAutostartIsFatal(t *testing.T) {
	testlog.Start(t)
	probe := newProcProbe()
	dialer := &scriptedDialer{outcomes: []error{transport.ErrStaleOrMissing}}
	cfg := DefaultOrchestratorConfig()
	cfg.Autostart = false
	o, starter := newTestOrchestrator(cfg, probe, dialer)

	code, exited := captureExit(t, func() { o.Connect(context.Background(), "/proj") })
	if !exited || code != ExitFatal {
		t.Fatalf("expected fatal exit, got code=%d exited=%v", code, exited)
	}
	if len(starter.roots) != 0 {
		t.Fatalf("must not autostart: %v", starter.roots)
	}
	if !strings.Contains(probe.stderr.String(), "no server running") {
		t.Fatalf("missing diagnostic: %q", probe.stderr.String())
	}
}

func TestUnknownFailureNeverRetried(t *testing.T) {
	testlog.Start(t)
	probe := newProcProbe()
	dialer := &scriptedDialer{outcomes: []error{errors.New("wire corruption")}}
	o, _ := newTestOrchestrator(DefaultOrchestratorConfig(), probe, dialer)

	code, exited := captureExit(t, func() { o.Connect(context.Background(), "/proj") })
	if !exited || code != ExitFatal {
		t.Fatalf("expected fatal exit, got code=%d exited=%v", code, exited)
	}
	if dialer.calls != 1 || len(probe.slept) != 0 {
		t.Fatalf("unknown failures must not loop: attempts=%d sleeps=%v", dialer.calls, probe.slept)
	}
}
