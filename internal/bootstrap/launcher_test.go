package bootstrap

import (
	"strings"
	"testing"

	"github.com/hollis-dev/lensctl/internal/testutil/testlog"
)

func TestLauncherBootstrapSuccess(t *testing.T) {
	testlog.Start(t)
	probe := newProcProbe()
	l := NewLauncher(probe.hooks())
	l.Program = "sh"
	l.Args = []string{"-c", "exit 0"}

	code, exited := captureExit(t, func() { l.Start("/proj") })
	if exited {
		t.Fatalf("unexpected exit code=%d", code)
	}
}

func TestLauncherRedirectsChildOutputToStderr(t *testing.T) {
	testlog.Start(t)
	probe := newProcProbe()
	l := NewLauncher(probe.hooks())
	l.Program = "sh"
	l.Args = []string{"-c", "echo bootstrap-out; echo bootstrap-err >&2"}

	_, exited := captureExit(t, func() { l.Start("/proj") })
	if exited {
		t.Fatalf("unexpected exit")
	}
	out := probe.stderr.String()
	if !strings.Contains(out, "bootstrap-out") || !strings.Contains(out, "bootstrap-err") {
		t.Fatalf("child output not redirected: %q", out)
	}
}

func TestLauncherBootstrapFailureIsFatal(t *testing.T) {
	testlog.Start(t)
	probe := newProcProbe()
	l := NewLauncher(probe.hooks())
	l.Program = "sh"
	l.Args = []string{"-c", "exit 7"}

	code, exited := captureExit(t, func() { l.Start("/proj") })
	if !exited || code != ExitLauncher {
		t.Fatalf("expected launcher exit code, got code=%d exited=%v", code, exited)
	}
	if !strings.Contains(probe.stderr.String(), "could not start the server") {
		t.Fatalf("missing diagnostic: %q", probe.stderr.String())
	}
}

func TestLauncherMissingProgramIsFatal(t *testing.T) {
	testlog.Start(t)
	probe := newProcProbe()
	l := NewLauncher(probe.hooks())
	l.Program = "/does/not/exist"

	code, exited := captureExit(t, func() { l.Start("/proj") })
	if !exited || code != ExitLauncher {
		t.Fatalf("expected launcher exit code, got code=%d exited=%v", code, exited)
	}
}
