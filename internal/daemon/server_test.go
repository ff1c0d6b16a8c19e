package daemon

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hollis-dev/lensctl/internal/testutil/testlog"
	"github.com/hollis-dev/lensctl/internal/transport"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	root := t.TempDir()
	for _, name := range []string{"main.go", "lib.go", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("seed project file: %v", err)
		}
	}
	return Config{
		Root:    root,
		Project: "demo",
		Socket:  filepath.Join(root, ".lens", "lensd.sock"),
		PidPath: filepath.Join(root, ".lens", "lensd.pid"),
	}
}

func startServer(t *testing.T, cfg Config) (*Server, context.CancelFunc, chan error) {
	t.Helper()
	s := NewServer(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Errorf("server did not stop")
		}
	})
	return s, cancel, done
}

func dialReady(t *testing.T, socket string) *transport.Client {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		client, err := transport.Dial(context.Background(), socket, transport.Config{})
		if err == nil {
			return client
		}
		if !errors.Is(err, transport.ErrInitializing) &&
			!errors.Is(err, transport.ErrCantConnect) &&
			!errors.Is(err, transport.ErrStaleOrMissing) {
			t.Fatalf("unexpected dial failure: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("server never became ready")
	return nil
}

func TestServerServesHandshakeAndStatus(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t)
	_, _, _ = startServer(t, cfg)

	client := dialReady(t, cfg.Socket)
	defer client.Close()

	if client.Handshake().State != transport.StateReady {
		t.Fatalf("unexpected handshake: %+v", client.Handshake())
	}
	st, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Root != cfg.Root || st.Project != "demo" {
		t.Fatalf("unexpected status: %+v", st)
	}
	if st.FilesIndexed != 3 {
		t.Fatalf("expected 3 indexed files, got %d", st.FilesIndexed)
	}
	if _, err := ReadPidfile(cfg.PidPath); err != nil {
		t.Fatalf("pidfile: %v", err)
	}
}

func TestServerWarmupFloorHoldsInitializing(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t)
	cfg.WarmupFloor = 300 * time.Millisecond
	s, _, _ := startServer(t, cfg)

	deadline := time.Now().Add(time.Second)
	for s.State() != transport.StateInitializing && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.State() != transport.StateInitializing {
		t.Fatalf("expected an observable initializing window")
	}
	client := dialReady(t, cfg.Socket)
	client.Close()
}

func TestServerShutdownEndpoint(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t)
	_, _, done := startServer(t, cfg)

	client := dialReady(t, cfg.Socket)
	if err := client.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
		// Put the result back so startServer's cleanup can observe it too.
		done <- err
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not stop after shutdown request")
	}
	if _, err := os.Stat(cfg.Socket); !os.IsNotExist(err) {
		t.Fatalf("socket should be removed, stat err=%v", err)
	}
	if _, err := os.Stat(cfg.PidPath); !os.IsNotExist(err) {
		t.Fatalf("pidfile should be removed, stat err=%v", err)
	}
}

func TestServerRemovesStaleSocket(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t)
	if err := os.MkdirAll(filepath.Dir(cfg.Socket), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	ln, err := net.Listen("unix", cfg.Socket)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	// Keep the socket file on disk so it looks like a dead daemon's.
	ln.(*net.UnixListener).SetUnlinkOnClose(false)
	_ = ln.Close()

	_, _, _ = startServer(t, cfg)
	client := dialReady(t, cfg.Socket)
	client.Close()
}

func TestServerRefusesSecondInstance(t *testing.T) {
	testlog.Start(t)
	cfg := testConfig(t)
	_, _, _ = startServer(t, cfg)
	client := dialReady(t, cfg.Socket)
	defer client.Close()

	second := NewServer(cfg)
	err := second.Run(context.Background())
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected already-running refusal, got %v", err)
	}
}
