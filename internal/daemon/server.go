package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/hollis-dev/lensctl/internal/observability"
	"github.com/hollis-dev/lensctl/internal/transport"
	"github.com/hollis-dev/lensctl/internal/version"
)

var ErrAlreadyRunning = errors.New("daemon: server already running on socket")

// Config describes one daemon instance bound to one project root.
type Config struct {
	Root    string
	Project string
	Socket  string
	PidPath string

	// WarmupFloor is the minimum time spent in the initializing state,
	// regardless of how fast the index pass finishes.
	WarmupFloor time.Duration
}

// Server is the lensd runtime: an admin API on a unix socket plus the
// warmup index pass that gates the ready state.
type Server struct {
	cfg     Config
	router  *gin.Engine
	started time.Time

	state        atomic.Value // transport state string
	filesIndexed atomic.Int64

	quit     chan struct{}
	quitOnce sync.Once
}

func NewServer(cfg Config) *Server {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetrics())

	s := &Server{
		cfg:    cfg,
		router: r,
		quit:   make(chan struct{}),
	}
	s.state.Store(transport.StateInitializing)

	r.GET("/v1/handshake", s.handleHandshake)
	r.GET("/v1/status", s.handleStatus)
	r.POST("/v1/shutdown", s.handleShutdown)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return s
}

// Run serves the admin API until ctx is cancelled or a shutdown is
// requested. The socket and pidfile are cleaned up on the way out.
func (s *Server) Run(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.cfg.Socket), 0o755); err != nil {
		return fmt.Errorf("daemon: prepare socket dir: %w", err)
	}
	if err := s.claimSocket(ctx); err != nil {
		return err
	}
	ln, err := net.Listen("unix", s.cfg.Socket)
	if err != nil {
		return fmt.Errorf("daemon: listen %s: %w", s.cfg.Socket, err)
	}
	if err := writePidfile(s.cfg.PidPath); err != nil {
		_ = ln.Close()
		_ = os.Remove(s.cfg.Socket)
		return err
	}
	defer func() {
		_ = os.Remove(s.cfg.Socket)
		_ = os.Remove(s.cfg.PidPath)
	}()

	s.started = time.Now()
	go s.warmup()

	srv := &http.Server{Handler: s.router}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	log.Info().Str("socket", s.cfg.Socket).Str("root", s.cfg.Root).Msg("lensd serving")
	select {
	case <-ctx.Done():
	case <-s.quit:
	case err := <-errCh:
		return fmt.Errorf("daemon: serve: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("daemon: shutdown: %w", err)
	}
	log.Info().Msg("lensd stopped")
	return nil
}

// claimSocket removes a stale socket left by a dead daemon, or refuses
// to start when a live daemon still answers on it.
func (s *Server) claimSocket(ctx context.Context) error {
	if _, err := os.Stat(s.cfg.Socket); err != nil {
		return nil
	}
	probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	client, err := transport.Dial(probeCtx, s.cfg.Socket, transport.Config{})
	if err == nil {
		client.Close()
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, s.cfg.Socket)
	}
	if errors.Is(err, transport.ErrInitializing) || errors.Is(err, transport.ErrBusy) {
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, s.cfg.Socket)
	}
	log.Warn().Str("socket", s.cfg.Socket).Msg("removing stale socket")
	return os.Remove(s.cfg.Socket)
}

// State returns the state reported to handshakes.
func (s *Server) State() string {
	return s.state.Load().(string)
}

func (s *Server) handleHandshake(c *gin.Context) {
	c.JSON(http.StatusOK, transport.Handshake{
		Version: version.Version,
		State:   s.State(),
		Pid:     os.Getpid(),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, transport.Status{
		Root:         s.cfg.Root,
		Project:      s.cfg.Project,
		Pid:          os.Getpid(),
		State:        s.State(),
		UptimeSec:    int64(time.Since(s.started).Seconds()),
		FilesIndexed: int(s.filesIndexed.Load()),
	})
}

func (s *Server) handleShutdown(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
	s.quitOnce.Do(func() { close(s.quit) })
}
