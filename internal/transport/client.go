// Package transport owns the client side of the lensd admin API.
//
// Ownership boundary:
// - dialing the daemon's unix socket
// - the handshake that classifies connection failures
// - typed calls against the admin endpoints
//
// The retry policy around these calls belongs to internal/bootstrap.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hollis-dev/lensctl/internal/version"
)

// Daemon states reported by the handshake endpoint.
const (
	StateInitializing = "initializing"
	StateReady        = "ready"
	StateBusy         = "busy"
)

// Handshake is the daemon's identity reply on /v1/handshake.
type Handshake struct {
	Version string `json:"version"`
	State   string `json:"state"`
	Pid     int    `json:"pid"`
}

// Status is the daemon's report on /v1/status.
type Status struct {
	Root         string `json:"root"`
	Project      string `json:"project,omitempty"`
	Pid          int    `json:"pid"`
	State        string `json:"state"`
	UptimeSec    int64  `json:"uptime_sec"`
	FilesIndexed int    `json:"files_indexed"`
}

// Config defines transport timeouts.
type Config struct {
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		ConnectTimeout: 5 * time.Second,
		RequestTimeout: 10 * time.Second,
	}
}

func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	return c
}

// Client is a live connection handle to one daemon.
type Client struct {
	socket    string
	http      *http.Client
	handshake Handshake
}

// Dial probes the daemon behind the unix socket and classifies the
// outcome. On success the returned client has completed a handshake
// against a ready daemon of the same build version.
func Dial(ctx context.Context, socket string, cfg Config) (*Client, error) {
	cfg = cfg.WithDefaults()
	if _, err := os.Stat(socket); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no socket at %s", ErrStaleOrMissing, socket)
		}
		return nil, fmt.Errorf("stat socket %s: %w", socket, err)
	}

	c := &Client{
		socket: socket,
		http: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					d := net.Dialer{Timeout: cfg.ConnectTimeout}
					return d.DialContext(ctx, "unix", socket)
				},
			},
		},
	}

	hs, err := c.fetchHandshake(ctx)
	if err != nil {
		return nil, err
	}
	if hs.Version != version.Version {
		return nil, fmt.Errorf("%w: server version %q, client version %q",
			ErrStaleOrMissing, hs.Version, version.Version)
	}
	switch hs.State {
	case StateReady:
		c.handshake = hs
		return c, nil
	case StateInitializing:
		return nil, fmt.Errorf("%w (pid %d)", ErrInitializing, hs.Pid)
	case StateBusy:
		return nil, fmt.Errorf("%w (pid %d)", ErrBusy, hs.Pid)
	default:
		return nil, fmt.Errorf("transport: unexpected server state %q", hs.State)
	}
}

func (c *Client) fetchHandshake(ctx context.Context) (Handshake, error) {
	var hs Handshake
	if err := c.get(ctx, "/v1/handshake", &hs); err != nil {
		return Handshake{}, err
	}
	return hs, nil
}

// Handshake returns the handshake captured when the client connected.
func (c *Client) Handshake() Handshake {
	return c.handshake
}

// Socket returns the unix socket path this client is bound to.
func (c *Client) Socket() string {
	return c.socket
}

// Status fetches the daemon's current status report.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	if err := c.get(ctx, "/v1/status", &st); err != nil {
		return Status{}, err
	}
	return st, nil
}

// Shutdown asks the daemon to exit. The socket disappears once the
// daemon has wound down.
func (c *Client) Shutdown(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://lensd/v1/shutdown", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCantConnect, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("transport: shutdown rejected: %s", readError(resp.Body))
	}
	return nil
}

// Close releases idle connections; the daemon keeps running.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://lensd"+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCantConnect, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("transport: %s returned %d: %s", path, resp.StatusCode, readError(resp.Body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("transport: decode %s: %w", path, err)
	}
	return nil
}

func readError(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil {
		return "unreadable response"
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return "empty response"
	}
	return msg
}
