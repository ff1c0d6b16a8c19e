package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// MarkerFile is the sentinel filename that identifies a project root.
// The marker doubles as the project configuration file.
const MarkerFile = "lens.toml"

type Config struct {
	Project ProjectConfig `toml:"project"`
	Daemon  DaemonConfig  `toml:"daemon"`
	Connect ConnectConfig `toml:"connect"`
}

type ProjectConfig struct {
	Name string `toml:"name"`
}

type DaemonConfig struct {
	Socket string `toml:"socket"`
	Log    string `toml:"log"`
	Pid    string `toml:"pid"`
	Warmup string `toml:"warmup"`

	// WarmupFloor is the parsed form of Warmup.
	WarmupFloor time.Duration `toml:"-"`
}

type ConnectConfig struct {
	Retries             int  `toml:"retries"`
	TimeoutSeconds      int  `toml:"timeout_seconds"`
	Autostart           bool `toml:"autostart"`
	RetryIfInitializing bool `toml:"retry_if_initializing"`
}

// Default returns the configuration used when lens.toml sets nothing.
// TimeoutSeconds zero means no deadline.
func Default() Config {
	return Config{
		Daemon: DaemonConfig{
			Socket: ".lens/lensd.sock",
			Log:    ".lens/lensd.log",
			Pid:    ".lens/lensd.pid",
		},
		Connect: ConnectConfig{
			Retries:             3,
			Autostart:           true,
			RetryIfInitializing: true,
		},
	}
}

// Load reads the project configuration at path. Absent fields keep
// their defaults; present fields override them.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if raw := strings.TrimSpace(cfg.Daemon.Warmup); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse daemon.warmup: %w", err)
		}
		cfg.Daemon.WarmupFloor = d
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadRoot loads the marker config of a resolved project root.
func LoadRoot(root string) (Config, error) {
	return Load(filepath.Join(root, MarkerFile))
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Daemon.Socket) == "" {
		return fmt.Errorf("config missing daemon.socket")
	}
	if strings.TrimSpace(cfg.Daemon.Log) == "" {
		return fmt.Errorf("config missing daemon.log")
	}
	if strings.TrimSpace(cfg.Daemon.Pid) == "" {
		return fmt.Errorf("config missing daemon.pid")
	}
	if cfg.Connect.Retries < 0 {
		return fmt.Errorf("connect.retries must be non-negative")
	}
	if cfg.Connect.TimeoutSeconds < 0 {
		return fmt.Errorf("connect.timeout_seconds must be non-negative")
	}
	if cfg.Daemon.WarmupFloor < 0 {
		return fmt.Errorf("daemon.warmup must be non-negative")
	}
	return nil
}

// SocketPath resolves the daemon socket location under root.
func (c Config) SocketPath(root string) string {
	return rootedPath(root, c.Daemon.Socket)
}

// LogPath resolves the daemon log location under root.
func (c Config) LogPath(root string) string {
	return rootedPath(root, c.Daemon.Log)
}

// PidPath resolves the daemon pidfile location under root.
func (c Config) PidPath(root string) string {
	return rootedPath(root, c.Daemon.Pid)
}

func rootedPath(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
