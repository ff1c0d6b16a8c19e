package cli

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/hollis-dev/lensctl/internal/config"
)

type userConfig struct {
	Retries             int  `toml:"retries"`
	TimeoutSeconds      int  `toml:"timeout_seconds"`
	Autostart           bool `toml:"autostart"`
	RetryIfInitializing bool `toml:"retry_if_initializing"`
}

// applyUserOverrides layers a user-level config file over the project
// connect settings. Only keys present in the file take effect.
func applyUserOverrides(path string, cfg *config.ConnectConfig) error {
	var raw userConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load user config: %w", err)
	}

	if meta.IsDefined("retries") {
		if raw.Retries < 0 {
			return fmt.Errorf("user config: retries must be non-negative")
		}
		cfg.Retries = raw.Retries
	}
	if meta.IsDefined("timeout_seconds") {
		if raw.TimeoutSeconds < 0 {
			return fmt.Errorf("user config: timeout_seconds must be non-negative")
		}
		cfg.TimeoutSeconds = raw.TimeoutSeconds
	}
	if meta.IsDefined("autostart") {
		cfg.Autostart = raw.Autostart
	}
	if meta.IsDefined("retry_if_initializing") {
		cfg.RetryIfInitializing = raw.RetryIfInitializing
	}
	return nil
}
