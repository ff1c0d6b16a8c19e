package config

import (
	"fmt"
	"os"
)

// Template returns a starter lens.toml for new projects.
func Template() string {
	return lensTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(lensTemplate), 0o644)
}

const lensTemplate = `[project]
name = "my-project"

[daemon]
socket = ".lens/lensd.sock"
log = ".lens/lensd.log"
pid = ".lens/lensd.pid"
# warmup = "500ms"

[connect]
retries = 3
# timeout_seconds = 0 means no deadline
timeout_seconds = 0
autostart = true
retry_if_initializing = true
`
