package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hollis-dev/lensctl/internal/config"
)

var (
	ErrPathNotFound = errors.New("bootstrap: path not found")
	ErrRootNotFound = errors.New("bootstrap: project root not found")
)

// maxAscent bounds the upward walk so a pathological filesystem cannot
// stall root resolution.
const maxAscent = 50

// FindRoot resolves the project root for start, which may be a file, a
// directory, or empty (current directory). The root is the closest
// directory at or above start that contains the marker file. The
// result is absolute. No state is cached between calls.
func FindRoot(start string) (string, error) {
	if start == "" {
		start = "."
	}
	info, err := os.Stat(start)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPathNotFound, start)
	}
	dir := start
	if !info.IsDir() {
		dir = filepath.Dir(start)
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrPathNotFound, start)
	}

	for i := 0; i < maxAscent; i++ {
		marker := filepath.Join(dir, config.MarkerFile)
		if _, err := os.Stat(marker); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%w: no %s at or above %s", ErrRootNotFound, config.MarkerFile, start)
}
