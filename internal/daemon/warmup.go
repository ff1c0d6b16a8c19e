package daemon

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hollis-dev/lensctl/internal/observability"
	"github.com/hollis-dev/lensctl/internal/transport"
)

// warmup walks the project tree once and flips the server to ready.
// Clients observe the initializing state for at least WarmupFloor.
func (s *Server) warmup() {
	start := time.Now()
	files := 0
	err := filepath.WalkDir(s.cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != s.cfg.Root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasPrefix(name, ".") {
			files++
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Msg("warmup walk aborted")
	}
	if rest := s.cfg.WarmupFloor - time.Since(start); rest > 0 {
		time.Sleep(rest)
	}

	s.filesIndexed.Store(int64(files))
	observability.RecordWarmup(files, time.Since(start))
	s.state.Store(transport.StateReady)
	log.Info().Int("files", files).Dur("took", time.Since(start)).Msg("warmup complete")
}
