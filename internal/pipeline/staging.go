package pipeline

import (
	"os"
	"time"

	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/logging"
)

// forcedCleanupWait bounds staging-directory deletion on cancellation paths
// so a stuck filesystem never blocks shutdown indefinitely.
const forcedCleanupWait = 5 * time.Second

// staging is the exclusively-owned temporary directory for one in-flight
// WorkItem. It is never shared across items and is destroyed when the owning
// item finishes, regardless of outcome.
type staging struct {
	dir string
}

func newStaging() (*staging, error) {
	dir, err := os.MkdirTemp("", "chdbatch-")
	if err != nil {
		return nil, err
	}
	return &staging{dir: dir}, nil
}

// cleanup recursively deletes the staging directory. "Already gone" counts as
// success; any other error is logged and never fails the batch. With
// forced=true the deletion runs under a short bounded wait.
func (s *staging) cleanup(log logging.Sink, forced bool) {
	if s == nil || s.dir == "" {
		return
	}
	if !forced {
		if err := os.RemoveAll(s.dir); err != nil && !os.IsNotExist(err) {
			log.Warn("Staging cleanup failed for %s: %v", s.dir, err)
		}
		return
	}

	done := make(chan error, 1)
	go func() { done <- os.RemoveAll(s.dir) }()
	select {
	case err := <-done:
		if err != nil && !os.IsNotExist(err) {
			log.Warn("Staging cleanup failed for %s: %v", s.dir, err)
		}
	case <-time.After(forcedCleanupWait):
		log.Warn("Staging cleanup timed out for %s", s.dir)
	}
}
