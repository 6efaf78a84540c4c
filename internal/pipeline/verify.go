package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/chdman"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/config"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/logging"
)

// verifyOne runs chdman's verify mode on one output file. Exit code 0 marks
// the file valid; valid and invalid files are optionally moved into mirror
// trees under the configured roots. Any error other than cancellation is
// reported to the caller as a failure of this single item.
func verifyOne(ctx context.Context, cfg *config.Config, log logging.Sink, root, path string) error {
	err := chdman.Run(ctx, cfg.ChdmanPath, chdman.VerifyArgs(path), chdman.RunOptions{
		OnStdout: func(line string) { log.Debug(cfg.Verbose, "chdman: %s", line) },
		OnStderr: func(line string) { log.Debug(cfg.Verbose, "chdman: %s", line) },
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		moveVerified(log, root, path, cfg.MoveValidDir)
		return nil
	}
	if errors.Is(err, chdman.ErrToolFailed) {
		moveVerified(log, root, path, cfg.MoveInvalidDir)
	}
	return err
}

// moveVerified relocates path into destRoot, preserving its subfolder
// structure relative to the scan root. A same-named file already at the
// destination skips the move (logged, not an error). destRoot == "" disables
// moving.
func moveVerified(log logging.Sink, root, path, destRoot string) {
	if destRoot == "" {
		return
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	dest := filepath.Join(destRoot, rel)

	if _, err := os.Stat(dest); err == nil {
		log.Warn("Not moving %s: %s already exists", filepath.Base(path), dest)
		return
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		log.Warn("Could not create %s: %v", filepath.Dir(dest), err)
		return
	}
	if err := movePath(path, dest); err != nil {
		log.Warn("Could not move %s: %v", filepath.Base(path), err)
	}
}

// movePath renames src to dest, falling back to copy+delete across
// filesystems.
func movePath(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := copyFile(src, dest); err != nil {
		return fmt.Errorf("copy fallback: %w", err)
	}
	return os.Remove(src)
}
