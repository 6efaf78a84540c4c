package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/chdman"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/config"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/cue"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/extract"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/logging"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/naming"
)

// throughputInterval is the fixed output-growth sampling period during
// conversion.
const throughputInterval = time.Second

// convertOne runs the full per-item state machine: stage input → convert →
// commit. On any failure the partially written destination is deleted and the
// original source is left untouched. The staging directory is destroyed on
// every path; cancellation uses the bounded forced cleanup.
func convertOne(ctx context.Context, cfg *config.Config, log logging.Sink, item WorkItem, ev Events, cores int) (err error) {
	st, err := newStaging()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStagingFailed, err)
	}
	defer func() {
		st.cleanup(log, ctx.Err() != nil)
	}()

	staged, err := stageInput(ctx, cfg, log, item, st, ev)
	if err != nil {
		return err
	}

	mode := chdman.ModeForExt(filepath.Ext(staged))
	args := chdman.ConvertArgs(mode, staged, item.Output, cores)
	log.Debug(cfg.Verbose, "chdman %s", strings.Join(args, " "))

	runErr := chdman.RunWithThroughput(ctx, cfg.ChdmanPath, args, item.Output,
		throughputInterval, ev.Throughput, chdman.RunOptions{
			OnStdout: func(line string) { log.Debug(cfg.Verbose, "chdman: %s", line) },
			OnStderr: func(line string) {
				if pct, ok := chdman.ParseProgress(line); ok {
					ev.progress(ProgressUpdate{Name: filepath.Base(item.Source), Phase: "converting", Percent: pct})
					return
				}
				log.Debug(cfg.Verbose, "chdman: %s", line)
			},
		})
	if runErr != nil {
		removePartial(item.Output, log)
		return runErr
	}

	if cfg.DeleteSource {
		deleteSourceAndSidecars(log, item.Source)
	}
	return nil
}

// stageInput materializes the file handed to chdman inside the staging
// directory, dispatching on the item's kind.
func stageInput(ctx context.Context, cfg *config.Config, log logging.Sink, item WorkItem, st *staging, ev Events) (string, error) {
	switch item.Kind {
	case KindCompressed:
		if _, err := exec.LookPath(cfg.MaxcsoPath); err != nil {
			return "", fmt.Errorf("%w: %s", ErrDependencyMissing, cfg.MaxcsoPath)
		}
		return extract.Decompress(ctx, cfg.MaxcsoPath, item.Source, st.dir,
			ev.Throughput, func(line string) { log.Debug(cfg.Verbose, "maxcso: %s", line) })

	case KindArchive:
		found, err := extract.Archive(ctx, item.Source, st.dir)
		if err != nil {
			return "", err
		}
		// Descriptors stay in place so their sidecar references, extracted
		// alongside, still resolve. Single images are re-copied under a safe
		// temp name: unusual characters can survive extraction inside entry
		// names.
		if chdman.IsDescriptorExt(filepath.Ext(found)) {
			return found, nil
		}
		staged := naming.TempPath(st.dir, filepath.Ext(found))
		if err := copyFile(found, staged); err != nil {
			return "", fmt.Errorf("%w: %v", ErrStagingFailed, err)
		}
		return staged, nil

	default:
		return stagePlainImage(item.Source, st)
	}
}

// stagePlainImage copies a plain image into the staging directory. Single
// files get a random safe temp name. Multi-file descriptors (.cue/.gdi/.toc)
// keep their original base names, and their referenced sidecar tracks are
// copied alongside, so the descriptor's internal references still resolve;
// the uniquely named staging directory provides the path safety.
func stagePlainImage(source string, st *staging) (string, error) {
	ext := strings.ToLower(filepath.Ext(source))
	if !chdman.IsDescriptorExt(ext) {
		staged := naming.TempPath(st.dir, ext)
		if err := copyFile(source, staged); err != nil {
			return "", fmt.Errorf("%w: %v", ErrStagingFailed, err)
		}
		return staged, nil
	}

	refs, err := cue.ReferencedFiles(source)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStagingFailed, err)
	}
	// Base names are preserved exactly: the descriptor's FILE references must
	// still resolve, and any name that exists on disk is already valid here.
	for _, ref := range append(refs, source) {
		dst := filepath.Join(st.dir, filepath.Base(ref))
		if err := copyFile(ref, dst); err != nil {
			return "", fmt.Errorf("%w: %v", ErrStagingFailed, err)
		}
	}
	return filepath.Join(st.dir, filepath.Base(source)), nil
}

// removePartial best-effort deletes a partially written destination file.
func removePartial(path string, log logging.Sink) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn("Could not remove partial output %s: %v", path, err)
	}
}

// deleteSourceAndSidecars removes the original input after a successful
// conversion. For multi-file descriptors the referenced data files are
// deleted too. All deletions are best-effort: individual failures are logged
// and never abort the batch.
func deleteSourceAndSidecars(log logging.Sink, source string) {
	refs, err := cue.ReferencedFiles(source)
	if err != nil {
		log.Warn("Could not resolve sidecar files for %s: %v", filepath.Base(source), err)
	}
	for _, path := range append(refs, source) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("Could not delete source %s: %v", path, err)
		}
	}
}

// copyFile copies src to dst (creating or truncating dst).
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr != nil {
		return copyErr
	}
	return closeErr
}
