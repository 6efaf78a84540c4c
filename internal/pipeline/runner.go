package pipeline

import (
	"context"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/chdman"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/check"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/config"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/display"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/logging"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/naming"
)

// Run is the conversion batch entry point. It discovers the work set, orders
// it, fans out across the worker pool when parallel mode is enabled, and
// returns aggregate counters. Cancellation stops launching new items and
// aborts the ones in flight; committed outputs from already-finished items
// stay on disk.
func Run(ctx context.Context, cfg *config.Config, log logging.Sink, ev Events) *RunStats {
	stats := &RunStats{}
	start := time.Now()
	defer func() { ev.throughput(0) }()

	files, err := DiscoverConvert(cfg.InputDir)
	if err != nil {
		log.Error("File discovery failed: %v", err)
		return stats
	}
	if len(files) == 0 {
		log.Warn("No supported files found in %s", cfg.InputDir)
		return stats
	}

	items := make([]WorkItem, 0, len(files))
	needMaxcso := false
	if cfg.SmallestFirst {
		sortSmallestFirst(files)
	}
	for _, f := range files {
		kind, _ := Classify(f)
		if kind == KindCompressed {
			needMaxcso = true
		}
		stem := naming.Sanitize(strings.TrimSuffix(filepath.Base(f), filepath.Ext(f)))
		items = append(items, WorkItem{
			Source: f,
			Kind:   kind,
			Output: filepath.Join(cfg.OutputDir, stem+".chd"),
		})
	}
	stats.Total = len(items)

	// Dependency state is surfaced once up front; per-item staging repeats
	// the maxcso check so affected items fail with a logged cause.
	if depErr := check.CheckDeps(cfg, needMaxcso); depErr != nil {
		if depErr == check.ErrChdmanNotFound {
			log.Error("%v", depErr)
			return stats
		}
		log.Warn("%v", depErr)
	}

	log.Info("Found %d files", stats.Total)
	cores := chdman.CoreHint(cfg.Parallel, cfg.Workers)

	var done atomic.Int64
	process := func(ctx context.Context, item WorkItem) error {
		basename := filepath.Base(item.Source)
		itemStart := time.Now()
		err := convertOne(ctx, cfg, log, item, ev, cores)

		phase := "done"
		switch {
		case err == nil:
			stats.Succeeded.Add(1)
			log.Success("Converted %s in %s", basename,
				display.FormatDuration(int(time.Since(itemStart).Seconds())))
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			phase = "failed"
			stats.Failed.Add(1)
			log.Error("Failed: %s: %v", basename, err)
		}
		ev.progress(ProgressUpdate{
			Index: int(done.Add(1)),
			Total: stats.Total,
			Name:  basename,
			Phase: phase,
		})
		return nil
	}

	if cfg.Parallel && len(items) > 1 {
		log.Info("Parallel mode: %d workers, %d cores per conversion", cfg.Workers, cores)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Workers)
		for _, item := range items {
			item := item
			g.Go(func() error {
				// Stop launching new work once the batch is cancelled.
				if err := gctx.Err(); err != nil {
					return err
				}
				return process(gctx, item)
			})
		}
		if err := g.Wait(); err != nil {
			log.Warn("Interrupted")
		}
	} else {
		for _, item := range items {
			if ctx.Err() != nil {
				log.Warn("Interrupted")
				break
			}
			if err := process(ctx, item); err != nil {
				log.Warn("Interrupted")
				break
			}
		}
	}

	stats.Elapsed = time.Since(start)
	logSummary(log, "converted", stats)
	return stats
}

// RunVerify is the verification batch entry point: every discovered .chd
// file is checked with chdman's verify mode, and optionally moved into the
// valid/invalid mirror trees. A bad file never aborts the batch.
func RunVerify(ctx context.Context, cfg *config.Config, log logging.Sink, ev Events) *RunStats {
	stats := &RunStats{}
	start := time.Now()
	defer func() { ev.throughput(0) }()

	files, err := DiscoverVerify(cfg.InputDir, cfg.Recursive)
	if err != nil {
		log.Error("File discovery failed: %v", err)
		return stats
	}
	if len(files) == 0 {
		log.Warn("No .chd files found in %s", cfg.InputDir)
		return stats
	}
	stats.Total = len(files)

	if depErr := check.CheckDeps(cfg, false); depErr != nil {
		log.Error("%v", depErr)
		return stats
	}

	log.Info("Found %d files", stats.Total)

	var done atomic.Int64
	process := func(ctx context.Context, path string) error {
		basename := filepath.Base(path)
		err := verifyOne(ctx, cfg, log, cfg.InputDir, path)

		phase := "done"
		switch {
		case err == nil:
			stats.Succeeded.Add(1)
			log.Success("Valid: %s", basename)
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			phase = "failed"
			stats.Failed.Add(1)
			log.Error("Invalid: %s: %v", basename, err)
		}
		ev.progress(ProgressUpdate{
			Index: int(done.Add(1)),
			Total: stats.Total,
			Name:  basename,
			Phase: phase,
		})
		return nil
	}

	if cfg.Parallel && len(files) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Workers)
		for _, path := range files {
			path := path
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return process(gctx, path)
			})
		}
		if err := g.Wait(); err != nil {
			log.Warn("Interrupted")
		}
	} else {
		for _, path := range files {
			if ctx.Err() != nil {
				log.Warn("Interrupted")
				break
			}
			if err := process(ctx, path); err != nil {
				log.Warn("Interrupted")
				break
			}
		}
	}

	stats.Elapsed = time.Since(start)
	logSummary(log, "valid", stats)
	return stats
}

func logSummary(log logging.Sink, successLabel string, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done in %s: %d total, %d %s, %d failed",
		display.FormatDuration(int(stats.Elapsed.Seconds())),
		stats.Total, stats.Succeeded.Load(), successLabel, stats.Failed.Load())
}
