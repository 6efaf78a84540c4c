package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/config"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/display"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/logging"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/pipeline"
)

var convertOpts struct {
	parallel      bool
	workers       int
	smallestFirst bool
	deleteSource  bool
}

var convertCmd = &cobra.Command{
	Use:   "convert <input_dir> <output_dir>",
	Short: "Convert disk images, containers and archives to CHD",
	Args:  cobra.ExactArgs(2),
	RunE:  runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.BoolVarP(&convertOpts.parallel, "parallel", "p", false, "Process multiple files concurrently")
	f.IntVar(&convertOpts.workers, "workers", config.DefaultWorkers, "Worker pool size in parallel mode")
	f.BoolVar(&convertOpts.smallestFirst, "smallest-first", false, "Convert smallest files first")
	f.BoolVar(&convertOpts.deleteSource, "delete-source", false, "Delete inputs (and cue/gdi sidecars) after success")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Parallel = convertOpts.parallel
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = convertOpts.workers
	}
	if cmd.Flags().Changed("smallest-first") {
		cfg.SmallestFirst = convertOpts.smallestFirst
	}
	if cmd.Flags().Changed("delete-source") {
		cfg.DeleteSource = convertOpts.deleteSource
	}
	cfg.InputDir = config.NormalizeDirArg(args[0])
	cfg.OutputDir = config.NormalizeDirArg(args[1])
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	display.PrintBanner()

	inputAbs, err := absPath(cfg.InputDir)
	if err != nil {
		return fmt.Errorf("input not found: %s", cfg.InputDir)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %s", cfg.OutputDir)
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("cannot resolve output path: %s", cfg.OutputDir)
	}
	if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
		return err
	}

	log.Info("=== chdbatch v%s ===", version)
	log.Info("In:  %s", cfg.InputDir)
	log.Info("Out: %s", cfg.OutputDir)
	log.Info("")

	stats := pipeline.Run(cmd.Context(), &cfg, log, batchEvents(&cfg, log))
	if failed := stats.Failed.Load(); failed > 0 {
		return fmt.Errorf("%d of %d conversions failed", failed, stats.Total)
	}
	return nil
}

// batchEvents wires the core's fire-and-forget progress and throughput sinks
// to the terminal logger.
func batchEvents(cfg *config.Config, log *logging.Logger) pipeline.Events {
	return pipeline.Events{
		Progress: func(u pipeline.ProgressUpdate) {
			if u.Phase == "converting" {
				log.Debug(cfg.Verbose, "%s: %.1f%%", u.Name, u.Percent)
				return
			}
			log.Info("[%d/%d] %s (%s)", u.Index, u.Total, u.Name, u.Phase)
		},
		Throughput: func(bytesPerSec float64) {
			if bytesPerSec > 0 {
				log.Debug(cfg.Verbose, "Writing at %s", display.FormatRate(bytesPerSec))
			}
		},
	}
}

// absPath returns the absolute path with symlinks resolved, for comparing
// the input vs output hierarchy.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}
