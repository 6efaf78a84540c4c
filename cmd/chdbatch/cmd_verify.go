package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/config"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/display"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/logging"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/pipeline"
)

var verifyOpts struct {
	recursive   bool
	parallel    bool
	workers     int
	moveValid   string
	moveInvalid string
}

var verifyCmd = &cobra.Command{
	Use:   "verify <dir>",
	Short: "Verify the integrity of existing CHD files",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func init() {
	f := verifyCmd.Flags()
	f.BoolVarP(&verifyOpts.recursive, "recursive", "r", false, "Scan subfolders too")
	f.BoolVarP(&verifyOpts.parallel, "parallel", "p", false, "Verify multiple files concurrently")
	f.IntVar(&verifyOpts.workers, "workers", config.DefaultWorkers, "Worker pool size in parallel mode")
	f.StringVar(&verifyOpts.moveValid, "move-valid", "", "Move valid files here, mirroring subfolders")
	f.StringVar(&verifyOpts.moveInvalid, "move-invalid", "", "Move invalid files here, mirroring subfolders")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("recursive") {
		cfg.Recursive = verifyOpts.recursive
	}
	if cmd.Flags().Changed("parallel") {
		cfg.Parallel = verifyOpts.parallel
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = verifyOpts.workers
	}
	if cmd.Flags().Changed("move-valid") {
		cfg.MoveValidDir = verifyOpts.moveValid
	}
	if cmd.Flags().Changed("move-invalid") {
		cfg.MoveInvalidDir = verifyOpts.moveInvalid
	}
	cfg.InputDir = config.NormalizeDirArg(args[0])
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	display.PrintBanner()
	log.Info("=== chdbatch v%s ===", version)
	log.Info("Verifying: %s", cfg.InputDir)
	log.Info("")

	stats := pipeline.RunVerify(cmd.Context(), &cfg, log, batchEvents(&cfg, log))
	if failed := stats.Failed.Load(); failed > 0 {
		return fmt.Errorf("%d of %d files failed verification", failed, stats.Total)
	}
	return nil
}
