package main

import (
	"github.com/spf13/cobra"

	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/check"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/logging"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Report availability of the external chdman and maxcso tools",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		return err
	}
	defer log.Close()

	check.RunCheck(&cfg, log)
	return nil
}
