package main

import (
	"github.com/spf13/cobra"

	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/config"
)

// version is set at build time via -ldflags (e.g. Makefile).
var version = "1.0.0-dev"

var rootOpts struct {
	configPath string
	color      string
	logFile    string
	verbose    bool
	chdman     string
	maxcso     string
}

var rootCmd = &cobra.Command{
	Use:   "chdbatch",
	Short: "Batch disk-image to CHD conversion and verification",
	Long: `chdbatch converts disk images (.cue, .iso, .img, .bin, .gdi, .toc, .raw),
compressed containers (.cso) and archives (.zip, .7z, .rar) into CHD files by
driving the external chdman tool, and verifies existing CHD files.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootOpts.configPath, "config", "chdbatch.yaml", "Optional YAML config file")
	pf.StringVar(&rootOpts.color, "color", string(config.ColorAuto), "Color output: auto, always or never")
	pf.StringVar(&rootOpts.logFile, "log-file", "", "Append log lines to this file")
	pf.BoolVarP(&rootOpts.verbose, "verbose", "v", false, "Verbose (debug) logging")
	pf.StringVar(&rootOpts.chdman, "chdman", "", "Path to the chdman executable")
	pf.StringVar(&rootOpts.maxcso, "maxcso", "", "Path to the maxcso executable")

	rootCmd.AddCommand(convertCmd, verifyCmd, checkCmd)
}

// loadConfig builds the effective Config: defaults, then the optional YAML
// overlay, then explicit global flags. A --config path given explicitly must
// exist; the default path is optional.
func loadConfig() (config.Config, error) {
	cfg := config.DefaultConfig()

	pf := rootCmd.PersistentFlags()
	optional := !pf.Changed("config")
	if err := config.LoadFile(rootOpts.configPath, &cfg, optional); err != nil {
		return cfg, err
	}

	if pf.Changed("color") {
		cfg.ColorMode = config.ColorMode(rootOpts.color)
	}
	if pf.Changed("log-file") {
		cfg.LogFile = rootOpts.logFile
	}
	if rootOpts.verbose {
		cfg.Verbose = true
	}
	if rootOpts.chdman != "" {
		cfg.ChdmanPath = rootOpts.chdman
	}
	if rootOpts.maxcso != "" {
		cfg.MaxcsoPath = rootOpts.maxcso
	}
	return cfg, nil
}
