// Package config holds runtime configuration: defaults, optional YAML
// config-file overlay, and validation. Flags are bound by the cmd layer.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// DefaultWorkers is the worker-pool cap used when parallel mode is enabled.
const DefaultWorkers = 3

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overlaid from a YAML file, and then mutated by CLI flags before
// being passed (by pointer) to packages that need it.
type Config struct {
	// Paths (set from positional args).
	InputDir  string `yaml:"-"`
	OutputDir string `yaml:"-"`

	// External tools. Bare names are resolved on PATH; absolute paths are
	// used as-is.
	ChdmanPath string `yaml:"chdman"`
	MaxcsoPath string `yaml:"maxcso"`

	// Conversion behavior.
	Parallel      bool `yaml:"parallel"`       // Fan out across Workers pipelines.
	Workers       int  `yaml:"workers"`        // Pool cap when Parallel. Default: 3.
	SmallestFirst bool `yaml:"smallest_first"` // Sort work set ascending by size.
	DeleteSource  bool `yaml:"delete_source"`  // Delete input (and sidecars) after success.

	// Verification behavior.
	Recursive      bool   `yaml:"recursive"`    // Scan subfolders for .chd files.
	MoveValidDir   string `yaml:"move_valid"`   // Move verified-good files here (mirrors subfolders).
	MoveInvalidDir string `yaml:"move_invalid"` // Move verified-bad files here (mirrors subfolders).

	// Display and logging.
	Verbose   bool      `yaml:"verbose"`
	ColorMode ColorMode `yaml:"color"`    // Default: "auto".
	LogFile   string    `yaml:"log_file"` // Optional log file path.
}

// DefaultConfig returns a Config with all defaults applied. Used as the base
// before the YAML overlay and CLI flags.
func DefaultConfig() Config {
	return Config{
		ChdmanPath: "chdman",
		MaxcsoPath: "maxcso",
		Workers:    DefaultWorkers,
		ColorMode:  ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and numeric ranges. Path presence is checked by
// the individual subcommands since verify needs no output directory.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1 (got %d)", c.Workers)
	}
	if c.ChdmanPath == "" {
		return errors.New("chdman path must not be empty")
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) the resolved input directory. This prevents the batch from discovering
// its own output files. Both arguments must be absolute, symlink-resolved
// paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}
