// Package check provides system diagnostics (the check subcommand) and
// pre-batch dependency validation for the external chdman and maxcso tools.
package check

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool is missing.
var (
	ErrChdmanNotFound = errors.New("chdman not found on PATH")
	ErrMaxcsoNotFound = errors.New("maxcso not found on PATH (needed for .cso inputs)")
)

// Logger is the minimal logging surface the diagnostics need. *logging.Logger
// satisfies it.
type Logger interface {
	Info(format string, args ...interface{})
	Success(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// RunCheck runs the interactive check flow: prints availability and version
// information for chdman and maxcso. Informational only; it does not stop on
// failure.
func RunCheck(cfg *config.Config, log Logger) {
	log.Info("=== System Check ===")
	checkChdman(cfg, log)
	checkMaxcso(cfg, log)
	log.Info("Archive support: zip, 7z, rar (built in)")
}

// checkChdman verifies chdman is reachable and logs its version banner.
func checkChdman(cfg *config.Config, log Logger) {
	path, err := exec.LookPath(cfg.ChdmanPath)
	if err != nil {
		log.Error("chdman not found (%s)", cfg.ChdmanPath)
		return
	}
	if banner := toolBanner(path); banner != "" {
		log.Success("chdman: %s", banner)
		return
	}
	log.Success("chdman: %s", path)
}

// checkMaxcso verifies the decompressor is reachable. Missing maxcso only
// matters for .cso inputs, so it is a warning here.
func checkMaxcso(cfg *config.Config, log Logger) {
	path, err := exec.LookPath(cfg.MaxcsoPath)
	if err != nil {
		log.Warn("maxcso not found (%s) - .cso inputs will fail", cfg.MaxcsoPath)
		return
	}
	log.Success("maxcso: %s", path)
}

// CheckDeps is the pre-batch validation: chdman must be reachable, and
// maxcso must be reachable when the work set contains compressed containers.
// Returns a sentinel error on failure so callers can surface it once up
// front.
func CheckDeps(cfg *config.Config, needMaxcso bool) error {
	if _, err := exec.LookPath(cfg.ChdmanPath); err != nil {
		return ErrChdmanNotFound
	}
	if needMaxcso {
		if _, err := exec.LookPath(cfg.MaxcsoPath); err != nil {
			return ErrMaxcsoNotFound
		}
	}
	return nil
}

// toolBanner returns the first output line of "<tool> --help", which for
// chdman carries the version string. Empty on any failure; chdman exits
// non-zero for --help so the exit status is ignored.
func toolBanner(path string) string {
	out, _ := exec.Command(path, "--help").CombinedOutput()
	line := strings.TrimSpace(string(out))
	if idx := strings.IndexByte(line, '\n'); idx > 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}
