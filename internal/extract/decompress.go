// Package extract materializes a usable plain disk image inside a staging
// directory, either by decompressing a compressed-image container through the
// external maxcso tool or by unpacking a multi-entry archive (zip, 7z, rar).
package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/chdman"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/naming"
)

var (
	// ErrToolUnavailable indicates the decompressor binary is not present.
	ErrToolUnavailable = errors.New("decompressor not available")

	// ErrOutputMissing indicates the decompressor exited successfully but
	// produced no output file.
	ErrOutputMissing = errors.New("decompressor produced no output file")
)

// pollInterval is the fixed output-growth sampling interval during
// decompression.
const pollInterval = time.Second

// Decompress invokes the external decompressor on container, writing the
// plain image to a safe temp name inside destDir. While the process runs the
// destination file's size is polled once per second and the derived write
// rate is emitted to onRate. Tool stderr/stdout lines go verbatim to
// onToolLine.
func Decompress(ctx context.Context, tool, container, destDir string,
	onRate chdman.ThroughputFunc, onToolLine func(string)) (string, error) {
	if _, err := exec.LookPath(tool); err != nil {
		return "", fmt.Errorf("%w: %s", ErrToolUnavailable, tool)
	}

	out := naming.TempPath(destDir, ".iso")
	args := []string{"--decompress", container, "-o", out}
	opts := chdman.RunOptions{OnStdout: onToolLine, OnStderr: onToolLine}

	if err := chdman.RunWithThroughput(ctx, tool, args, out, pollInterval, onRate, opts); err != nil {
		return "", err
	}
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutputMissing, filepath.Base(container))
	}
	return out, nil
}
