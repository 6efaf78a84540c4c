// Package pipeline orchestrates file discovery, per-file conversion and
// verification, concurrency control, and batch summary reporting.
package pipeline

import (
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/chdman"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/extract"
)

// Sentinel errors for per-item failures raised inside the pipeline itself.
// Tool- and container-level sentinels live in the chdman and extract
// packages.
var (
	ErrDependencyMissing = errors.New("required external tool is missing")
	ErrStagingFailed     = errors.New("staging input failed")
)

// Kind classifies a discovered source file by how it must be staged.
type Kind int

const (
	KindImage      Kind = iota // Plain disk image, convert directly.
	KindCompressed             // Compressed single-image container (.cso).
	KindArchive                // Multi-entry archive (.zip/.7z/.rar).
)

// Classify maps a source path to its Kind. ok is false for unsupported
// extensions and for bare .bin files, which are cue-sheet data tracks and
// must not be scheduled on their own.
func Classify(path string) (kind Kind, ok bool) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".bin":
		return 0, false
	case ext == ".cso":
		return KindCompressed, true
	case extract.IsArchiveExt(ext):
		return KindArchive, true
	case chdman.IsImageExt(ext):
		return KindImage, true
	}
	return 0, false
}

// WorkItem is one unit of batch work. Immutable once enumerated; consumed by
// exactly one pipeline invocation.
type WorkItem struct {
	Source string
	Kind   Kind
	Output string
}

// ProgressUpdate is emitted on every item completion and, with a Percent
// value, while the converter reports progress for the current item. It is
// display-only and not retained.
type ProgressUpdate struct {
	Index   int // Items completed so far (completion order).
	Total   int
	Name    string
	Phase   string // "converting", "done", "failed".
	Percent float64
}

// Events carries the one-way, fire-and-forget callbacks consumed by the UI
// layer. Nil fields are skipped.
type Events struct {
	Progress   func(ProgressUpdate)
	Throughput chdman.ThroughputFunc
}

func (e Events) progress(u ProgressUpdate) {
	if e.Progress != nil {
		e.Progress(u)
	}
}

func (e Events) throughput(bytesPerSec float64) {
	if e.Throughput != nil {
		e.Throughput(bytesPerSec)
	}
}

// RunStats aggregates batch counters. Succeeded and Failed are updated
// atomically by concurrent pipelines; Total is fixed after discovery.
type RunStats struct {
	Total     int
	Succeeded atomic.Int64
	Failed    atomic.Int64
	Elapsed   time.Duration
}
