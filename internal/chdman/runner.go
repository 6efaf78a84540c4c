// Package chdman builds and executes chdman commands: process launch with
// line-streamed output capture, kill-on-cancel, the extension→mode decision
// table, progress-line parsing, and output-file throughput sampling.
package chdman

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"
)

// ErrToolFailed indicates the external process exited with a non-zero status.
// Exit code is the sole success signal; stderr content is diagnostic only.
var ErrToolFailed = errors.New("external tool exited non-zero")

// waitDelay bounds how long Wait blocks on the I/O pipes after the process
// exits or is killed, so orphaned descendants holding the pipes never hang
// shutdown.
const waitDelay = 5 * time.Second

// RunOptions carries the optional knobs for one external-tool invocation.
// Nil callbacks are skipped.
type RunOptions struct {
	WorkDir  string
	OnStdout func(line string)
	OnStderr func(line string)
}

// Run executes exe with args to completion, forwarding stdout and stderr
// line-by-line to the callbacks. If ctx is cancelled while the process is
// alive it is killed and ctx's error is returned instead of an exit status.
// The process handle is released on every path.
func Run(ctx context.Context, exe string, args []string, opts RunOptions) error {
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Dir = opts.WorkDir
	cmd.WaitDelay = waitDelay

	outw := newLineWriter(opts.OnStdout)
	errw := newLineWriter(opts.OnStderr)
	cmd.Stdout = outw
	cmd.Stderr = errw

	runErr := cmd.Run()
	outw.Flush()
	errw.Flush()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return fmt.Errorf("%w: %s exit code %d", ErrToolFailed, exe, exitErr.ExitCode())
		}
		return fmt.Errorf("run %s: %w", exe, runErr)
	}
	return nil
}

// lineWriter splits a byte stream into lines and hands each completed line to
// fn. exec calls Write from a single copy goroutine per stream, so no locking
// is needed; a nil fn discards the stream.
type lineWriter struct {
	fn  func(string)
	buf bytes.Buffer
}

func newLineWriter(fn func(string)) *lineWriter {
	return &lineWriter{fn: fn}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	if w.fn == nil {
		return len(p), nil
	}
	w.buf.Write(p)
	for {
		idx := bytes.IndexByte(w.buf.Bytes(), '\n')
		if idx < 0 {
			return len(p), nil
		}
		line := string(bytes.TrimRight(w.buf.Next(idx+1), "\r\n"))
		w.fn(line)
	}
}

// Flush forwards a trailing unterminated line, if any.
func (w *lineWriter) Flush() {
	if w.fn == nil || w.buf.Len() == 0 {
		return
	}
	w.fn(string(bytes.TrimRight(w.buf.Bytes(), "\r\n")))
	w.buf.Reset()
}

// ThroughputFunc receives one instantaneous write-rate sample in bytes/sec.
type ThroughputFunc func(bytesPerSec float64)

// RunWithThroughput is Run plus periodic output-file growth sampling: once
// per interval (while the process is alive) the current length of outputPath
// is measured and (currentLen-lastLen)/elapsed is reported to onSample. A
// final zero sample is emitted once the process exits so displays reset.
func RunWithThroughput(ctx context.Context, exe string, args []string, outputPath string,
	interval time.Duration, onSample ThroughputFunc, opts RunOptions) error {
	if onSample == nil || interval <= 0 {
		return Run(ctx, exe, args, opts)
	}

	done := make(chan struct{})
	var pollWG sync.WaitGroup
	pollWG.Add(1)
	go func() {
		defer pollWG.Done()
		pollOutputGrowth(outputPath, interval, onSample, done)
	}()

	err := Run(ctx, exe, args, opts)
	close(done)
	pollWG.Wait()
	onSample(0)
	return err
}

// pollOutputGrowth samples len(outputPath) every interval until done closes.
// A missing output file counts as length 0 (the tool may not have created it
// yet).
func pollOutputGrowth(outputPath string, interval time.Duration, onSample ThroughputFunc, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastLen := fileLen(outputPath)
	lastAt := time.Now()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			cur := fileLen(outputPath)
			elapsed := now.Sub(lastAt).Seconds()
			if elapsed > 0 {
				onSample(float64(cur-lastLen) / elapsed)
			}
			lastLen = cur
			lastAt = now
		}
	}
}

func fileLen(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}
