package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestRunVerify_CountsValidAndInvalid(t *testing.T) {
	chdman := fakeChdman(t, "")
	cfg := testConfig(t, chdman)

	touch(t, cfg.InputDir, "good.chd")
	touch(t, cfg.InputDir, "bad.chd")

	log := &testLogger{}
	stats := RunVerify(context.Background(), &cfg, log, Events{})

	if stats.Total != 2 {
		t.Errorf("Total = %d, want 2", stats.Total)
	}
	if got := stats.Succeeded.Load(); got != 1 {
		t.Errorf("Succeeded = %d, want 1", got)
	}
	if got := stats.Failed.Load(); got != 1 {
		t.Errorf("Failed = %d, want 1", got)
	}
	if !log.contains("Valid: good.chd") {
		t.Error("expected a Valid log entry for good.chd")
	}
	if !log.contains("Invalid: bad.chd") {
		t.Error("expected an Invalid log entry for bad.chd")
	}
}

func TestRunVerify_MovesIntoMirrorTrees(t *testing.T) {
	chdman := fakeChdman(t, "")
	cfg := testConfig(t, chdman)
	cfg.Recursive = true
	cfg.MoveValidDir = t.TempDir()
	cfg.MoveInvalidDir = t.TempDir()

	sub := filepath.Join(cfg.InputDir, "sub")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir sub: %v", err)
	}
	good := touch(t, sub, "good.chd")
	bad := touch(t, cfg.InputDir, "bad.chd")

	log := &testLogger{}
	RunVerify(context.Background(), &cfg, log, Events{})

	// Subfolder structure relative to the scan root is mirrored.
	if _, err := os.Stat(filepath.Join(cfg.MoveValidDir, "sub", "good.chd")); err != nil {
		t.Errorf("valid file not moved into mirror tree: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.MoveInvalidDir, "bad.chd")); err != nil {
		t.Errorf("invalid file not moved: %v", err)
	}
	if _, err := os.Stat(good); !os.IsNotExist(err) {
		t.Error("moved valid file should no longer be at the source")
	}
	if _, err := os.Stat(bad); !os.IsNotExist(err) {
		t.Error("moved invalid file should no longer be at the source")
	}
}

func TestRunVerify_SkipsMoveWhenDestinationExists(t *testing.T) {
	chdman := fakeChdman(t, "")
	cfg := testConfig(t, chdman)
	cfg.MoveValidDir = t.TempDir()

	src := touch(t, cfg.InputDir, "good.chd")
	touch(t, cfg.MoveValidDir, "good.chd")

	log := &testLogger{}
	stats := RunVerify(context.Background(), &cfg, log, Events{})

	if got := stats.Succeeded.Load(); got != 1 {
		t.Errorf("Succeeded = %d, want 1 (skipped move is not a failure)", got)
	}
	if _, err := os.Stat(src); err != nil {
		t.Errorf("source should remain when destination exists: %v", err)
	}
	if !log.contains("already exists") {
		t.Error("expected a skip warning in the log")
	}
}

func TestRunVerify_NonRecursiveIgnoresSubdirs(t *testing.T) {
	chdman := fakeChdman(t, "")
	cfg := testConfig(t, chdman)

	touch(t, cfg.InputDir, "top.chd")
	sub := filepath.Join(cfg.InputDir, "nested")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir sub: %v", err)
	}
	touch(t, sub, "deep.chd")

	log := &testLogger{}
	stats := RunVerify(context.Background(), &cfg, log, Events{})

	if stats.Total != 1 {
		t.Errorf("Total = %d, want 1 (non-recursive scan)", stats.Total)
	}
}

func TestRunVerify_ChdmanMissingAborts(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing-chdman"))
	touch(t, cfg.InputDir, "a.chd")

	log := &testLogger{}
	stats := RunVerify(context.Background(), &cfg, log, Events{})

	if got := stats.Succeeded.Load() + stats.Failed.Load(); got != 0 {
		t.Errorf("processed %d items, want 0", got)
	}
	if !log.contains("chdman not found") {
		t.Error("expected up-front dependency error in log")
	}
}
