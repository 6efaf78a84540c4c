package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
	return path
}

func writeSized(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestDiscoverConvert_FiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "game.iso")
	touch(t, dir, "disc.cue")
	touch(t, dir, "bundle.zip")
	touch(t, dir, "compressed.cso")
	touch(t, dir, "readme.txt")
	touch(t, dir, "already.chd")

	files, err := DiscoverConvert(dir)
	if err != nil {
		t.Fatalf("DiscoverConvert: %v", err)
	}
	if len(files) != 4 {
		t.Errorf("got %d files, want 4: %v", len(files), files)
	}
}

func TestDiscoverConvert_TopLevelOnly(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "top.iso")
	sub := filepath.Join(dir, "nested")
	os.MkdirAll(sub, 0o755)
	touch(t, sub, "deep.iso")

	files, err := DiscoverConvert(dir)
	if err != nil {
		t.Fatalf("DiscoverConvert: %v", err)
	}
	if len(files) != 1 || filepath.Base(files[0]) != "top.iso" {
		t.Errorf("got %v, want only top.iso", files)
	}
}

func TestDiscoverConvert_CaseInsensitiveExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "GAME.ISO")
	touch(t, dir, "Disc.Cue")

	files, err := DiscoverConvert(dir)
	if err != nil {
		t.Fatalf("DiscoverConvert: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("got %d files, want 2 (case-insensitive ext matching)", len(files))
	}
}

func TestDiscoverVerify_Recursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.chd")
	touch(t, dir, "skip.iso")
	sub := filepath.Join(dir, "sub")
	os.MkdirAll(sub, 0o755)
	touch(t, sub, "b.chd")

	flat, err := DiscoverVerify(dir, false)
	if err != nil {
		t.Fatalf("DiscoverVerify: %v", err)
	}
	if len(flat) != 1 {
		t.Errorf("non-recursive: got %v, want only a.chd", flat)
	}

	deep, err := DiscoverVerify(dir, true)
	if err != nil {
		t.Fatalf("DiscoverVerify recursive: %v", err)
	}
	if len(deep) != 2 {
		t.Errorf("recursive: got %v, want a.chd and sub/b.chd", deep)
	}
}

func TestSortSmallestFirst(t *testing.T) {
	dir := t.TempDir()
	big := writeSized(t, dir, "big.iso", 3000)
	small := writeSized(t, dir, "small.iso", 10)
	mid := writeSized(t, dir, "mid.iso", 500)

	files := []string{big, mid, small}
	sortSmallestFirst(files)

	want := []string{small, mid, big}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("got %v, want %v", files, want)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		kind Kind
		ok   bool
	}{
		{"a.iso", KindImage, true},
		{"a.cue", KindImage, true},
		{"a.img", KindImage, true},
		{"a.CSO", KindCompressed, true},
		{"a.zip", KindArchive, true},
		{"a.7z", KindArchive, true},
		{"a.rar", KindArchive, true},
		{"a.bin", 0, false}, // cue-sheet data track, never scheduled alone
		{"a.txt", 0, false},
		{"a.chd", 0, false},
	}
	for _, tc := range cases {
		kind, ok := Classify(tc.path)
		if ok != tc.ok || (ok && kind != tc.kind) {
			t.Errorf("Classify(%q) = %v, %v; want %v, %v", tc.path, kind, ok, tc.kind, tc.ok)
		}
	}
}
