package extract

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildZip writes a zip archive containing the given name→content entries.
func buildZip(t *testing.T, dir string, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, "bundle.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestArchive_ZipReturnsFirstImage(t *testing.T) {
	archive := buildZip(t, t.TempDir(), map[string]string{
		"readme.txt":       "notes",
		"disc/game.iso":    "image-bytes",
		"disc/artwork.png": "png",
	})
	destDir := t.TempDir()

	found, err := Archive(context.Background(), archive, destDir)
	require.NoError(t, err)
	assert.Equal(t, "game.iso", filepath.Base(found))

	data, err := os.ReadFile(found)
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestArchive_PrefersDescriptorOverDataTrack(t *testing.T) {
	archive := buildZip(t, t.TempDir(), map[string]string{
		"a-track.bin": "data",
		"b-game.cue":  "FILE \"a-track.bin\" BINARY\n",
	})

	found, err := Archive(context.Background(), archive, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "b-game.cue", filepath.Base(found))
}

func TestArchive_ZipWithoutImage(t *testing.T) {
	archive := buildZip(t, t.TempDir(), map[string]string{
		"readme.txt": "notes",
		"cover.jpg":  "jpg",
	})

	_, err := Archive(context.Background(), archive, t.TempDir())
	assert.ErrorIs(t, err, ErrNoTargetFound)
}

func TestArchive_UnsupportedFormat(t *testing.T) {
	src := filepath.Join(t.TempDir(), "bundle.tar")
	require.NoError(t, os.WriteFile(src, []byte("tar"), 0o644))

	_, err := Archive(context.Background(), src, t.TempDir())
	assert.ErrorIs(t, err, ErrUnsupportedContainer)
}

func TestArchive_RejectsTraversalEntries(t *testing.T) {
	archive := buildZip(t, t.TempDir(), map[string]string{
		"../escape.iso": "evil",
	})

	_, err := Archive(context.Background(), archive, t.TempDir())
	assert.Error(t, err)
}

func TestArchive_CancelledContext(t *testing.T) {
	archive := buildZip(t, t.TempDir(), map[string]string{
		"game.iso": "image",
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Archive(ctx, archive, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsArchiveExt(t *testing.T) {
	for _, ext := range []string{".zip", ".7z", ".rar", ".ZIP"} {
		assert.True(t, IsArchiveExt(ext), ext)
	}
	for _, ext := range []string{".iso", ".cso", ".tar", ""} {
		assert.False(t, IsArchiveExt(ext), ext)
	}
}

func TestDecompress_MissingTool(t *testing.T) {
	_, err := Decompress(context.Background(), filepath.Join(t.TempDir(), "no-maxcso"),
		"in.cso", t.TempDir(), nil, nil)
	assert.ErrorIs(t, err, ErrToolUnavailable)
}
