package extract

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"

	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/chdman"
	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/naming"
)

var (
	// ErrUnsupportedContainer indicates the archive format is not recognized.
	ErrUnsupportedContainer = errors.New("unsupported archive format")

	// ErrNoTargetFound indicates extraction succeeded but the archive held no
	// supported disk-image file.
	ErrNoTargetFound = errors.New("archive contains no supported disk image")
)

// archiveExtensions is the allow-list of multi-entry container formats.
var archiveExtensions = map[string]bool{
	".zip": true,
	".7z":  true,
	".rar": true,
}

// IsArchiveExt reports whether ext (with leading dot, any case) is a
// supported archive extension.
func IsArchiveExt(ext string) bool {
	return archiveExtensions[strings.ToLower(ext)]
}

// Archive unpacks the archive into destDir and returns the path of the
// extracted file to convert: a descriptor if the archive holds one, otherwise
// the first supported disk image.
// 7z and rar archives are first copied under a sanitized temp name because
// their extractors are intolerant of unusual path characters; the copy is
// deleted in all cases.
func Archive(ctx context.Context, archive, destDir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(archive))
	switch ext {
	case ".zip":
		if err := extractZip(ctx, archive, destDir); err != nil {
			return "", err
		}
	case ".7z", ".rar":
		tmp := naming.TempPath(destDir, ext)
		if err := copyFile(archive, tmp); err != nil {
			return "", fmt.Errorf("stage archive copy: %w", err)
		}
		var err error
		if ext == ".7z" {
			err = extract7z(ctx, tmp, destDir)
		} else {
			err = extractRar(ctx, tmp, destDir)
		}
		if rmErr := os.Remove(tmp); rmErr != nil && err == nil {
			err = rmErr
		}
		if err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedContainer, ext)
	}
	return findFirstImage(destDir)
}

// extractZip unpacks a deflate archive with the standard library reader.
func extractZip(ctx context.Context, archive, destDir string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open zip entry %s: %w", f.Name, err)
		}
		err = writeEntry(destDir, f.Name, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// extract7z unpacks a 7-zip archive via bodgit/sevenzip.
func extract7z(ctx context.Context, archive, destDir string) error {
	r, err := sevenzip.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("open 7z: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("open 7z entry %s: %w", f.Name, err)
		}
		err = writeEntry(destDir, f.Name, rc)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// extractRar unpacks a rar archive via nwaples/rardecode.
func extractRar(ctx context.Context, archive, destDir string) error {
	r, err := rardecode.OpenReader(archive)
	if err != nil {
		return fmt.Errorf("open rar: %w", err)
	}
	defer r.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		hdr, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read rar entry: %w", err)
		}
		if hdr.IsDir {
			continue
		}
		if err := writeEntry(destDir, hdr.Name, r); err != nil {
			return err
		}
	}
}

// writeEntry writes one archive entry below destDir, rejecting names that
// would escape it.
func writeEntry(destDir, name string, r io.Reader) error {
	target, err := safeJoin(destDir, name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create entry dir: %w", err)
	}
	w, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create entry %s: %w", name, err)
	}
	_, copyErr := io.Copy(w, r)
	closeErr := w.Close()
	if copyErr != nil {
		return fmt.Errorf("write entry %s: %w", name, copyErr)
	}
	return closeErr
}

// safeJoin joins an archive entry name onto destDir and rejects traversal
// outside it.
func safeJoin(destDir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("archive entry escapes destination: %s", name)
	}
	return filepath.Join(destDir, clean), nil
}

// findFirstImage walks destDir recursively and returns the convertible target:
// a descriptor (.cue/.gdi/.toc) wins over plain data files, so a cue+bin pair
// converts through its cue sheet rather than the raw track.
func findFirstImage(destDir string) (string, error) {
	var descriptor, image string
	err := filepath.WalkDir(destDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		switch {
		case chdman.IsDescriptorExt(ext):
			descriptor = path
			return fs.SkipAll
		case image == "" && chdman.IsImageExt(ext):
			image = path
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan extracted tree: %w", err)
	}
	if descriptor != "" {
		return descriptor, nil
	}
	if image == "" {
		return "", ErrNoTargetFound
	}
	return image, nil
}

// copyFile copies src to dst (creating or truncating dst).
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr != nil {
		return copyErr
	}
	return closeErr
}
