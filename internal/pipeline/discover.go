package pipeline

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DiscoverConvert lists supported source files directly under inputDir
// (top-level only, no recursion), sorted lexicographically.
func DiscoverConvert(inputDir string) ([]string, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, ok := Classify(e.Name()); ok {
			files = append(files, filepath.Join(inputDir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// DiscoverVerify lists .chd files under root, optionally descending into
// subdirectories, sorted lexicographically.
func DiscoverVerify(root string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".chd") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// sortSmallestFirst reorders files ascending by on-disk size. Unreadable
// files sort first so their failure surfaces early.
func sortSmallestFirst(files []string) {
	sizes := make(map[string]int64, len(files))
	for _, f := range files {
		if fi, err := os.Stat(f); err == nil {
			sizes[f] = fi.Size()
		}
	}
	sort.SliceStable(files, func(i, j int) bool {
		return sizes[files[i]] < sizes[files[j]]
	})
}
