// Package cue resolves the data files referenced by multi-file disk-image
// descriptors: cue sheets, GD-ROM (.gdi) track lists, and cdrdao (.toc)
// files. The resolved paths are used to stage sidecar tracks next to their
// descriptor and to delete a converted source together with its sidecars.
package cue

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrParse indicates the descriptor file could not be read. A per-line parse
// miss is not an error; unparseable lines are skipped.
var ErrParse = fmt.Errorf("descriptor parse failed")

// ReferencedFiles returns the data files referenced by the descriptor at
// path, resolved relative to the descriptor's directory. Dispatch is by
// extension: ".cue" uses cue-sheet FILE directives, ".gdi" uses the GD-ROM
// track table, ".toc" uses cdrdao FILE/DATAFILE/AUDIOFILE directives. Other
// extensions yield an empty list.
func ReferencedFiles(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return parseCue(path)
	case ".gdi":
		return parseGDI(path)
	case ".toc":
		return parseToc(path)
	}
	return nil, nil
}

// parseCue scans for FILE directives:
//
//	FILE "Track 01.bin" BINARY
//
// The quoted token is preferred; without quotes the second whitespace field
// is taken.
func parseCue(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	dir := filepath.Dir(path)
	var files []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToUpper(trimmed), "FILE") {
			continue
		}
		name := quotedToken(trimmed)
		if name == "" {
			fields := strings.Fields(trimmed)
			if len(fields) < 2 {
				continue
			}
			name = fields[1]
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

// parseGDI parses the GD-ROM track table. The first line is the track count;
// each following non-blank line describes one track:
//
//	1 0 4 2352 "track01.bin" 0
//
// The quoted token is preferred; without quotes the fifth whitespace field is
// taken.
func parseGDI(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(lines) > 0 {
		lines = lines[1:] // track count header
	}

	dir := filepath.Dir(path)
	var files []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		name := quotedToken(trimmed)
		if name == "" {
			fields := strings.Fields(trimmed)
			if len(fields) < 5 {
				continue
			}
			name = fields[4]
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

// parseToc scans a cdrdao table-of-contents file for data-file directives:
//
//	DATAFILE "data.bin"
//	FILE "track01.bin" 0
//	AUDIOFILE "track02.wav" 0
//
// The quoted token is preferred; without quotes the second whitespace field
// is taken.
func parseToc(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	dir := filepath.Dir(path)
	var files []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !isTocFileDirective(trimmed) {
			continue
		}
		name := quotedToken(trimmed)
		if name == "" {
			fields := strings.Fields(trimmed)
			if len(fields) < 2 {
				continue
			}
			name = fields[1]
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files, nil
}

func isTocFileDirective(line string) bool {
	upper := strings.ToUpper(line)
	for _, directive := range []string{"FILE", "DATAFILE", "AUDIOFILE"} {
		if strings.HasPrefix(upper, directive) {
			return true
		}
	}
	return false
}

// quotedToken returns the first double-quoted substring of line, or "".
func quotedToken(line string) string {
	start := strings.IndexByte(line, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(line[start+1:], '"')
	if end < 0 {
		return ""
	}
	return line[start+1 : start+1+end]
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
