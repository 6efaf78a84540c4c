// Package naming produces filesystem-safe staging names. Staged copies get a
// random base name so the temp artifact is decoupled from the original
// (possibly unsafe or very long) file name.
package naming

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// placeholder replaces characters that are invalid in file names or known to
// confuse external extractors.
const placeholder = "_"

// invalidChars are forbidden in file names on at least one supported
// filesystem, plus Unicode punctuation (ellipsis variants) that the general
// archive extractor mishandles.
var invalidChars = []rune{'<', '>', ':', '"', '/', '\\', '|', '?', '*', '…', '‥'}

// Sanitize returns name rewritten to be safe both as a file name and as a
// bare command-line token. Invalid characters and control characters become
// "_"; trailing dots and spaces are stripped. Sanitize is idempotent:
// Sanitize(Sanitize(x)) == Sanitize(x).
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r < 0x20 || isInvalid(r) {
			b.WriteString(placeholder)
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimRight(b.String(), ". ")
	if out == "" && name != "" {
		return placeholder
	}
	return out
}

func isInvalid(r rune) bool {
	for _, c := range invalidChars {
		if r == c {
			return true
		}
	}
	return false
}

// TempPath returns a fresh, collision-free file path inside dir using a
// random unique base name and the given extension (with or without leading
// dot). It never touches existing files; uniqueness comes from the random
// base name.
func TempPath(dir, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return filepath.Join(dir, uuid.NewString()+strings.ToLower(ext))
}
