package chdman

import (
	"runtime"
	"strconv"
	"strings"
)

// chdman operating modes.
const (
	ModeCreateCD  = "createcd"  // Multi-track / CD-style images (default).
	ModeCreateHD  = "createhd"  // Hard-disk images.
	ModeCreateRaw = "createraw" // Raw data images.
	ModeVerify    = "verify"
)

// imageExtensions is the allow-list of plain disk-image extensions the batch
// accepts as direct chdman input.
var imageExtensions = map[string]bool{
	".cue": true,
	".iso": true,
	".img": true,
	".bin": true,
	".gdi": true,
	".toc": true,
	".raw": true,
}

// IsImageExt reports whether ext (with leading dot, any case) is a supported
// plain-image extension.
func IsImageExt(ext string) bool {
	return imageExtensions[strings.ToLower(ext)]
}

// IsDescriptorExt reports whether ext names a multi-file descriptor
// (.cue/.gdi/.toc) whose referenced data files must stay resolvable next to
// it.
func IsDescriptorExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".cue", ".gdi", ".toc":
		return true
	}
	return false
}

// ModeForExt maps a staged input extension to the chdman creation mode.
// The table is closed: ".img" selects createhd, ".raw" selects createraw,
// and every other supported extension (including ".iso") defaults to
// createcd.
func ModeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".img":
		return ModeCreateHD
	case ".raw":
		return ModeCreateRaw
	default:
		return ModeCreateCD
	}
}

// ConvertArgs builds the chdman argument list for a conversion:
//
//	<mode> -i <input> -o <output> -f -np <cores>
func ConvertArgs(mode, input, output string, cores int) []string {
	return []string{mode, "-i", input, "-o", output, "-f", "-np", strconv.Itoa(cores)}
}

// VerifyArgs builds the chdman argument list for an integrity check.
func VerifyArgs(input string) []string {
	return []string{ModeVerify, "-i", input}
}

// CoreHint derives the -np value. In parallel mode each of the workers gets
// an equal share of the machine's cores (minimum 1); in serial mode the
// single conversion gets them all.
func CoreHint(parallel bool, workers int) int {
	total := runtime.NumCPU()
	if !parallel || workers <= 1 {
		return total
	}
	if n := total / workers; n >= 1 {
		return n
	}
	return 1
}
