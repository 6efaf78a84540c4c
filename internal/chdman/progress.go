package chdman

import (
	"regexp"
	"strconv"
)

// Pre-compiled regexes for the two progress-line shapes chdman interleaves on
// stderr. These lines are informational; they never affect control flow.
var (
	// "Compressing 412/1024 (40.2%)"
	reStepProgress = regexp.MustCompile(
		`^\s*([A-Za-z]+)\s+\d+/\d+\s+\((\d+(?:\.\d+)?)%\)`)

	// "Compressing, 40.2% complete"
	rePercentComplete = regexp.MustCompile(
		`^\s*([A-Za-z]+),\s*(\d+(?:\.\d+)?)%\s*complete`)
)

// ParseProgress extracts a progress percentage from one stderr line. ok is
// false for lines that are not progress reports (genuine diagnostics).
func ParseProgress(line string) (percent float64, ok bool) {
	m := reStepProgress.FindStringSubmatch(line)
	if m == nil {
		m = rePercentComplete.FindStringSubmatch(line)
	}
	if m == nil {
		return 0, false
	}
	p, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, false
	}
	return p, true
}
