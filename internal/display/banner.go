package display

import (
	"fmt"
	"os"

	"github.com/drpetersonfernandes/BatchConvertToCHD-sub000/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner() {
	if term.Enabled() {
		fmt.Fprint(os.Stdout, term.Magenta)
	}
	fmt.Fprint(os.Stdout, `      _         _ _           _       _
  ___| |__   __| | |__   __ _| |_ ___| |__
 / __| '_ \ / _`+"`"+` | '_ \ / _`+"`"+` | __/ __| '_ \
| (__| | | | (_| | |_) | (_| | || (__| | | |
 \___|_| |_|\__,_|_.__/ \__,_|\__\___|_| |_|
`)
	if term.Enabled() {
		fmt.Fprintln(os.Stdout, term.NC)
	}
}
