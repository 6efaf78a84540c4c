// Command chdbatch batch-converts disk images (and archives containing them)
// to CHD via the external chdman tool, and batch-verifies existing CHD files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Ctrl-C cancels the whole batch cooperatively: in-flight conversions are
	// killed, staging directories cleaned up, committed outputs kept.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "chdbatch: %v\n", err)
		os.Exit(1)
	}
}
