// Command ironsys runs the powerlifting batch operations over a CSV workbook
// and serves the resulting read model over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/ironsys/pkg/logger"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := logger.Init(); err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}

	err := newRootCmd().ExecuteContext(ctx)
	if syncErr := logger.Sync(); syncErr != nil {
		fmt.Fprintln(os.Stderr, "failed to flush logs:", syncErr)
	}
	if err != nil {
		os.Exit(1)
	}
}
