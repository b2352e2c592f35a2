// Command sheetfeed appends Japanese cosmetic ingredient standards to a
// Google Sheets worksheet.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"sheetfeed/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
