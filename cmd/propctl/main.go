// propctl is the terminal client for the propdash dashboard.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, os.Stdin, os.Stdout, os.Args[1:]); err != nil {
		stop()
		os.Exit(1)
	}
}
