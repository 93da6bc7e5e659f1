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

	// once the first signal cancels the context, restore the default
	// handler so a second signal terminates a mode stuck in a blocking call
	go func() {
		<-ctx.Done()
		stop()
	}()

	Execute(ctx)
}
