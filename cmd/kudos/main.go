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

	app := newApp(os.Stdout, viperLoader)
	if err := newRootCmd(app).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
