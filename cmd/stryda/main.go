// Package main provides the stryda binary entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/adapters/driving/cli"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer logger.Sync()

	a, err := newApp(ctx, os.LookupEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitError
	}
	defer a.Close()

	cli.SetVersion(version)
	cli.SetServices(a.Services())

	return cli.Execute(ctx)
}
