// Package main is the entrypoint for the aggregator command-line client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/skyfeed/aggregator/internal/cli"
	"github.com/skyfeed/aggregator/internal/config"
)

func main() {
	config.LoadDotEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}
