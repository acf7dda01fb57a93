package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/NVIDIA/rgvalidator/pkg/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Stdout, os.Args)
	stop()
	os.Exit(code)
}
