// Package main runs the avatarctl command line tool.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/louisbranch/nois/internal/cmd/avatarctl"
	entrypoint "github.com/louisbranch/nois/internal/platform/cmd"
	"github.com/louisbranch/nois/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	options := entrypoint.RunOptions{ShutdownTimeout: 2 * time.Second}
	err := entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceAvatarctl, options, func(ctx context.Context) error {
		return avatarctl.Execute(ctx, os.Args[1:], os.Stdin, os.Stdout)
	})
	if err != nil {
		stop()
		config.Exitf("avatarctl: %v", err)
	}
}
