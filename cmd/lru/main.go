// Spins up the LRU cache server, compatible w/ the Redis protocol.

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nobletooth/lru/pkg/config"
	"github.com/nobletooth/lru/pkg/port"
	"github.com/nobletooth/lru/pkg/utils"
)

var printVersion = flag.Bool("print_version", false, "Print the version and exit.")

func main() {
	config.InitFlags()
	utils.InitLogging()

	if *printVersion {
		slog.Info("LRU cache build info.", utils.BuildAttrs()...)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	go func() { // Listen for OS interrupts in the background.
		sig := <-signals
		slog.Info("Received termination signal, cancelling server context.", "signal", sig)
		cancel()
	}()

	store, err := port.NewCacheBackend()
	if err != nil {
		slog.Error("Failed to create the cache.", "err", err)
		os.Exit(1)
	}
	if err := port.RunRedisServer(ctx, store, nil /*listening*/); err != nil {
		slog.Error("LRU cache server stopped.", "err", err)
		os.Exit(1)
	}
	slog.Info("LRU cache server stopped.", utils.BuildAttrs()...)
}
