package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Default logger until flags are parsed
	slog.SetDefault(newLogger(os.Stdout, slog.LevelInfo, underJournal()))

	// Setup signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("Agent error", "error", err)
		cancel()
		os.Exit(1)
	}
	cancel()
}
