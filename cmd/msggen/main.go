package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"me_msggen/internal/app"
)

func main() {
	// 1. Command line
	cmd, err := app.ParseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		slog.Error("❌ Invalid arguments", slog.Any("error", err))
		os.Exit(2)
	}

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(cmd.ConfigPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()

	// 3. Archive queries print and exit
	if cmd.Query.Active() {
		if err := bootstrap.Query(os.Stdout, cmd.Query); err != nil {
			slog.Error("❌ Archive query failed", slog.Any("error", err))
			bootstrap.Close()
			os.Exit(1)
		}
		return
	}

	// 4. Interrupt stops generation between events
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Generate
	if _, err := bootstrap.Generate(ctx, cmd.Paths); err != nil {
		slog.Error("❌ Generation failed", slog.Any("error", err))
		stop()
		bootstrap.Close()
		os.Exit(1)
	}

	slog.InfoContext(ctx, "✨ Message generation complete")
}
