package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	paymentreconciler "github.com/magabrotheeeer/membership-service/internal/app/payment-reconciler"
	"github.com/magabrotheeeer/membership-service/internal/config"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.Info("starting payment reconciler", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := paymentreconciler.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize reconciler app", slog.Any("err", err))
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("reconciler app stopped with error", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("payment reconciler stopped gracefully")
}
