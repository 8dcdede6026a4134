package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/KobaLuck/recipe-bot/internal/api"
	"github.com/KobaLuck/recipe-bot/internal/config"
	"github.com/KobaLuck/recipe-bot/internal/log"
	"github.com/KobaLuck/recipe-bot/internal/setup"
)

const janitorInterval = time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	const setupTime = 30 * time.Second
	setupCtx, cancel := context.WithTimeout(ctx, setupTime)
	defer cancel()

	logger := log.New(nil)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env file", slog.Any("error", err))
	}

	conf, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	environment, err := setup.Environment(setupCtx, conf, logger)
	if err != nil {
		logger.Error("failed to setup environment", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := environment.Credentials.Close(); err != nil {
			logger.Error("failed to close credential store", slog.Any("error", err))
		}
	}()

	go environment.Sessions.Janitor(janitorInterval, ctx.Done())

	if err := api.Start(environment); err != nil {
		logger.Error("API failed", slog.Any("error", err))
		os.Exit(1)
	}
}
