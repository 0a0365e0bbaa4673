package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/avolkov/canvas-notify/internal/aggregator"
	"github.com/avolkov/canvas-notify/internal/ai"
	"github.com/avolkov/canvas-notify/internal/bot"
	"github.com/avolkov/canvas-notify/internal/canvas"
	"github.com/avolkov/canvas-notify/internal/scheduler"
	"github.com/avolkov/canvas-notify/internal/session"
	"github.com/avolkov/canvas-notify/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if err := cfg.RequireTelegram(); err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Wire the pipeline
	canvasClient := canvas.New(cfg.Canvas.BaseURL, cfg.Canvas.Token, logger)
	estimator := ai.NewEstimator(cfg.Ollama.BaseURL, cfg.Ollama.Model, logger)
	agg := aggregator.New(canvasClient, estimator, cfg.Location, cfg.Schedule.DaysAhead, logger)
	sessions := session.NewStore()

	b, err := bot.New(
		cfg.Telegram.Token,
		agg,
		estimator,
		sessions,
		cfg.Location,
		cfg.Schedule.DaysAhead,
		cfg.Telegram.ChatID,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Daily summary to the configured chat, when one is set
	if cfg.Telegram.ChatID != 0 {
		daily := scheduler.NewDaily(cfg.Schedule.Hour, cfg.Schedule.Minute, cfg.Location, logger)
		go daily.Run(ctx, b.RunScheduled)
		logger.Info("scheduled daily check",
			zap.Int("hour", cfg.Schedule.Hour),
			zap.Int("minute", cfg.Schedule.Minute),
			zap.String("timezone", cfg.Schedule.Timezone))
	} else {
		logger.Warn("TELEGRAM_CHAT_ID not set - scheduled daily notifications are disabled")
	}

	// Start the bot
	b.Run(ctx)
}
