package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/avolkov/canvas-notify/internal/aggregator"
	"github.com/avolkov/canvas-notify/internal/ai"
	"github.com/avolkov/canvas-notify/internal/canvas"
	"github.com/avolkov/canvas-notify/internal/mailer"
	"github.com/avolkov/canvas-notify/internal/render"
	"github.com/avolkov/canvas-notify/internal/scheduler"
	"github.com/avolkov/canvas-notify/pkg/config"
)

// Headless notifier: runs the daily assignment check and delivers the
// plain-text report through an email-to-SMS gateway.
func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if err := cfg.RequireSMTP(); err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	canvasClient := canvas.New(cfg.Canvas.BaseURL, cfg.Canvas.Token, logger)
	estimator := ai.NewEstimator(cfg.Ollama.BaseURL, cfg.Ollama.Model, logger)
	agg := aggregator.New(canvasClient, estimator, cfg.Location, cfg.Schedule.DaysAhead, logger)
	m := mailer.New(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Sender, cfg.SMTP.Password, cfg.SMTP.SMSEmail, logger)

	check := func(ctx context.Context) {
		records, err := agg.Upcoming(ctx)
		if err != nil {
			logger.Error("assignment check failed", zap.Error(err))
			return
		}
		if len(records) == 0 {
			logger.Info("no upcoming assignments, skipping notification")
			return
		}
		msg := render.PlainList(records, cfg.Schedule.DaysAhead)
		m.SendChunked(render.Chunk(msg))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One check at startup, then daily at the configured time.
	check(ctx)

	daily := scheduler.NewDaily(cfg.Schedule.Hour, cfg.Schedule.Minute, cfg.Location, logger)
	logger.Info("scheduler started",
		zap.Int("hour", cfg.Schedule.Hour),
		zap.Int("minute", cfg.Schedule.Minute),
		zap.String("timezone", cfg.Schedule.Timezone))
	daily.Run(ctx, check)
}
