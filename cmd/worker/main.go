package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/vinyldesk/vinyldesk/internal/app"
	jobmetrics "github.com/vinyldesk/vinyldesk/internal/jobs"
	"github.com/vinyldesk/vinyldesk/internal/platform/db"
	"github.com/vinyldesk/vinyldesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, db.Options{})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := jobmetrics.NewMetrics(nil)
	sweep := jobs.NewLockoutSweepJob(pool, logger, metrics)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB}
	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLockoutSweep, Handler: sweep.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/5 * * * *", Task: jobs.NewLockoutSweepTask()},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
