package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"finwise/internal/amqp"
	"finwise/internal/config"
	"finwise/internal/jobs"
	applog "finwise/internal/log"
	"finwise/internal/notify"
	"finwise/internal/storage"
)

func main() {
	// Load .env for local development; production sets real env vars.
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.LevelFromEnv(),
		Component: "finwise-jobs",
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// Broker is optional: without it notifications are stored only.
	var publisher notify.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to connect to AMQP", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - notifications will only be stored")
	}

	notifier := notify.NewNotifier(repo, publisher)

	// The exchange-rate refresh loop lives in the API binary next to the
	// resolver that reads the cache; this worker only runs the notifying jobs.
	schedule := []jobs.Scheduled{
		{Job: jobs.NewBudgetMonitor(repo, notifier), Interval: cfg.DailyJobEvery},
		{Job: jobs.NewUnusualSpendingDetector(repo, notifier), Interval: cfg.DailyJobEvery},
		{Job: jobs.NewRecurringReminder(repo, notifier), Interval: cfg.ReminderCheckEvery},
		{Job: jobs.NewPaymentGoalReminder(repo, notifier), Interval: cfg.ReminderCheckEvery},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	logger.Info("Starting finwise job worker",
		"jobs", len(schedule),
		"reminder_interval", cfg.ReminderCheckEvery,
		"daily_interval", cfg.DailyJobEvery)

	if err := jobs.Run(ctx, schedule); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Job worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Job worker stopped gracefully")
}
