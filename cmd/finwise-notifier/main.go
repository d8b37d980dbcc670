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
	applog "finwise/internal/log"
)

// finwise-notifier drains the notification queue and hands each event to the
// delivery channels. Mail and push transports hook in here; until they are
// configured every delivery is recorded in the structured log.
func main() {
	// Load .env for local development; production sets real env vars.
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.LevelFromEnv(),
		Component: "finwise-notifier",
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the notifier")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	logger.Info("Starting finwise notifier", "queue", cfg.AMQPQueue)

	err = client.ConsumeNotifications(ctx, func(msg *amqp.NotificationMessage) error {
		logger.Info("Notification delivered",
			"user_id", msg.UserID,
			"type", msg.Type,
			"message", msg.Message,
			"sent_at", msg.Timestamp)
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Notification consumption stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Notifier stopped gracefully")
}
