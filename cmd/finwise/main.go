package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finwise/internal/config"
	apphttp "finwise/internal/http"
	"finwise/internal/jobs"
	applog "finwise/internal/log"
	"finwise/internal/rates"
	"finwise/internal/services"
	"finwise/internal/storage"
)

func main() {
	// Load .env for local development; production sets real env vars.
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     applog.LevelFromEnv(),
		Component: "finwise-api",
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

	rateCache := rates.NewCache(cfg.RateProviderURL, cfg.RateProviderKey, cfg.RatePivot)

	txService := services.NewTransactionService(repo, services.NewSavingsAllocator(repo))
	srv := apphttp.NewServer(":"+cfg.Port, repo, txService, rates.NewResolver(rateCache), cfg.ReportingCurrency)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.RateProviderURL != "" {
		// The resolver reads this process's cache, so the refresh loop has to
		// live here too. The scheduler fires once immediately, which warms the
		// table; a failed refresh retries on the next tick and reports degrade
		// to native amounts in the meantime.
		go func() {
			schedule := []jobs.Scheduled{{
				Job:      jobs.NewRateRefresher(rateCache),
				Interval: cfg.RateRefreshEvery,
			}}
			if err := jobs.Run(ctx, schedule); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Rate refresh loop stopped", "error", err)
			}
		}()
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting finwise API server",
		"port", cfg.Port,
		"reporting_currency", cfg.ReportingCurrency,
		"rate_pivot", cfg.RatePivot)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
