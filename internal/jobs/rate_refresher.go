package jobs

import (
	"context"
	"log/slog"
	"time"
)

// RateCache is the slice of rates.Cache the refresher drives.
type RateCache interface {
	Refresh(ctx context.Context) error
	LastUpdate() time.Time
}

// RateRefresher keeps the exchange-rate table warm.
type RateRefresher struct {
	cache RateCache
}

func NewRateRefresher(cache RateCache) *RateRefresher {
	return &RateRefresher{cache: cache}
}

func (r *RateRefresher) Name() string { return "rate-refresher" }

func (r *RateRefresher) Run(ctx context.Context, _ time.Time) error {
	if err := r.cache.Refresh(ctx); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Exchange rates refreshed", "as_of", r.cache.LastUpdate())
	return nil
}
