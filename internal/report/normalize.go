// Package report computes the converted spending-trend and dashboard-summary
// reports over in-memory transaction sets.
package report

import (
	"context"
	"log/slog"

	"finwise/internal/core"

	"github.com/shopspring/decimal"
)

// RateSource yields the factor converting one currency into another.
// *rates.Resolver is the production implementation.
type RateSource interface {
	Rate(from, to string) (decimal.Decimal, error)
}

var one = decimal.NewFromInt(1)

// Normalizer converts transaction amounts into a reporting currency.
type Normalizer struct {
	rates RateSource
}

func NewNormalizer(rates RateSource) *Normalizer {
	return &Normalizer{rates: rates}
}

// Normalize returns the transaction amount expressed in reportingCurrency.
// When the rate lookup fails the amount passes through at factor 1: one bad
// currency code must not blank an entire report. The degradation is logged
// and never surfaces to the caller.
func (n *Normalizer) Normalize(ctx context.Context, tx core.Transaction, reportingCurrency string) decimal.Decimal {
	if tx.Currency == reportingCurrency {
		return tx.Amount
	}

	factor, err := n.rates.Rate(tx.Currency, reportingCurrency)
	if err != nil {
		slog.WarnContext(ctx, "Currency conversion degraded, using native amount",
			"currency", tx.Currency,
			"reporting_currency", reportingCurrency,
			"error", err)
		factor = one
	}

	return tx.Amount.Mul(factor)
}
