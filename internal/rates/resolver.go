package rates

import (
	"errors"

	"finwise/internal/core"

	"github.com/shopspring/decimal"
)

// ErrRatesUnavailable means the cache has never been populated.
var ErrRatesUnavailable = errors.New("exchange rates not available; please try again later")

// RateNotFoundError means the table has no entry for a non-pivot currency.
type RateNotFoundError struct {
	Code string
}

func (e *RateNotFoundError) Error() string {
	return "exchange rate not available for currency " + e.Code
}

var one = decimal.NewFromInt(1)

// Resolver computes pairwise conversion factors from the shared cache. It
// performs no I/O and never blocks.
type Resolver struct {
	cache *Cache
}

func NewResolver(cache *Cache) *Resolver {
	return &Resolver{cache: cache}
}

// Rate returns the factor that converts an amount in from-currency into
// to-currency: (1 / rateOf(from)) * rateOf(to), rounded to two decimals.
// The pivot currency's rate is 1 by definition and needs no table entry.
// Identical currencies convert at exactly 1 with no cache lookup.
func (r *Resolver) Rate(from, to string) (decimal.Decimal, error) {
	if from == to {
		return one, nil
	}

	table := r.cache.Table()
	if len(table) == 0 {
		return decimal.Zero, ErrRatesUnavailable
	}

	rateFrom, err := r.rateOf(table, from)
	if err != nil {
		return decimal.Zero, err
	}
	rateTo, err := r.rateOf(table, to)
	if err != nil {
		return decimal.Zero, err
	}

	// Rounded to two decimals like the stored rates. Round-tripping A->B->A
	// therefore compounds rounding error; that is the documented behavior.
	return core.Round2(one.Div(rateFrom).Mul(rateTo)), nil
}

func (r *Resolver) rateOf(table Table, code string) (decimal.Decimal, error) {
	if code == r.cache.Pivot() {
		return one, nil
	}
	rate, ok := table[code]
	if !ok || rate.IsZero() {
		return decimal.Zero, &RateNotFoundError{Code: code}
	}
	return rate, nil
}
