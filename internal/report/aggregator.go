package report

import (
	"context"
	"sort"
	"time"

	"finwise/internal/core"

	"github.com/shopspring/decimal"
)

// Filter restricts which transactions contribute to a trend report. Zero
// values leave the corresponding dimension unconstrained.
type Filter struct {
	Start    time.Time // inclusive lower bound on Date
	End      time.Time // inclusive upper bound on Date
	Type     core.TransactionType
	Category string
	Tags     []string // at least one tag must match
}

// Matches reports whether a transaction passes every set predicate.
func (f Filter) Matches(tx core.Transaction) bool {
	if !f.Start.IsZero() && tx.Date.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && tx.Date.After(f.End) {
		return false
	}
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	if len(f.Tags) > 0 && !hasAnyTag(tx.Tags, f.Tags) {
		return false
	}
	return true
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// TrendPoint is one bucket of the spending-trend report.
type TrendPoint struct {
	Group string
	Total decimal.Decimal
	Count int
}

// Summary is the all-time dashboard summary in the reporting currency.
type Summary struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	NetBalance   decimal.Decimal
}

// Aggregator folds normalized transaction amounts into reports. It is pure
// apart from the rate table read inside normalization; records are expected
// to be fully materialized before it runs.
type Aggregator struct {
	normalizer *Normalizer
}

func NewAggregator(rates RateSource) *Aggregator {
	return &Aggregator{normalizer: NewNormalizer(rates)}
}

// BuildTrendReport filters, normalizes and buckets transactions, returning
// points sorted by ascending lexical bucket key. Empty input yields an empty
// slice.
func (a *Aggregator) BuildTrendReport(ctx context.Context, txs []core.Transaction, f Filter, g Granularity, reportingCurrency string) []TrendPoint {
	type bucket struct {
		total decimal.Decimal
		count int
	}
	buckets := make(map[string]*bucket)

	for _, tx := range txs {
		if !f.Matches(tx) {
			continue
		}
		amount := a.normalizer.Normalize(ctx, tx, reportingCurrency)
		key := BucketKey(tx.Date, g)
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.total = b.total.Add(amount)
		b.count++
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	points := make([]TrendPoint, 0, len(keys))
	for _, key := range keys {
		points = append(points, TrendPoint{
			Group: key,
			Total: buckets[key].total,
			Count: buckets[key].count,
		})
	}
	return points
}

// BuildDashboardSummary totals all-time income and expenses in the reporting
// currency. Empty input yields zero totals, not an error.
func (a *Aggregator) BuildDashboardSummary(ctx context.Context, txs []core.Transaction, reportingCurrency string) Summary {
	income := decimal.Zero
	expense := decimal.Zero

	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			income = income.Add(a.normalizer.Normalize(ctx, tx, reportingCurrency))
		case core.Expense:
			expense = expense.Add(a.normalizer.Normalize(ctx, tx, reportingCurrency))
		}
	}

	return Summary{
		TotalIncome:  income,
		TotalExpense: expense,
		NetBalance:   income.Sub(expense),
	}
}
