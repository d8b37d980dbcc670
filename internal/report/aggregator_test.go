package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"finwise/internal/core"

	"github.com/shopspring/decimal"
)

// fakeRates resolves from a fixed pair table, failing for unknown pairs.
type fakeRates struct {
	pairs map[string]string // "FROM/TO" -> factor
}

func (f *fakeRates) Rate(from, to string) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	factor, ok := f.pairs[from+"/"+to]
	if !ok {
		return decimal.Zero, errors.New("exchange rate not available for currency " + from)
	}
	return decimal.RequireFromString(factor), nil
}

func tx(amount string, currency string, typ core.TransactionType, date time.Time) core.Transaction {
	return core.Transaction{
		Amount:   decimal.RequireFromString(amount),
		Currency: currency,
		Type:     typ,
		Date:     date,
		Category: "General",
	}
}

func jan(day int) time.Time {
	return time.Date(2025, 1, day, 12, 0, 0, 0, time.UTC)
}

func TestNormalizer_SameCurrencyIdentity(t *testing.T) {
	n := NewNormalizer(&fakeRates{})
	record := tx("123.456", "USD", core.Expense, jan(1))

	got := n.Normalize(context.Background(), record, "USD")
	if !got.Equal(record.Amount) {
		t.Errorf("Normalize() = %s, want exact amount %s", got, record.Amount)
	}
}

func TestNormalizer_DegradesToFactorOne(t *testing.T) {
	n := NewNormalizer(&fakeRates{pairs: map[string]string{}})
	record := tx("80", "XYZ", core.Expense, jan(1))

	got := n.Normalize(context.Background(), record, "USD")
	if !got.Equal(decimal.NewFromInt(80)) {
		t.Errorf("degraded Normalize() = %s, want 80", got)
	}
}

func TestBucketKey(t *testing.T) {
	date := time.Date(2025, 3, 7, 23, 30, 0, 0, time.UTC)

	if got := BucketKey(date, GroupMonthly); got != "2025-3" {
		t.Errorf("monthly key = %s, want 2025-3", got)
	}
	if got := BucketKey(date, GroupDaily); got != "2025-3-7" {
		t.Errorf("daily key = %s, want 2025-3-7", got)
	}

	// Calendar fields come from UTC even for zoned inputs.
	zoned := time.Date(2025, 3, 1, 0, 30, 0, 0, time.FixedZone("UTC+2", 2*3600))
	if got := BucketKey(zoned, GroupDaily); got != "2025-2-28" {
		t.Errorf("zoned daily key = %s, want 2025-2-28", got)
	}
}

func TestParseGranularity(t *testing.T) {
	if ParseGranularity("daily") != GroupDaily {
		t.Error("daily should parse to GroupDaily")
	}
	if ParseGranularity("") != GroupMonthly {
		t.Error("empty should default to GroupMonthly")
	}
	if ParseGranularity("weekly") != GroupMonthly {
		t.Error("unknown should default to GroupMonthly")
	}
}

func TestBuildTrendReport_EmptyInput(t *testing.T) {
	agg := NewAggregator(&fakeRates{})
	points := agg.BuildTrendReport(context.Background(), nil, Filter{}, GroupMonthly, "USD")
	if len(points) != 0 {
		t.Errorf("empty input produced %d points, want 0", len(points))
	}
}

func TestBuildTrendReport_MixedCurrencyMonth(t *testing.T) {
	agg := NewAggregator(&fakeRates{pairs: map[string]string{"EUR/USD": "1.1"}})
	txs := []core.Transaction{
		tx("100", "USD", core.Expense, jan(5)),
		tx("200", "EUR", core.Expense, jan(12)),
		tx("50", "USD", core.Expense, jan(20)),
	}

	points := agg.BuildTrendReport(context.Background(), txs, Filter{}, GroupMonthly, "USD")
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	if points[0].Group != "2025-1" {
		t.Errorf("group = %s, want 2025-1", points[0].Group)
	}
	if !points[0].Total.Equal(decimal.NewFromInt(370)) {
		t.Errorf("total = %s, want 370", points[0].Total)
	}
	if points[0].Count != 3 {
		t.Errorf("count = %d, want 3", points[0].Count)
	}
}

func TestBuildTrendReport_MonthlyOrdering(t *testing.T) {
	agg := NewAggregator(&fakeRates{})
	txs := []core.Transaction{
		tx("10", "USD", core.Expense, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)),
		tx("20", "USD", core.Expense, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
	}

	points := agg.BuildTrendReport(context.Background(), txs, Filter{}, GroupMonthly, "USD")
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0].Group != "2025-1" || points[1].Group != "2025-2" {
		t.Errorf("groups = %s, %s; want 2025-1, 2025-2", points[0].Group, points[1].Group)
	}
}

func TestBuildTrendReport_UnpaddedKeysSortLexically(t *testing.T) {
	agg := NewAggregator(&fakeRates{})
	txs := []core.Transaction{
		tx("10", "USD", core.Expense, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)),
		tx("20", "USD", core.Expense, time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)),
	}

	// Unpadded month numbers: "2025-10" sorts before "2025-2". This is the
	// documented ordering contract, not a tie to chronological order.
	points := agg.BuildTrendReport(context.Background(), txs, Filter{}, GroupMonthly, "USD")
	if points[0].Group != "2025-10" || points[1].Group != "2025-2" {
		t.Errorf("groups = %s, %s; want 2025-10, 2025-2", points[0].Group, points[1].Group)
	}
}

func TestBuildTrendReport_FilterComposition(t *testing.T) {
	agg := NewAggregator(&fakeRates{})

	inRange := tx("10", "USD", core.Expense, jan(10))
	inRange.Tags = []string{"food"}

	outOfRange := tx("20", "USD", core.Expense, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	outOfRange.Tags = []string{"food"}

	wrongType := tx("30", "USD", core.Income, jan(11))
	wrongType.Tags = []string{"food"}

	wrongCategory := tx("40", "USD", core.Expense, jan(12))
	wrongCategory.Category = "Travel"
	wrongCategory.Tags = []string{"food"}

	noTagOverlap := tx("50", "USD", core.Expense, jan(13))
	noTagOverlap.Tags = []string{"rent"}

	filter := Filter{
		Start:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 1, 31, 23, 59, 59, 0, time.UTC),
		Type:     core.Expense,
		Category: "General",
		Tags:     []string{"food", "dining"},
	}

	txs := []core.Transaction{inRange, outOfRange, wrongType, wrongCategory, noTagOverlap}
	points := agg.BuildTrendReport(context.Background(), txs, filter, GroupMonthly, "USD")

	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	if points[0].Count != 1 || !points[0].Total.Equal(decimal.NewFromInt(10)) {
		t.Errorf("point = {%s %s %d}, want {2025-1 10 1}", points[0].Group, points[0].Total, points[0].Count)
	}
}

func TestBuildTrendReport_InclusiveDateBounds(t *testing.T) {
	agg := NewAggregator(&fakeRates{})
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	txs := []core.Transaction{
		tx("1", "USD", core.Expense, start),
		tx("2", "USD", core.Expense, end),
	}

	points := agg.BuildTrendReport(context.Background(), txs, Filter{Start: start, End: end}, GroupMonthly, "USD")
	if len(points) != 1 || points[0].Count != 2 {
		t.Fatalf("boundary dates must be included; got %+v", points)
	}
}

func TestBuildTrendReport_DegradedRecordStillCounts(t *testing.T) {
	agg := NewAggregator(&fakeRates{pairs: map[string]string{"EUR/USD": "1.1"}})
	txs := []core.Transaction{
		tx("100", "EUR", core.Expense, jan(5)),
		tx("25", "ZZZ", core.Expense, jan(6)), // no rate; passes through at factor 1
	}

	points := agg.BuildTrendReport(context.Background(), txs, Filter{}, GroupMonthly, "USD")
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	if !points[0].Total.Equal(decimal.NewFromInt(135)) {
		t.Errorf("total = %s, want 135 (110 converted + 25 pass-through)", points[0].Total)
	}
	if points[0].Count != 2 {
		t.Errorf("count = %d, want 2", points[0].Count)
	}
}

func TestBuildDashboardSummary(t *testing.T) {
	agg := NewAggregator(&fakeRates{pairs: map[string]string{
		"EUR/USD": "1.1",
		"GBP/USD": "1.2",
	}})
	txs := []core.Transaction{
		tx("100", "USD", core.Income, jan(1)),
		tx("200", "EUR", core.Income, jan(2)),
		tx("50", "GBP", core.Expense, jan(3)),
	}

	s := agg.BuildDashboardSummary(context.Background(), txs, "USD")
	if !s.TotalIncome.Equal(decimal.NewFromInt(320)) {
		t.Errorf("TotalIncome = %s, want 320", s.TotalIncome)
	}
	if !s.TotalExpense.Equal(decimal.NewFromInt(60)) {
		t.Errorf("TotalExpense = %s, want 60", s.TotalExpense)
	}
	if !s.NetBalance.Equal(decimal.NewFromInt(260)) {
		t.Errorf("NetBalance = %s, want 260", s.NetBalance)
	}
}

func TestBuildDashboardSummary_Empty(t *testing.T) {
	agg := NewAggregator(&fakeRates{})
	s := agg.BuildDashboardSummary(context.Background(), nil, "USD")

	if !s.TotalIncome.IsZero() || !s.TotalExpense.IsZero() || !s.NetBalance.IsZero() {
		t.Errorf("empty summary = %+v, want all zero", s)
	}
}
