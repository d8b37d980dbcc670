package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validTransaction() Transaction {
	return Transaction{
		UserID:   1,
		Amount:   decimal.NewFromInt(100),
		Currency: "USD",
		Type:     Expense,
		Date:     time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Category: "Groceries",
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Transaction)
		wantErr error
	}{
		{
			name:   "valid expense",
			mutate: func(tx *Transaction) {},
		},
		{
			name:    "negative amount",
			mutate:  func(tx *Transaction) { tx.Amount = decimal.NewFromInt(-5) },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "unknown type",
			mutate:  func(tx *Transaction) { tx.Type = "transfer" },
			wantErr: ErrInvalidType,
		},
		{
			name:    "zero date",
			mutate:  func(tx *Transaction) { tx.Date = time.Time{} },
			wantErr: ErrInvalidDate,
		},
		{
			name:    "empty category",
			mutate:  func(tx *Transaction) { tx.Category = "  " },
			wantErr: ErrEmptyCategory,
		},
		{
			name:    "recurring without pattern",
			mutate:  func(tx *Transaction) { tx.Recurring = true },
			wantErr: ErrInvalidRecurrence,
		},
		{
			name: "recurring with pattern",
			mutate: func(tx *Transaction) {
				tx.Recurring = true
				tx.RecurrencePattern = RecurMonthly
			},
		},
		{
			name:   "zero amount allowed",
			mutate: func(tx *Transaction) { tx.Amount = decimal.Zero },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTransaction()
			tt.mutate(&tx)
			if err := tx.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGoal_Validate(t *testing.T) {
	valid := Goal{
		UserID:                 1,
		Description:            "Emergency fund",
		TargetAmount:           decimal.NewFromInt(1000),
		Deadline:               time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		AutoAllocatePercentage: decimal.NewFromInt(10),
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid goal: %v", err)
	}

	g := valid
	g.AutoAllocatePercentage = decimal.NewFromInt(150)
	if err := g.Validate(); err != ErrInvalidPercentage {
		t.Errorf("percentage over 100: got %v, want %v", err, ErrInvalidPercentage)
	}

	g = valid
	g.TargetAmount = decimal.Zero
	if err := g.Validate(); err != ErrInvalidAmount {
		t.Errorf("zero target: got %v, want %v", err, ErrInvalidAmount)
	}
}

func TestGoal_Progress(t *testing.T) {
	g := Goal{
		TargetAmount:  decimal.NewFromInt(200),
		CurrentAmount: decimal.NewFromInt(50),
	}
	if got := g.Progress(); !got.Equal(decimal.NewFromInt(25)) {
		t.Errorf("Progress() = %s, want 25", got)
	}

	g.TargetAmount = decimal.Zero
	if got := g.Progress(); !got.IsZero() {
		t.Errorf("Progress() with zero target = %s, want 0", got)
	}
}

func TestNormalizeCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"usd", "USD"},
		{" EUR ", "EUR"},
		{"", "USD"},
		{"  ", "USD"},
	}
	for _, tt := range tests {
		if got := NormalizeCurrency(tt.in, "USD"); got != tt.want {
			t.Errorf("NormalizeCurrency(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitTags(t *testing.T) {
	tags := SplitTags(" food, travel ,,  ")
	if len(tags) != 2 || tags[0] != "food" || tags[1] != "travel" {
		t.Errorf("SplitTags() = %v, want [food travel]", tags)
	}
	if SplitTags("   ") != nil {
		t.Error("SplitTags of blank input should be nil")
	}
}
