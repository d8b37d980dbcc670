package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	RecurDaily   RecurrencePattern = "daily"
	RecurWeekly  RecurrencePattern = "weekly"
	RecurMonthly RecurrencePattern = "monthly"
)

const (
	NotifyUpcoming NotificationType = "upcoming"
	NotifyMissed   NotificationType = "missed"
	NotifyUnusual  NotificationType = "unusual"
	NotifyPayment  NotificationType = "payment"
	NotifyGoal     NotificationType = "goal"
)

type (
	TransactionType   string
	RecurrencePattern string
	NotificationType  string

	// Transaction is a single income or expense line in its native currency.
	Transaction struct {
		ID                int64
		UserID            int64
		Amount            decimal.Decimal
		Currency          string
		Type              TransactionType
		Date              time.Time
		Category          string
		Tags              []string
		Description       string
		Recurring         bool
		RecurrencePattern RecurrencePattern
		RecurrenceEndDate time.Time // zero when the transaction is not recurring
		CreatedAt         time.Time
	}

	// Goal is a savings target; the allocator mutates CurrentAmount and Achieved.
	Goal struct {
		ID                     int64
		UserID                 int64
		Description            string
		TargetAmount           decimal.Decimal
		CurrentAmount          decimal.Decimal
		Deadline               time.Time
		Achieved               bool
		AutoAllocate           bool
		AutoAllocatePercentage decimal.Decimal
	}

	// Budget caps expenses for one calendar month, optionally per category.
	// Period is the first day of the budgeted month.
	Budget struct {
		ID       int64
		UserID   int64
		Amount   decimal.Decimal
		Category string // empty means overall monthly spending
		Period   time.Time
	}

	// Payment is a bill with a due date.
	Payment struct {
		ID      int64
		UserID  int64
		Title   string
		DueDate time.Time
		Amount  decimal.Decimal
		Paid    bool
	}

	Notification struct {
		ID        int64
		UserID    int64
		Message   string
		Type      NotificationType
		CreatedAt time.Time
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidType       = errors.New("invalid transaction type")
	ErrInvalidDate       = errors.New("invalid date")
	ErrEmptyCategory     = errors.New("empty category")
	ErrEmptyDescription  = errors.New("empty description")
	ErrEmptyTitle        = errors.New("empty title")
	ErrInvalidRecurrence = errors.New("invalid recurrence pattern")
	ErrInvalidPercentage = errors.New("invalid allocation percentage")
	ErrInvalidPeriod     = errors.New("invalid budget period")
	ErrInvalidDeadline   = errors.New("invalid deadline")
)

func (t Transaction) Validate() error {
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if t.Type != Income && t.Type != Expense {
		return ErrInvalidType
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Recurring {
		switch t.RecurrencePattern {
		case RecurDaily, RecurWeekly, RecurMonthly:
		default:
			return ErrInvalidRecurrence
		}
	}
	return nil
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Description) == "" {
		return ErrEmptyDescription
	}
	if !g.TargetAmount.IsPositive() {
		return ErrInvalidAmount
	}
	if g.Deadline.IsZero() {
		return ErrInvalidDeadline
	}
	if g.AutoAllocatePercentage.IsNegative() || g.AutoAllocatePercentage.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidPercentage
	}
	return nil
}

func (b Budget) Validate() error {
	if !b.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if b.Period.IsZero() {
		return ErrInvalidPeriod
	}
	return nil
}

func (p Payment) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return ErrEmptyTitle
	}
	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if p.DueDate.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Progress returns the goal's completion percentage, 0 when the target is
// not positive.
func (g Goal) Progress() decimal.Decimal {
	if !g.TargetAmount.IsPositive() {
		return decimal.Zero
	}
	return g.CurrentAmount.Div(g.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2)
}
