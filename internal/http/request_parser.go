// Request parsing and validation for the JSON API.

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finwise/internal/core"
	"finwise/internal/report"

	"github.com/shopspring/decimal"
)

const dateOnly = "2006-01-02"

// parseFlexibleDate accepts RFC3339 timestamps or bare dates.
func parseFlexibleDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD or RFC3339", s)
	}
	return t, nil
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func parseAmountField(n json.Number, field string) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", field, err)
	}
	return d, nil
}

type transactionRequest struct {
	Amount            json.Number `json:"amount"`
	Currency          string      `json:"currency"`
	Type              string      `json:"type"`
	Date              string      `json:"date"`
	Category          string      `json:"category"`
	Tags              []string    `json:"tags"`
	Description       string      `json:"description"`
	Recurring         bool        `json:"recurring"`
	RecurrencePattern string      `json:"recurrencePattern"`
	RecurrenceEndDate string      `json:"recurrenceEndDate"`
}

// toDomain builds a core.Transaction; an omitted currency falls back to the
// service's reporting currency.
func (req transactionRequest) toDomain(userID int64, defaultCurrency string) (core.Transaction, error) {
	amount, err := parseAmountField(req.Amount, "amount")
	if err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{
		UserID:            userID,
		Amount:            amount,
		Currency:          core.NormalizeCurrency(req.Currency, defaultCurrency),
		Type:              core.TransactionType(req.Type),
		Category:          strings.TrimSpace(req.Category),
		Tags:              req.Tags,
		Description:       strings.TrimSpace(req.Description),
		Recurring:         req.Recurring,
		RecurrencePattern: core.RecurrencePattern(req.RecurrencePattern),
	}

	if req.Date != "" {
		if tx.Date, err = parseFlexibleDate(req.Date); err != nil {
			return core.Transaction{}, err
		}
	}
	if req.RecurrenceEndDate != "" {
		if tx.RecurrenceEndDate, err = parseFlexibleDate(req.RecurrenceEndDate); err != nil {
			return core.Transaction{}, err
		}
	}

	return tx, tx.Validate()
}

type goalRequest struct {
	Description            string      `json:"description"`
	TargetAmount           json.Number `json:"targetAmount"`
	CurrentAmount          json.Number `json:"currentAmount"`
	Deadline               string      `json:"deadline"`
	AutoAllocate           bool        `json:"autoAllocate"`
	AutoAllocatePercentage json.Number `json:"autoAllocatePercentage"`
}

func (req goalRequest) toDomain(userID int64) (core.Goal, error) {
	target, err := parseAmountField(req.TargetAmount, "targetAmount")
	if err != nil {
		return core.Goal{}, err
	}
	current, err := parseAmountField(req.CurrentAmount, "currentAmount")
	if err != nil {
		return core.Goal{}, err
	}
	pct, err := parseAmountField(req.AutoAllocatePercentage, "autoAllocatePercentage")
	if err != nil {
		return core.Goal{}, err
	}

	g := core.Goal{
		UserID:                 userID,
		Description:            strings.TrimSpace(req.Description),
		TargetAmount:           target,
		CurrentAmount:          current,
		AutoAllocate:           req.AutoAllocate,
		AutoAllocatePercentage: pct,
	}
	if req.Deadline != "" {
		if g.Deadline, err = parseFlexibleDate(req.Deadline); err != nil {
			return core.Goal{}, err
		}
	}

	return g, g.Validate()
}

type budgetRequest struct {
	Amount   json.Number `json:"amount"`
	Category string      `json:"category"`
	Period   string      `json:"period"`
}

func (req budgetRequest) toDomain(userID int64) (core.Budget, error) {
	amount, err := parseAmountField(req.Amount, "amount")
	if err != nil {
		return core.Budget{}, err
	}

	b := core.Budget{
		UserID:   userID,
		Amount:   amount,
		Category: strings.TrimSpace(req.Category),
	}
	if req.Period != "" {
		if b.Period, err = parseFlexibleDate(req.Period); err != nil {
			return core.Budget{}, err
		}
	}

	return b, b.Validate()
}

type paymentRequest struct {
	Title   string      `json:"title"`
	DueDate string      `json:"dueDate"`
	Amount  json.Number `json:"amount"`
	Paid    bool        `json:"paid"`
}

func (req paymentRequest) toDomain(userID int64) (core.Payment, error) {
	amount, err := parseAmountField(req.Amount, "amount")
	if err != nil {
		return core.Payment{}, err
	}

	p := core.Payment{
		UserID: userID,
		Title:  strings.TrimSpace(req.Title),
		Amount: amount,
		Paid:   req.Paid,
	}
	if req.DueDate != "" {
		if p.DueDate, err = parseFlexibleDate(req.DueDate); err != nil {
			return core.Payment{}, err
		}
	}

	return p, p.Validate()
}

// parseReportQuery builds the trend filter from query parameters: startDate,
// endDate (both inclusive), type, category, tags (comma separated), groupBy.
func parseReportQuery(query url.Values) (report.Filter, report.Granularity, error) {
	var f report.Filter

	if v := strings.TrimSpace(query.Get("startDate")); v != "" {
		t, err := parseFlexibleDate(v)
		if err != nil {
			return f, "", err
		}
		f.Start = t
	}
	if v := strings.TrimSpace(query.Get("endDate")); v != "" {
		t, err := parseFlexibleDate(v)
		if err != nil {
			return f, "", err
		}
		f.End = t
	}
	if !f.Start.IsZero() && !f.End.IsZero() && f.End.Before(f.Start) {
		return f, "", fmt.Errorf("endDate before startDate")
	}

	if v := strings.TrimSpace(query.Get("type")); v != "" {
		typ := core.TransactionType(v)
		if typ != core.Income && typ != core.Expense {
			return f, "", fmt.Errorf("invalid type %q", v)
		}
		f.Type = typ
	}
	f.Category = strings.TrimSpace(query.Get("category"))

	if v := strings.TrimSpace(query.Get("tags")); v != "" {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				f.Tags = append(f.Tags, tag)
			}
		}
	}

	return f, report.ParseGranularity(strings.TrimSpace(query.Get("groupBy"))), nil
}
