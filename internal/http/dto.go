package http

import (
	"time"

	"finwise/internal/core"
	"finwise/internal/report"
)

// Response DTOs render decimals as JSON numbers. Amounts stay decimal
// internally; the float conversion happens only at this boundary.

type transactionResponse struct {
	ID                int64    `json:"id"`
	UserID            int64    `json:"userId"`
	Amount            float64  `json:"amount"`
	Currency          string   `json:"currency"`
	Type              string   `json:"type"`
	Date              string   `json:"date"`
	Category          string   `json:"category"`
	Tags              []string `json:"tags"`
	Description       string   `json:"description"`
	Recurring         bool     `json:"recurring"`
	RecurrencePattern string   `json:"recurrencePattern,omitempty"`
	RecurrenceEndDate string   `json:"recurrenceEndDate,omitempty"`
	CreatedAt         string   `json:"createdAt,omitempty"`
}

func toTransactionResponse(tx core.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:                tx.ID,
		UserID:            tx.UserID,
		Amount:            tx.Amount.InexactFloat64(),
		Currency:          tx.Currency,
		Type:              string(tx.Type),
		Date:              tx.Date.UTC().Format(time.RFC3339),
		Category:          tx.Category,
		Tags:              tx.Tags,
		Description:       tx.Description,
		Recurring:         tx.Recurring,
		RecurrencePattern: string(tx.RecurrencePattern),
	}
	if !tx.RecurrenceEndDate.IsZero() {
		resp.RecurrenceEndDate = tx.RecurrenceEndDate.UTC().Format(time.RFC3339)
	}
	if !tx.CreatedAt.IsZero() {
		resp.CreatedAt = tx.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func toTransactionResponses(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = toTransactionResponse(tx)
	}
	return out
}

type goalResponse struct {
	ID                     int64   `json:"id"`
	UserID                 int64   `json:"userId"`
	Description            string  `json:"description"`
	TargetAmount           float64 `json:"targetAmount"`
	CurrentAmount          float64 `json:"currentAmount"`
	Deadline               string  `json:"deadline"`
	Achieved               bool    `json:"achieved"`
	AutoAllocate           bool    `json:"autoAllocate"`
	AutoAllocatePercentage float64 `json:"autoAllocatePercentage"`
	Progress               float64 `json:"progress"`
}

func toGoalResponse(g core.Goal) goalResponse {
	return goalResponse{
		ID:                     g.ID,
		UserID:                 g.UserID,
		Description:            g.Description,
		TargetAmount:           g.TargetAmount.InexactFloat64(),
		CurrentAmount:          g.CurrentAmount.InexactFloat64(),
		Deadline:               g.Deadline.UTC().Format(time.RFC3339),
		Achieved:               g.Achieved,
		AutoAllocate:           g.AutoAllocate,
		AutoAllocatePercentage: g.AutoAllocatePercentage.InexactFloat64(),
		Progress:               g.Progress().InexactFloat64(),
	}
}

type budgetResponse struct {
	ID       int64   `json:"id"`
	UserID   int64   `json:"userId"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category,omitempty"`
	Period   string  `json:"period"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:       b.ID,
		UserID:   b.UserID,
		Amount:   b.Amount.InexactFloat64(),
		Category: b.Category,
		Period:   b.Period.UTC().Format(time.RFC3339),
	}
}

type paymentResponse struct {
	ID      int64   `json:"id"`
	UserID  int64   `json:"userId"`
	Title   string  `json:"title"`
	DueDate string  `json:"dueDate"`
	Amount  float64 `json:"amount"`
	Paid    bool    `json:"paid"`
}

func toPaymentResponse(p core.Payment) paymentResponse {
	return paymentResponse{
		ID:      p.ID,
		UserID:  p.UserID,
		Title:   p.Title,
		DueDate: p.DueDate.UTC().Format(time.RFC3339),
		Amount:  p.Amount.InexactFloat64(),
		Paid:    p.Paid,
	}
}

type notificationResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	CreatedAt string `json:"createdAt"`
}

func toNotificationResponse(n core.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Message:   n.Message,
		Type:      string(n.Type),
		CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type trendPointResponse struct {
	Group string  `json:"group"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

// The trend endpoint returns a bare array of points, no envelope; consumers
// parse exactly this shape.
func toTrendPointResponses(points []report.TrendPoint) []trendPointResponse {
	out := make([]trendPointResponse, len(points))
	for i, p := range points {
		out[i] = trendPointResponse{
			Group: p.Group,
			Total: p.Total.InexactFloat64(),
			Count: p.Count,
		}
	}
	return out
}

// summaryResponse is also the value cached per user between writes.
type summaryResponse struct {
	TotalIncome  float64 `json:"totalIncome"`
	TotalExpense float64 `json:"totalExpense"`
	NetBalance   float64 `json:"netBalance"`
}

func toSummaryResponse(s report.Summary) summaryResponse {
	return summaryResponse{
		TotalIncome:  s.TotalIncome.InexactFloat64(),
		TotalExpense: s.TotalExpense.InexactFloat64(),
		NetBalance:   s.NetBalance.InexactFloat64(),
	}
}
