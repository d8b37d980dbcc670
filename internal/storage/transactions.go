package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finwise/internal/core"

	"github.com/shopspring/decimal"
)

const transactionColumns = `id, user_id, amount, currency, type, date, category,
	tags, description, recurring, recurrence_pattern, recurrence_end_date, created_at`

func (r *Repository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	var endDate any
	if !tx.RecurrenceEndDate.IsZero() {
		endDate = tx.RecurrenceEndDate
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions
			(user_id, amount, currency, type, date, category, tags,
			 description, recurring, recurrence_pattern, recurrence_end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.Amount.String(), tx.Currency, string(tx.Type), tx.Date,
		tx.Category, core.JoinTags(tx.Tags), tx.Description, tx.Recurring,
		string(tx.RecurrencePattern), endDate)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"user_id", tx.UserID,
		"type", tx.Type,
		"amount", tx.Amount,
		"currency", tx.Currency)

	return r.GetTransaction(ctx, tx.UserID, id)
}

func (r *Repository) GetTransaction(ctx context.Context, userID, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE id = ? AND user_id = ?`, id, userID)

	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions WHERE user_id = ? ORDER BY date DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func (r *Repository) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	var endDate any
	if !tx.RecurrenceEndDate.IsZero() {
		endDate = tx.RecurrenceEndDate
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET amount = ?, currency = ?, type = ?, date = ?, category = ?,
		    tags = ?, description = ?, recurring = ?, recurrence_pattern = ?,
		    recurrence_end_date = ?
		WHERE id = ? AND user_id = ?`,
		tx.Amount.String(), tx.Currency, string(tx.Type), tx.Date, tx.Category,
		core.JoinTags(tx.Tags), tx.Description, tx.Recurring,
		string(tx.RecurrencePattern), endDate, tx.ID, tx.UserID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Transaction{}, ErrNotFound
	}

	return r.GetTransaction(ctx, tx.UserID, tx.ID)
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecurringTransactions returns a user's recurring transactions whose end
// date is unset or in the future.
func (r *Repository) ListRecurringTransactions(ctx context.Context, userID int64, now time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = ? AND recurring = 1
		  AND (recurrence_end_date IS NULL OR recurrence_end_date >= ?)
		ORDER BY date DESC, id DESC`, userID, now)
	if err != nil {
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// ListActiveRecurring returns every user's active recurring transactions, for
// the reminder job.
func (r *Repository) ListActiveRecurring(ctx context.Context, now time.Time) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE recurring = 1
		  AND (recurrence_end_date IS NULL OR recurrence_end_date >= ?)`, now)
	if err != nil {
		return nil, fmt.Errorf("list active recurring: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

// SumExpenses totals a user's expenses between from (inclusive) and to
// (exclusive). An empty category sums across all categories. The sum is taken
// over the exact stored amounts, not a SQL float aggregate.
func (r *Repository) SumExpenses(ctx context.Context, userID int64, category string, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT amount
		FROM transactions
		WHERE user_id = ? AND type = 'expense' AND date >= ? AND date < ?`
	args := []any{userID, from, to}
	if category != "" {
		query += ` AND category = ?`
		args = append(args, category)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return decimal.Zero, fmt.Errorf("scan expense amount: %w", err)
		}
		amount, err := parseAmount(raw)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(amount)
	}
	return total, rows.Err()
}

// ListExpenseUserIDs returns the distinct users that have at least one expense.
func (r *Repository) ListExpenseUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT user_id FROM transactions WHERE type = 'expense'`)
	if err != nil {
		return nil, fmt.Errorf("list expense users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx      core.Transaction
		amount  string
		typ     string
		tags    string
		pattern string
		endDate sql.NullTime
	)
	err := row.Scan(&tx.ID, &tx.UserID, &amount, &tx.Currency, &typ, &tx.Date,
		&tx.Category, &tags, &tx.Description, &tx.Recurring, &pattern,
		&endDate, &tx.CreatedAt)
	if err != nil {
		return core.Transaction{}, err
	}

	tx.Amount, err = parseAmount(amount)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Type = core.TransactionType(typ)
	tx.Tags = core.SplitTags(tags)
	tx.RecurrencePattern = core.RecurrencePattern(pattern)
	if endDate.Valid {
		tx.RecurrenceEndDate = endDate.Time
	}
	return tx, nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	txs := make([]core.Transaction, 0)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}
