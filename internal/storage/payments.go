package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finwise/internal/core"
)

const paymentColumns = `id, user_id, title, due_date, amount, paid`

func (r *Repository) CreatePayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (user_id, title, due_date, amount, paid)
		VALUES (?, ?, ?, ?, ?)`,
		p.UserID, p.Title, p.DueDate, p.Amount.String(), p.Paid)
	if err != nil {
		return core.Payment{}, fmt.Errorf("create payment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Payment{}, fmt.Errorf("payment id: %w", err)
	}

	slog.InfoContext(ctx, "Payment saved",
		"id", id,
		"user_id", p.UserID,
		"title", p.Title,
		"due_date", p.DueDate)

	return r.GetPayment(ctx, p.UserID, id)
}

func (r *Repository) GetPayment(ctx context.Context, userID, id int64) (core.Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments WHERE id = ? AND user_id = ?`, id, userID)

	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Payment{}, ErrNotFound
	}
	if err != nil {
		return core.Payment{}, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

func (r *Repository) ListPayments(ctx context.Context, userID int64) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments WHERE user_id = ? ORDER BY due_date, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	return collectPayments(rows)
}

func (r *Repository) UpdatePayment(ctx context.Context, p core.Payment) (core.Payment, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payments SET title = ?, due_date = ?, amount = ?, paid = ?
		WHERE id = ? AND user_id = ?`,
		p.Title, p.DueDate, p.Amount.String(), p.Paid, p.ID, p.UserID)
	if err != nil {
		return core.Payment{}, fmt.Errorf("update payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Payment{}, ErrNotFound
	}

	return r.GetPayment(ctx, p.UserID, p.ID)
}

func (r *Repository) DeletePayment(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM payments WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPaymentsDueBetween returns unpaid payments across all users due inside
// the window, bounds inclusive. Long-overdue payments stay out, so the
// reminder job never repeats them.
func (r *Repository) ListPaymentsDueBetween(ctx context.Context, from, to time.Time) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+paymentColumns+`
		FROM payments WHERE paid = 0 AND due_date >= ? AND due_date <= ?
		ORDER BY due_date, id`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list payments due: %w", err)
	}
	defer rows.Close()

	return collectPayments(rows)
}

func scanPayment(row rowScanner) (core.Payment, error) {
	var (
		p      core.Payment
		amount string
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.DueDate, &amount, &p.Paid)
	if err != nil {
		return core.Payment{}, err
	}

	if p.Amount, err = parseAmount(amount); err != nil {
		return core.Payment{}, err
	}
	return p, nil
}

func collectPayments(rows *sql.Rows) ([]core.Payment, error) {
	payments := make([]core.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
