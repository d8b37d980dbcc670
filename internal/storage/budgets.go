package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"finwise/internal/core"
)

const budgetColumns = `id, user_id, amount, category, period`

func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, amount, category, period)
		VALUES (?, ?, ?, ?)`,
		b.UserID, b.Amount.String(), b.Category, b.Period)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget id: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved",
		"id", id,
		"user_id", b.UserID,
		"category", b.Category,
		"amount", b.Amount)

	return r.GetBudget(ctx, b.UserID, id)
}

func (r *Repository) GetBudget(ctx context.Context, userID, id int64) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets WHERE id = ? AND user_id = ?`, id, userID)

	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (r *Repository) ListBudgets(ctx context.Context, userID int64) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets WHERE user_id = ? ORDER BY period DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	return collectBudgets(rows)
}

// ListAllBudgets returns every user's budgets, for the monitoring job.
func (r *Repository) ListAllBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets ORDER BY user_id, id`)
	if err != nil {
		return nil, fmt.Errorf("list all budgets: %w", err)
	}
	defer rows.Close()

	return collectBudgets(rows)
}

func (r *Repository) UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE budgets SET amount = ?, category = ?, period = ?
		WHERE id = ? AND user_id = ?`,
		b.Amount.String(), b.Category, b.Period, b.ID, b.UserID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Budget{}, ErrNotFound
	}

	return r.GetBudget(ctx, b.UserID, b.ID)
}

func (r *Repository) DeleteBudget(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budgets WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b      core.Budget
		amount string
	)
	err := row.Scan(&b.ID, &b.UserID, &amount, &b.Category, &b.Period)
	if err != nil {
		return core.Budget{}, err
	}

	if b.Amount, err = parseAmount(amount); err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func collectBudgets(rows *sql.Rows) ([]core.Budget, error) {
	budgets := make([]core.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}
