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

const goalColumns = `id, user_id, description, target_amount, current_amount,
	deadline, achieved, auto_allocate, auto_allocate_percentage`

func (r *Repository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO goals
			(user_id, description, target_amount, current_amount, deadline,
			 achieved, auto_allocate, auto_allocate_percentage)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Description, g.TargetAmount.String(), g.CurrentAmount.String(),
		g.Deadline, g.Achieved, g.AutoAllocate, g.AutoAllocatePercentage.String())
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Goal{}, fmt.Errorf("goal id: %w", err)
	}

	slog.InfoContext(ctx, "Goal saved",
		"id", id,
		"user_id", g.UserID,
		"target_amount", g.TargetAmount)

	return r.GetGoal(ctx, g.UserID, id)
}

func (r *Repository) GetGoal(ctx context.Context, userID, id int64) (core.Goal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+goalColumns+`
		FROM goals WHERE id = ? AND user_id = ?`, id, userID)

	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal: %w", err)
	}
	return g, nil
}

func (r *Repository) ListGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+goalColumns+`
		FROM goals WHERE user_id = ? ORDER BY deadline, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	return collectGoals(rows)
}

// UpdateGoal overwrites every mutable goal field.
func (r *Repository) UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals
		SET description = ?, target_amount = ?, current_amount = ?, deadline = ?,
		    achieved = ?, auto_allocate = ?, auto_allocate_percentage = ?
		WHERE id = ? AND user_id = ?`,
		g.Description, g.TargetAmount.String(), g.CurrentAmount.String(),
		g.Deadline, g.Achieved, g.AutoAllocate, g.AutoAllocatePercentage.String(),
		g.ID, g.UserID)
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Goal{}, ErrNotFound
	}

	return r.GetGoal(ctx, g.UserID, g.ID)
}

// SaveGoalProgress persists only the allocator-owned fields.
func (r *Repository) SaveGoalProgress(ctx context.Context, g core.Goal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE goals SET current_amount = ?, achieved = ?
		WHERE id = ? AND user_id = ?`,
		g.CurrentAmount.String(), g.Achieved, g.ID, g.UserID)
	if err != nil {
		return fmt.Errorf("save goal progress: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Goal progress saved",
		"id", g.ID,
		"user_id", g.UserID,
		"current_amount", g.CurrentAmount,
		"achieved", g.Achieved)
	return nil
}

func (r *Repository) DeleteGoal(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAutoAllocateGoals returns every goal the user has opted into savings
// allocation, ordered by id so allocation order is stable. Achieved goals stay
// in the set; their balance keeps growing past the target.
func (r *Repository) ListAutoAllocateGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+goalColumns+`
		FROM goals
		WHERE user_id = ? AND auto_allocate = 1
		ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list auto-allocate goals: %w", err)
	}
	defer rows.Close()

	return collectGoals(rows)
}

// ListGoalsDueBetween returns unachieved goals across all users whose
// deadline falls inside the window, bounds inclusive. Goals already past their
// deadline stay out, so the reminder job never repeats them.
func (r *Repository) ListGoalsDueBetween(ctx context.Context, from, to time.Time) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+goalColumns+`
		FROM goals WHERE achieved = 0 AND deadline >= ? AND deadline <= ?
		ORDER BY deadline, id`, from, to)
	if err != nil {
		return nil, fmt.Errorf("list goals due: %w", err)
	}
	defer rows.Close()

	return collectGoals(rows)
}

func scanGoal(row rowScanner) (core.Goal, error) {
	var (
		g       core.Goal
		target  string
		current string
		pct     string
	)
	err := row.Scan(&g.ID, &g.UserID, &g.Description, &target, &current,
		&g.Deadline, &g.Achieved, &g.AutoAllocate, &pct)
	if err != nil {
		return core.Goal{}, err
	}

	if g.TargetAmount, err = parseAmount(target); err != nil {
		return core.Goal{}, err
	}
	if g.CurrentAmount, err = parseAmount(current); err != nil {
		return core.Goal{}, err
	}
	if g.AutoAllocatePercentage, err = parseAmount(pct); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

func collectGoals(rows *sql.Rows) ([]core.Goal, error) {
	goals := make([]core.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}
