package services

import (
	"context"
	"errors"
	"testing"

	"finwise/internal/core"

	"github.com/shopspring/decimal"
)

type fakeGoalStore struct {
	goals   []core.Goal
	saved   []core.Goal
	failOn  int64 // goal id whose save fails; 0 disables
	listErr error
}

func (f *fakeGoalStore) ListAutoAllocateGoals(context.Context, int64) ([]core.Goal, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.goals, nil
}

func (f *fakeGoalStore) SaveGoalProgress(_ context.Context, g core.Goal) error {
	if f.failOn != 0 && g.ID == f.failOn {
		return errors.New("save failed")
	}
	f.saved = append(f.saved, g)
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAllocate(t *testing.T) {
	tests := []struct {
		name         string
		goal         core.Goal
		income       string
		wantCurrent  string
		wantAchieved bool
	}{
		{
			name:        "ten percent of income",
			goal:        core.Goal{TargetAmount: dec("1000"), CurrentAmount: dec("0"), AutoAllocatePercentage: dec("10")},
			income:      "200",
			wantCurrent: "20",
		},
		{
			name:         "reaching target flags achieved",
			goal:         core.Goal{TargetAmount: dec("100"), CurrentAmount: dec("50"), AutoAllocatePercentage: dec("100")},
			income:       "100",
			wantCurrent:  "150",
			wantAchieved: true,
		},
		{
			name:         "exactly hitting target flags achieved",
			goal:         core.Goal{TargetAmount: dec("100"), CurrentAmount: dec("90"), AutoAllocatePercentage: dec("10")},
			income:       "100",
			wantCurrent:  "100",
			wantAchieved: true,
		},
		{
			name:        "zero percentage leaves goal untouched",
			goal:        core.Goal{TargetAmount: dec("100"), CurrentAmount: dec("5"), AutoAllocatePercentage: dec("0")},
			income:      "100",
			wantCurrent: "5",
		},
		{
			name:        "fractional share stays exact",
			goal:        core.Goal{TargetAmount: dec("1000"), CurrentAmount: dec("0"), AutoAllocatePercentage: dec("12.5")},
			income:      "99.99",
			wantCurrent: "12.49875",
		},
	}

	allocator := NewSavingsAllocator(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := allocator.Allocate([]core.Goal{tt.goal}, dec(tt.income))
			if len(got) != 1 {
				t.Fatalf("got %d goals, want 1", len(got))
			}
			if !got[0].CurrentAmount.Equal(dec(tt.wantCurrent)) {
				t.Errorf("current = %s, want %s", got[0].CurrentAmount, tt.wantCurrent)
			}
			if got[0].Achieved != tt.wantAchieved {
				t.Errorf("achieved = %v, want %v", got[0].Achieved, tt.wantAchieved)
			}
		})
	}
}

func TestAllocate_AchievedStaysSet(t *testing.T) {
	allocator := NewSavingsAllocator(nil)
	goal := core.Goal{TargetAmount: dec("100"), CurrentAmount: dec("120"), Achieved: true, AutoAllocatePercentage: dec("0")}

	got := allocator.Allocate([]core.Goal{goal}, dec("50"))
	if !got[0].Achieved {
		t.Error("achieved must never be cleared by allocation")
	}
}

func TestAllocateForUser_SavesEachGoal(t *testing.T) {
	store := &fakeGoalStore{goals: []core.Goal{
		{ID: 1, TargetAmount: dec("1000"), CurrentAmount: dec("0"), AutoAllocatePercentage: dec("10")},
		{ID: 2, TargetAmount: dec("500"), CurrentAmount: dec("480"), AutoAllocatePercentage: dec("20")},
	}}
	allocator := NewSavingsAllocator(store)

	if err := allocator.AllocateForUser(context.Background(), 1, dec("100")); err != nil {
		t.Fatalf("AllocateForUser() error: %v", err)
	}

	if len(store.saved) != 2 {
		t.Fatalf("saved %d goals, want 2", len(store.saved))
	}
	if !store.saved[0].CurrentAmount.Equal(dec("10")) {
		t.Errorf("goal 1 current = %s, want 10", store.saved[0].CurrentAmount)
	}
	if !store.saved[1].CurrentAmount.Equal(dec("500")) || !store.saved[1].Achieved {
		t.Errorf("goal 2 = %+v, want current 500 achieved", store.saved[1])
	}
}

func TestAllocateForUser_FirstFailureAbortsRest(t *testing.T) {
	store := &fakeGoalStore{
		goals: []core.Goal{
			{ID: 1, TargetAmount: dec("100"), AutoAllocatePercentage: dec("10")},
			{ID: 2, TargetAmount: dec("100"), AutoAllocatePercentage: dec("10")},
			{ID: 3, TargetAmount: dec("100"), AutoAllocatePercentage: dec("10")},
		},
		failOn: 2,
	}
	allocator := NewSavingsAllocator(store)

	err := allocator.AllocateForUser(context.Background(), 1, dec("100"))
	if err == nil {
		t.Fatal("AllocateForUser() should propagate the save failure")
	}
	// Goal 1 was saved before the failure; goal 3 never reached.
	if len(store.saved) != 1 || store.saved[0].ID != 1 {
		t.Errorf("saved = %+v, want only goal 1", store.saved)
	}
}

func TestAllocateForUser_NonPositiveIncomeIsNoop(t *testing.T) {
	store := &fakeGoalStore{listErr: errors.New("must not be called")}
	allocator := NewSavingsAllocator(store)

	if err := allocator.AllocateForUser(context.Background(), 1, dec("0")); err != nil {
		t.Errorf("zero income: %v", err)
	}
	if err := allocator.AllocateForUser(context.Background(), 1, dec("-5")); err != nil {
		t.Errorf("negative income: %v", err)
	}
}
