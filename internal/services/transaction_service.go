package services

import (
	"context"
	"fmt"
	"log/slog"

	"finwise/internal/core"
)

type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
}

// TransactionService creates transactions and runs the side effects that
// follow from them.
type TransactionService struct {
	store     TransactionStore
	allocator *SavingsAllocator
}

func NewTransactionService(store TransactionStore, allocator *SavingsAllocator) *TransactionService {
	return &TransactionService{store: store, allocator: allocator}
}

// Create validates and persists a transaction. Income triggers savings
// allocation; an allocation failure is logged but the created transaction
// stands, it is already durable at that point.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	saved, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	if saved.Type == core.Income && s.allocator != nil {
		if err := s.allocator.AllocateForUser(ctx, saved.UserID, saved.Amount); err != nil {
			slog.ErrorContext(ctx, "Savings allocation failed after income",
				"user_id", saved.UserID,
				"transaction_id", saved.ID,
				"error", err)
		}
	}

	return saved, nil
}
