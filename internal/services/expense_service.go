// Package services orchestrates expense writes across SQLite and the
// AMQP broker. Reads go straight to storage or the analytics engine.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"spendtrack/internal/amqp"
	"spendtrack/internal/core"
	"spendtrack/internal/storage"
)

// ExpenseService owns the write path. SQLite is the source of truth;
// change events are best effort and never fail the request.
type ExpenseService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewExpenseService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// CreateExpense validates and saves an expense, then publishes a
// change event for the mirror worker.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validate expense: %w", err)
	}

	id, err := s.storage.Insert(ctx, e)
	if err != nil {
		return "", fmt.Errorf("save expense: %w", err)
	}

	if err := s.publishChange(ctx, id, e.OwnerID, amqp.OpCreated); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"expense_id", id, "error", err)
		// Expense is saved locally, the sweep worker will catch up.
	}

	return id, nil
}

// GetExpense fetches one expense scoped to its owner.
func (s *ExpenseService) GetExpense(ctx context.Context, id, ownerID string) (core.Expense, error) {
	return s.storage.Get(ctx, id, ownerID)
}

// UpdateExpense applies a partial update and publishes a change event.
func (s *ExpenseService) UpdateExpense(ctx context.Context, id, ownerID string, patch core.ExpensePatch) (core.Expense, error) {
	updated, err := s.storage.Update(ctx, id, ownerID, patch)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	if !patch.IsEmpty() {
		if err := s.publishChange(ctx, id, ownerID, amqp.OpUpdated); err != nil {
			slog.ErrorContext(ctx, "Failed to publish change event",
				"expense_id", id, "error", err)
		}
	}

	return updated, nil
}

// DeleteExpense removes an expense and publishes a delete event.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id, ownerID string) error {
	if err := s.storage.Delete(ctx, id, ownerID); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	if err := s.publishChange(ctx, id, ownerID, amqp.OpDeleted); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"expense_id", id, "error", err)
	}

	return nil
}

// AttachReceipt links a receipt URL to an existing expense.
func (s *ExpenseService) AttachReceipt(ctx context.Context, id, ownerID, receiptURL string) (core.Expense, error) {
	return s.UpdateExpense(ctx, id, ownerID, core.ExpensePatch{ReceiptURL: &receiptURL})
}

func (s *ExpenseService) publishChange(ctx context.Context, id, ownerID, op string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping change event",
			"expense_id", id, "op", op)
		return nil
	}

	return s.amqpClient.PublishExpenseChanged(ctx, id, ownerID, op)
}

// Close closes both storage and AMQP connections.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}

	return nil
}
