package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"spendtrack/internal/core"
)

// Mirror-sync bookkeeping for the sheet mirror worker. Rows start
// unsynced; the worker marks them synced or errored after appending them
// to the owner's mirror sheet.

// PendingMirrorSync returns up to limit rows that have not been mirrored
// yet, oldest first, so a backlog drains in insertion order.
func (r *SQLiteRepository) PendingMirrorSync(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses
		 WHERE synced_at IS NULL AND sync_error = 0
		 ORDER BY created_at LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("pending mirror sync: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pending mirror sync: %w", err)
	}
	return expenses, nil
}

// MarkMirrored records a successful mirror append.
func (r *SQLiteRepository) MarkMirrored(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET synced_at = ?, sync_error = 0 WHERE id = ?`,
		formatTime(time.Now()), id); err != nil {
		return fmt.Errorf("mark mirrored: %w", err)
	}
	slog.InfoContext(ctx, "Expense marked as mirrored", "id", id)
	return nil
}

// MarkMirrorError flags a row so the sweep stops retrying it until the
// flag is cleared.
func (r *SQLiteRepository) MarkMirrorError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET sync_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark mirror error: %w", err)
	}
	slog.WarnContext(ctx, "Expense marked with mirror error", "id", id)
	return nil
}
