// Package worker mirrors expenses from SQLite to the spreadsheet. It
// reacts to change events and sweeps rows the events missed.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"spendtrack/internal/amqp"
	"spendtrack/internal/core"
	"spendtrack/internal/sheets"
	"spendtrack/internal/storage"
)

// MirrorWorker consumes expense change events and appends the rows to
// an ExpenseMirror. The pending sweep recovers from lost messages.
type MirrorWorker struct {
	storage   *storage.SQLiteRepository
	mirror    sheets.ExpenseMirror
	batchSize int
}

func NewMirrorWorker(storage *storage.SQLiteRepository, mirror sheets.ExpenseMirror, batchSize int) *MirrorWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &MirrorWorker{
		storage:   storage,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleChangeMessage processes one expense change event.
func (w *MirrorWorker) HandleChangeMessage(ctx context.Context, msg *amqp.ExpenseChangedMessage) error {
	slog.InfoContext(ctx, "Processing change event",
		"expense_id", msg.ID,
		"op", msg.Op)

	if msg.Op == amqp.OpDeleted {
		// The mirror is append-only history; deletions stay local.
		return nil
	}

	expense, err := w.storage.Get(ctx, msg.ID, msg.OwnerID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// Row was deleted before we got here, nothing to mirror.
			slog.WarnContext(ctx, "Expense gone before mirroring", "expense_id", msg.ID)
			return nil
		}
		return fmt.Errorf("get expense from storage: %w", err)
	}

	return w.mirrorExpense(ctx, expense)
}

// SweepPending mirrors rows that have no change event, a backup for
// lost messages. Returns how many rows were mirrored.
func (w *MirrorWorker) SweepPending(ctx context.Context) (int, error) {
	pending, err := w.storage.PendingMirrorSync(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending rows: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Sweeping pending rows", "count", len(pending))

	mirrored := 0
	for _, expense := range pending {
		if err := w.mirrorExpense(ctx, expense); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror pending row",
				"expense_id", expense.ID, "error", err)
			continue
		}
		mirrored++
	}
	return mirrored, nil
}

// StartupCheck drains the pending backlog with a larger batch before
// the consume loop starts.
func (w *MirrorWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.storage.PendingMirrorSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending rows for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending rows found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending rows on startup", "count", len(pending))

	synced := 0
	failed := 0
	for _, expense := range pending {
		if err := w.mirrorExpense(ctx, expense); err != nil {
			slog.ErrorContext(ctx, "Failed to mirror row during startup",
				"expense_id", expense.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup mirror check completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)

	return nil
}

// RunSweepLoop sweeps pending rows on the given interval until the
// context ends.
func (w *MirrorWorker) RunSweepLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.SweepPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending sweep failed", "error", err)
			}
		}
	}
}

func (w *MirrorWorker) mirrorExpense(ctx context.Context, expense core.Expense) error {
	ref, err := w.mirror.Append(ctx, expense)
	if err != nil {
		if markErr := w.storage.MarkMirrorError(ctx, expense.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark mirror error",
				"expense_id", expense.ID, "error", markErr)
		}
		return fmt.Errorf("append to mirror: %w", err)
	}

	if err := w.storage.MarkMirrored(ctx, expense.ID); err != nil {
		// The append worked, losing the mark means one duplicate later.
		slog.ErrorContext(ctx, "Failed to mark as mirrored",
			"expense_id", expense.ID, "error", err)
	}

	slog.InfoContext(ctx, "Mirrored expense",
		"expense_id", expense.ID,
		"mirror_ref", ref)

	return nil
}
