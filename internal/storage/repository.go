package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"spendtrack/internal/core"
	"spendtrack/internal/query"
)

// SQLiteRepository is the ledger store adapter: a durable, queryable
// collection of expense rows with predicate filtering and grouped
// aggregates pushed down to SQL. Every statement is owner-scoped.
type SQLiteRepository struct {
	db *sql.DB
}

const expenseColumns = `id, owner_id, amount_cents, currency, category, subcategory,
	merchant, description, payment_method, date, is_recurring, recurrence_rule,
	tags, receipt_url, created_at`

// NewSQLiteRepository opens (creating if needed) the database at dbPath
// and runs migrations. Use ":memory:" for an ephemeral store.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable, for readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Insert stores a new row atomically and returns its id. A missing id or
// creation timestamp is assigned here.
func (r *SQLiteRepository) Insert(ctx context.Context, e core.Expense) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.OwnerID, core.Cents(e.Amount), e.Currency, e.Category,
		e.Subcategory, e.Merchant, e.Description, e.PaymentMethod,
		formatTime(e.Date), boolToInt(e.IsRecurring), e.RecurrenceRule,
		core.EncodeTags(e.Tags), e.ReceiptURL, formatTime(e.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"owner_id", e.OwnerID,
		"category", e.Category,
		"amount_cents", core.Cents(e.Amount))

	return e.ID, nil
}

// Get returns the row with the given id for the given owner, or
// core.ErrNotFound. Rows belonging to another owner are invisible.
func (r *SQLiteRepository) Get(ctx context.Context, id, ownerID string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND owner_id = ?`,
		id, ownerID)

	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// Update applies a partial patch in one statement; only supplied fields
// change. Returns the updated row, or core.ErrNotFound.
func (r *SQLiteRepository) Update(ctx context.Context, id, ownerID string, patch core.ExpensePatch) (core.Expense, error) {
	if patch.IsEmpty() {
		return r.Get(ctx, id, ownerID)
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.Amount != nil {
		set("amount_cents", core.Cents(*patch.Amount))
	}
	if patch.Currency != nil {
		set("currency", *patch.Currency)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.Subcategory != nil {
		set("subcategory", *patch.Subcategory)
	}
	if patch.Merchant != nil {
		set("merchant", *patch.Merchant)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.PaymentMethod != nil {
		set("payment_method", *patch.PaymentMethod)
	}
	if patch.Date != nil {
		set("date", formatTime(*patch.Date))
	}
	if patch.IsRecurring != nil {
		set("is_recurring", boolToInt(*patch.IsRecurring))
	}
	if patch.RecurrenceRule != nil {
		set("recurrence_rule", *patch.RecurrenceRule)
	}
	if patch.Tags != nil {
		set("tags", core.EncodeTags(*patch.Tags))
	}
	if patch.ReceiptURL != nil {
		set("receipt_url", *patch.ReceiptURL)
	}
	args = append(args, id, ownerID)

	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET `+strings.Join(sets, ", ")+` WHERE id = ? AND owner_id = ?`,
		args...)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if affected == 0 {
		return core.Expense{}, core.ErrNotFound
	}

	return r.Get(ctx, id, ownerID)
}

// Delete removes the row outright. No tombstone is kept.
func (r *SQLiteRepository) Delete(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id, "owner_id", ownerID)
	return nil
}

// Scan runs a compiled predicate set and returns the matching page plus
// the total match count independent of pagination. An empty result is
// a nil-free empty slice with count 0, never an error.
func (r *SQLiteRepository) Scan(ctx context.Context, ownerID string, preds []query.Predicate, order query.Order, page query.Page) ([]core.Expense, int, error) {
	c, err := query.Compile(ownerID, preds, order, page)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE `+c.Where, c.Args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	q := `SELECT ` + expenseColumns + ` FROM expenses WHERE ` + c.Where +
		` ORDER BY ` + c.OrderBy
	args := c.Args
	if c.Limit > 0 {
		q += ` LIMIT ? OFFSET ?`
		args = append(args, c.Limit, c.Offset)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("scan expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan expense row: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan expenses: %w", err)
	}

	return expenses, total, nil
}

// CategoryTotals groups matching rows by category with per-category sum
// and count. Ordering is a presentation concern left to callers.
func (r *SQLiteRepository) CategoryTotals(ctx context.Context, ownerID string, preds []query.Predicate) ([]core.CategoryTotal, error) {
	c, err := query.Compile(ownerID, preds, query.ByDateDesc, query.Page{})
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents), COUNT(*) FROM expenses
		 WHERE `+c.Where+` GROUP BY category`, c.Args...)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	totals := []core.CategoryTotal{}
	for rows.Next() {
		var (
			ct    core.CategoryTotal
			cents int64
		)
		if err := rows.Scan(&ct.Category, &cents, &ct.Count); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		ct.Total = core.AmountFromCents(cents)
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	return totals, nil
}

// MonthlyCategoryTotals groups by (year, month, category) for rows with
// date in [start, end). The upper bound is exclusive so a boundary
// instant lands in exactly one month bucket.
func (r *SQLiteRepository) MonthlyCategoryTotals(ctx context.Context, ownerID string, start, end time.Time) ([]core.MonthlyCategoryTotal, error) {
	c, err := query.Compile(ownerID,
		[]query.Predicate{query.DateRange{From: start, To: end, ExclusiveTo: true}},
		query.ByDateDesc, query.Page{})
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT CAST(strftime('%Y', date) AS INTEGER),
		        CAST(strftime('%m', date) AS INTEGER),
		        category, SUM(amount_cents)
		 FROM expenses WHERE `+c.Where+`
		 GROUP BY 1, 2, category
		 ORDER BY 1, 2`, c.Args...)
	if err != nil {
		return nil, fmt.Errorf("monthly category totals: %w", err)
	}
	defer rows.Close()

	totals := []core.MonthlyCategoryTotal{}
	for rows.Next() {
		var (
			mt    core.MonthlyCategoryTotal
			month int
			cents int64
		)
		if err := rows.Scan(&mt.Year, &month, &mt.Category, &cents); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		mt.Month = time.Month(month)
		mt.Total = core.AmountFromCents(cents)
		totals = append(totals, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("monthly category totals: %w", err)
	}
	return totals, nil
}

// SumInPeriod returns the amount sum over [start, end], both bounds
// inclusive. No matching rows yields exactly zero.
func (r *SQLiteRepository) SumInPeriod(ctx context.Context, ownerID string, start, end time.Time) (decimal.Decimal, error) {
	c, err := query.Compile(ownerID,
		[]query.Predicate{query.DateRange{From: start, To: end}},
		query.ByDateDesc, query.Page{})
	if err != nil {
		return decimal.Zero, err
	}

	var cents int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE `+c.Where,
		c.Args...).Scan(&cents); err != nil {
		return decimal.Zero, fmt.Errorf("sum in period: %w", err)
	}
	return core.AmountFromCents(cents), nil
}

// Recurring returns the owner's recurring rows, newest date first.
func (r *SQLiteRepository) Recurring(ctx context.Context, ownerID string) ([]core.Expense, error) {
	expenses, _, err := r.Scan(ctx, ownerID,
		[]query.Predicate{query.RecurringOnly{}}, query.ByDateDesc, query.Page{})
	return expenses, err
}

// ListSince returns all rows dated on or after start, unordered.
func (r *SQLiteRepository) ListSince(ctx context.Context, ownerID string, start time.Time) ([]core.Expense, error) {
	expenses, _, err := r.Scan(ctx, ownerID,
		[]query.Predicate{query.DateRange{From: start}}, query.ByDateDesc, query.Page{})
	return expenses, err
}

// TopByAmount returns up to limit rows dated on or after start, highest
// amount first. Equal amounts keep the store's natural row order.
func (r *SQLiteRepository) TopByAmount(ctx context.Context, ownerID string, start time.Time, limit int) ([]core.Expense, error) {
	expenses, _, err := r.Scan(ctx, ownerID,
		[]query.Predicate{query.DateRange{From: start}}, query.ByAmountDesc,
		query.Page{Number: 1, Limit: limit})
	return expenses, err
}

func scanExpense(s interface{ Scan(...any) error }) (core.Expense, error) {
	var (
		e           core.Expense
		cents       int64
		isRecurring int64
		rawTags     string
		date        string
		createdAt   string
	)
	err := s.Scan(&e.ID, &e.OwnerID, &cents, &e.Currency, &e.Category,
		&e.Subcategory, &e.Merchant, &e.Description, &e.PaymentMethod,
		&date, &isRecurring, &e.RecurrenceRule, &rawTags, &e.ReceiptURL,
		&createdAt)
	if err != nil {
		return core.Expense{}, err
	}

	e.Amount = core.AmountFromCents(cents)
	e.IsRecurring = isRecurring != 0
	e.Tags = core.DecodeTags(rawTags)
	if e.Date, err = parseTime(date); err != nil {
		return core.Expense{}, fmt.Errorf("parse date: %w", err)
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Expense{}, fmt.Errorf("parse created_at: %w", err)
	}
	return e, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(query.TimeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(query.TimeLayout, s, time.UTC)
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
