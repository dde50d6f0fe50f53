package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"spendscan/internal/core"
	"spendscan/internal/ports"

	_ "modernc.org/sqlite"
)

// timestampLayout is fixed-width so stored timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

const expenseColumns = `id, amount, description, category, date, receipt, store_name,
	subtotal, tax, total, time, items, created_at, updated_at`

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateExpense implements ports.ExpenseStore
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	now := r.now().UTC()
	e.ID = uuid.NewString()
	e.Category = core.ParseCategory(string(e.Category))
	e.CreatedAt, e.UpdatedAt = now, now

	items, err := json.Marshal(itemsOrEmpty(e.Items))
	if err != nil {
		return core.Expense{}, fmt.Errorf("encode items: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Amount.String(), e.Description, string(e.Category), e.Date.String(), nullString(e.Receipt),
		e.StoreName, e.Subtotal.String(), e.Tax.String(), e.Total.String(), e.Time, string(items),
		formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"description", e.Description,
		"amount", e.Amount.String(),
		"category", e.Category,
		"date", e.Date.String())

	return e, nil
}

// GetExpense implements ports.ExpenseStore
func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ports.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense by id: %w", err)
	}
	return e, nil
}

// ListExpenses implements ports.ExpenseStore
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+expenseColumns+` FROM expenses ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

// UpdateExpense implements ports.ExpenseStore
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, id string, u core.ExpenseUpdate) (core.Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := scanExpense(tx.QueryRowContext(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, ports.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense by id: %w", err)
	}

	updated := u.Apply(current)
	if err := updated.Validate(); err != nil {
		return core.Expense{}, err
	}
	updated.UpdatedAt = r.now().UTC()

	_, err = tx.ExecContext(ctx, `UPDATE expenses
		SET amount = ?, description = ?, category = ?, date = ?, receipt = ?, updated_at = ?
		WHERE id = ?`,
		updated.Amount.String(), updated.Description, string(updated.Category), updated.Date.String(),
		nullString(updated.Receipt), formatTime(updated.UpdatedAt), id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Expense{}, fmt.Errorf("commit update: %w", err)
	}

	slog.InfoContext(ctx, "Expense updated", "id", id)
	return updated, nil
}

// DeleteExpense implements ports.ExpenseStore
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

// SaveDraft implements ports.DraftStore
func (r *SQLiteRepository) SaveDraft(ctx context.Context, d core.StoredDraft) (core.StoredDraft, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = r.now().UTC()
	}
	payload, err := json.Marshal(d.Draft)
	if err != nil {
		return core.StoredDraft{}, fmt.Errorf("encode draft: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO receipt_drafts (id, draft, receipt, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET draft = excluded.draft, receipt = excluded.receipt`,
		d.ID, string(payload), nullString(d.Receipt), formatTime(d.CreatedAt))
	if err != nil {
		return core.StoredDraft{}, fmt.Errorf("save draft: %w", err)
	}

	slog.InfoContext(ctx, "Receipt draft saved",
		"id", d.ID,
		"store", d.Draft.StoreName,
		"amount", d.Draft.Amount.String())
	return d, nil
}

// GetDraft implements ports.DraftStore
func (r *SQLiteRepository) GetDraft(ctx context.Context, id string) (core.StoredDraft, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, draft, receipt, created_at FROM receipt_drafts WHERE id = ?`, id)
	d, err := scanDraft(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.StoredDraft{}, ports.ErrNotFound
	}
	if err != nil {
		return core.StoredDraft{}, fmt.Errorf("get draft by id: %w", err)
	}
	return d, nil
}

// ListDrafts implements ports.DraftStore
func (r *SQLiteRepository) ListDrafts(ctx context.Context) ([]core.StoredDraft, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, draft, receipt, created_at FROM receipt_drafts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	drafts := []core.StoredDraft{}
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		drafts = append(drafts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drafts: %w", err)
	}
	return drafts, nil
}

// DeleteDraft implements ports.DraftStore
func (r *SQLiteRepository) DeleteDraft(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM receipt_drafts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return requireAffected(res)
}

// MonthlyIncome implements ports.ProfileStore
func (r *SQLiteRepository) MonthlyIncome(ctx context.Context) (decimal.Decimal, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT monthly_income FROM profile WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("get monthly income: %w", err)
	}
	return parseDecimal(raw)
}

// SetMonthlyIncome implements ports.ProfileStore
func (r *SQLiteRepository) SetMonthlyIncome(ctx context.Context, income decimal.Decimal) error {
	if income.IsNegative() {
		return core.ErrInvalidAmount
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO profile (id, monthly_income, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET monthly_income = excluded.monthly_income, updated_at = excluded.updated_at`,
		income.String(), formatTime(r.now().UTC()))
	if err != nil {
		return fmt.Errorf("set monthly income: %w", err)
	}
	slog.InfoContext(ctx, "Monthly income updated", "income", income.String())
	return nil
}

// Allocations implements ports.ProfileStore
func (r *SQLiteRepository) Allocations(ctx context.Context) (core.Allocations, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category, percent FROM budget_allocations`)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	defer rows.Close()

	out := core.Allocations{}
	for rows.Next() {
		var category, percent string
		if err := rows.Scan(&category, &percent); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		p, err := parseDecimal(percent)
		if err != nil {
			return nil, err
		}
		out[core.ParseCategory(category)] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate allocations: %w", err)
	}
	return out, nil
}

// SetAllocation implements ports.ProfileStore
func (r *SQLiteRepository) SetAllocation(ctx context.Context, c core.Category, percent decimal.Decimal) error {
	known, ok := core.LookupCategory(string(c))
	if !ok {
		return fmt.Errorf("%w %q", core.ErrUnknownCategory, c)
	}
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: allocation for %s out of range: %s", core.ErrInvalidAmount, known, percent)
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO budget_allocations (category, percent) VALUES (?, ?)
		ON CONFLICT(category) DO UPDATE SET percent = excluded.percent`,
		string(known), percent.String())
	if err != nil {
		return fmt.Errorf("set allocation: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e                            core.Expense
		amount, subtotal, tax, total string
		category, date, items        string
		receipt                      sql.NullString
		createdAt, updatedAt         string
	)
	err := row.Scan(&e.ID, &amount, &e.Description, &category, &date, &receipt, &e.StoreName,
		&subtotal, &tax, &total, &e.Time, &items, &createdAt, &updatedAt)
	if err != nil {
		return core.Expense{}, err
	}

	e.Category = core.Category(category)
	if e.Date, err = core.ParseDate(date); err != nil {
		return core.Expense{}, fmt.Errorf("expense %s: %w", e.ID, err)
	}
	for _, f := range []struct {
		raw string
		dst *decimal.Decimal
	}{{amount, &e.Amount}, {subtotal, &e.Subtotal}, {tax, &e.Tax}, {total, &e.Total}} {
		if *f.dst, err = parseDecimal(f.raw); err != nil {
			return core.Expense{}, fmt.Errorf("expense %s: %w", e.ID, err)
		}
	}
	if receipt.Valid {
		e.Receipt = &receipt.String
	}
	if err := json.Unmarshal([]byte(items), &e.Items); err != nil {
		return core.Expense{}, fmt.Errorf("expense %s items: %w", e.ID, err)
	}
	e.CreatedAt = parseTime(createdAt)
	e.UpdatedAt = parseTime(updatedAt)
	return e, nil
}

func scanDraft(row rowScanner) (core.StoredDraft, error) {
	var (
		d         core.StoredDraft
		payload   string
		receipt   sql.NullString
		createdAt string
	)
	if err := row.Scan(&d.ID, &payload, &receipt, &createdAt); err != nil {
		return core.StoredDraft{}, err
	}
	if err := json.Unmarshal([]byte(payload), &d.Draft); err != nil {
		return core.StoredDraft{}, fmt.Errorf("draft %s: %w", d.ID, err)
	}
	if receipt.Valid {
		d.Receipt = &receipt.String
	}
	d.CreatedAt = parseTime(createdAt)
	return d, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse decimal %q: %w", s, err)
	}
	return d, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func itemsOrEmpty(items []core.LineItem) []core.LineItem {
	if items == nil {
		return []core.LineItem{}
	}
	return items
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
