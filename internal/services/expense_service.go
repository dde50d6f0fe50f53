package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"spendscan/internal/amqp"
	"spendscan/internal/budget"
	"spendscan/internal/cache"
	"spendscan/internal/core"
	"spendscan/internal/export"
	"spendscan/internal/ports"
	"spendscan/internal/receipt"
)

// RecentLimit is the number of recent expenses shown on the dashboard.
const RecentLimit = 5

// ErrEmptyText is returned when a scan is submitted without any OCR text.
var ErrEmptyText = errors.New("receipt text is empty")

// ScanPublisher queues receipt scans for asynchronous processing.
type ScanPublisher interface {
	PublishReceiptScan(ctx context.Context, msg *amqp.ReceiptScanMessage) error
}

type (
	// ScanResult reports what happened to a submitted scan. Draft is set when
	// the scan was processed inline.
	ScanResult struct {
		ScanID string            `json:"scanId"`
		Queued bool              `json:"queued"`
		Draft  *core.StoredDraft `json:"draft,omitempty"`
	}

	// Dashboard bundles everything the dashboard screen shows.
	Dashboard struct {
		Stats      core.DashboardStats      `json:"stats"`
		Categories []core.CategoryAggregate `json:"categories"`
		Recent     []core.Expense           `json:"recent"`
	}

	// BudgetOverview is the budget table with the income it was computed from.
	BudgetOverview struct {
		MonthlyIncome decimal.Decimal       `json:"monthlyIncome"`
		Budgets       []core.CategoryBudget `json:"budgets"`
	}
)

// Option configures an ExpenseService.
type Option func(*ExpenseService)

// WithClock sets the clock used for dashboards, reports and parse defaults.
func WithClock(now func() time.Time) Option {
	return func(s *ExpenseService) { s.now = now }
}

// WithParseCache caches parse results keyed by text and day.
func WithParseCache(c cache.Cache[core.ExpenseDraft]) Option {
	return func(s *ExpenseService) { s.parseCache = c }
}

// ExpenseService orchestrates receipt parsing, storage and budgeting.
type ExpenseService struct {
	store      ports.Store
	publisher  ScanPublisher
	parseCache cache.Cache[core.ExpenseDraft]
	now        func() time.Time
}

// NewExpenseService wires a store and an optional publisher. With a nil
// publisher scans are parsed inline.
func NewExpenseService(store ports.Store, publisher ScanPublisher, opts ...Option) *ExpenseService {
	s := &ExpenseService{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ExpenseService) parser() *receipt.Parser {
	return receipt.NewParser(receipt.WithClock(s.now))
}

// ParseReceipt extracts a draft without storing it.
func (s *ExpenseService) ParseReceipt(ctx context.Context, text string) core.ExpenseDraft {
	if s.parseCache == nil {
		return s.parser().Parse(text)
	}

	// the day is part of the key because undated receipts default to today
	key := parseCacheKey(text, core.DateOf(s.now()))
	if d, ok := s.parseCache.Get(key); ok {
		slog.DebugContext(ctx, "Parse cache hit", "key", key[:12])
		return d
	}
	d := s.parser().Parse(text)
	s.parseCache.Set(key, d)
	return d
}

func parseCacheKey(text string, day core.Date) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:]) + ":" + day.String()
}

// SubmitScan queues a scan for the worker, falling back to inline processing
// when no publisher is configured or publishing fails.
func (s *ExpenseService) SubmitScan(ctx context.Context, text string, receiptRef *string) (ScanResult, error) {
	if text == "" {
		return ScanResult{}, ErrEmptyText
	}
	msg := amqp.NewReceiptScanMessage(text, receiptRef)

	if s.publisher != nil {
		err := s.publisher.PublishReceiptScan(ctx, msg)
		if err == nil {
			return ScanResult{ScanID: msg.ScanID, Queued: true}, nil
		}
		slog.ErrorContext(ctx, "Failed to publish receipt scan, processing inline",
			"scan_id", msg.ScanID, "error", err)
	}

	d, err := s.StoreScan(ctx, msg)
	if err != nil {
		return ScanResult{}, err
	}
	return ScanResult{ScanID: msg.ScanID, Draft: &d}, nil
}

// StoreScan parses a scan and stores the draft under the scan id, so
// redelivered messages overwrite instead of duplicating.
func (s *ExpenseService) StoreScan(ctx context.Context, msg *amqp.ReceiptScanMessage) (core.StoredDraft, error) {
	draft := s.ParseReceipt(ctx, msg.Text)
	stored, err := s.store.SaveDraft(ctx, core.StoredDraft{
		ID:      msg.ScanID,
		Draft:   draft,
		Receipt: msg.Receipt,
	})
	if err != nil {
		return core.StoredDraft{}, fmt.Errorf("save draft: %w", err)
	}
	return stored, nil
}

func (s *ExpenseService) ListDrafts(ctx context.Context) ([]core.StoredDraft, error) {
	drafts, err := s.store.ListDrafts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return drafts, nil
}

// ConfirmDraft applies the reviewer's edits, stores the expense and removes
// the draft.
func (s *ExpenseService) ConfirmDraft(ctx context.Context, id string, edits core.ExpenseUpdate) (core.Expense, error) {
	stored, err := s.store.GetDraft(ctx, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get draft: %w", err)
	}

	e := edits.Apply(stored.Draft.ToExpense(stored.Receipt))
	created, err := s.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, err
	}

	if err := s.store.DeleteDraft(ctx, id); err != nil && !errors.Is(err, ports.ErrNotFound) {
		// Don't fail the request, the expense is saved
		slog.ErrorContext(ctx, "Failed to delete confirmed draft", "draft_id", id, "error", err)
	}
	return created, nil
}

func (s *ExpenseService) DiscardDraft(ctx context.Context, id string) error {
	if err := s.store.DeleteDraft(ctx, id); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// CreateExpense validates and stores an expense; unknown categories become Other.
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.Category = core.ParseCategory(string(e.Category))
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	return created, nil
}

func (s *ExpenseService) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (s *ExpenseService) UpdateExpense(ctx context.Context, id string, u core.ExpenseUpdate) (core.Expense, error) {
	e, err := s.store.UpdateExpense(ctx, id, u)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	return e, nil
}

func (s *ExpenseService) DeleteExpense(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// ListExpenses returns the stored expenses matching f, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, f core.ExpenseFilter) ([]core.Expense, error) {
	all, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return budget.FilterExpenses(all, f), nil
}

func (s *ExpenseService) SetMonthlyIncome(ctx context.Context, income decimal.Decimal) error {
	if income.IsNegative() {
		return core.ErrInvalidAmount
	}
	if err := s.store.SetMonthlyIncome(ctx, income); err != nil {
		return fmt.Errorf("set monthly income: %w", err)
	}
	return nil
}

// SetAllocation sets the share of monthly income budgeted for a category.
func (s *ExpenseService) SetAllocation(ctx context.Context, c core.Category, percent decimal.Decimal) error {
	if err := s.store.SetAllocation(ctx, c, percent); err != nil {
		return fmt.Errorf("set allocation: %w", err)
	}
	return nil
}

// Ping checks the store when it supports health checks.
func (s *ExpenseService) Ping(ctx context.Context) error {
	if p, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Budgets computes the category budget table from the stored profile.
func (s *ExpenseService) Budgets(ctx context.Context) (BudgetOverview, error) {
	income, err := s.store.MonthlyIncome(ctx)
	if err != nil {
		return BudgetOverview{}, fmt.Errorf("get monthly income: %w", err)
	}
	alloc, err := s.store.Allocations(ctx)
	if err != nil {
		return BudgetOverview{}, fmt.Errorf("get allocations: %w", err)
	}
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return BudgetOverview{}, fmt.Errorf("list expenses: %w", err)
	}
	return BudgetOverview{
		MonthlyIncome: income,
		Budgets:       budget.ComputeCategoryBudgets(expenses, income, alloc),
	}, nil
}

func (s *ExpenseService) Dashboard(ctx context.Context) (Dashboard, error) {
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list expenses: %w", err)
	}
	return Dashboard{
		Stats:      budget.ComputeDashboardStats(expenses, s.now()),
		Categories: budget.ComputeCategoryAggregates(expenses),
		Recent:     budget.RecentExpenses(expenses, RecentLimit),
	}, nil
}

// Report summarises [from, to]; zero bounds default to the last 30 days.
func (s *ExpenseService) Report(ctx context.Context, from, to core.Date) (core.Report, error) {
	if from.IsZero() && to.IsZero() {
		from, to = budget.DefaultReportRange(s.now())
	}
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return core.Report{}, fmt.Errorf("list expenses: %w", err)
	}
	return budget.ComputeReport(expenses, from, to), nil
}

// ExportCSV writes the expenses matching f as CSV.
func (s *ExpenseService) ExportCSV(ctx context.Context, w io.Writer, f core.ExpenseFilter) error {
	expenses, err := s.ListExpenses(ctx, f)
	if err != nil {
		return err
	}
	return export.WriteCSV(w, expenses)
}

// Close closes the store and publisher when they hold resources.
func (s *ExpenseService) Close() error {
	var errs []error

	if c, ok := s.store.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %w", errors.Join(errs...))
	}
	return nil
}
