package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"spendscan/internal/core"
	"spendscan/internal/ports"
)

// Store is an in-memory ports.Store for tests and local runs without a database.
type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	expenses map[string]core.Expense
	drafts   map[string]core.StoredDraft
	income   decimal.Decimal
	alloc    core.Allocations
}

func New() *Store {
	return &Store{
		now:      time.Now,
		expenses: make(map[string]core.Expense),
		drafts:   make(map[string]core.StoredDraft),
		income:   decimal.Zero,
		alloc:    core.DefaultAllocations(),
	}
}

// Seed stores expenses as-is, assigning ids where missing.
func (s *Store) Seed(expenses ...core.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range expenses {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		s.expenses[e.ID] = cloneExpense(e)
	}
}

func (s *Store) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	e.ID = uuid.NewString()
	e.Category = core.ParseCategory(string(e.Category))
	e.CreatedAt, e.UpdatedAt = now, now
	s.expenses[e.ID] = cloneExpense(e)
	return cloneExpense(e), nil
}

func (s *Store) GetExpense(_ context.Context, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, ports.ErrNotFound
	}
	return cloneExpense(e), nil
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	out := make([]core.Expense, 0, len(s.expenses))
	for _, e := range s.expenses {
		out = append(out, cloneExpense(e))
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date.Time)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) UpdateExpense(_ context.Context, id string, u core.ExpenseUpdate) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, ports.ErrNotFound
	}
	updated := u.Apply(current)
	if err := updated.Validate(); err != nil {
		return core.Expense{}, err
	}
	updated.UpdatedAt = s.now().UTC()
	s.expenses[id] = updated
	return cloneExpense(updated), nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; !ok {
		return ports.ErrNotFound
	}
	delete(s.expenses, id)
	return nil
}

func (s *Store) SaveDraft(_ context.Context, d core.StoredDraft) (core.StoredDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = s.now().UTC()
	}
	d.Draft.Items = append([]core.LineItem{}, d.Draft.Items...)
	s.drafts[d.ID] = d
	return d, nil
}

func (s *Store) GetDraft(_ context.Context, id string) (core.StoredDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[id]
	if !ok {
		return core.StoredDraft{}, ports.ErrNotFound
	}
	return d, nil
}

func (s *Store) ListDrafts(_ context.Context) ([]core.StoredDraft, error) {
	s.mu.Lock()
	out := make([]core.StoredDraft, 0, len(s.drafts))
	for _, d := range s.drafts {
		out = append(out, d)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteDraft(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.drafts[id]; !ok {
		return ports.ErrNotFound
	}
	delete(s.drafts, id)
	return nil
}

func (s *Store) MonthlyIncome(_ context.Context) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.income, nil
}

func (s *Store) SetMonthlyIncome(_ context.Context, income decimal.Decimal) error {
	if income.IsNegative() {
		return core.ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.income = income
	return nil
}

func (s *Store) Allocations(_ context.Context) (core.Allocations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(core.Allocations, len(s.alloc))
	for c, p := range s.alloc {
		out[c] = p
	}
	return out, nil
}

func (s *Store) SetAllocation(_ context.Context, c core.Category, percent decimal.Decimal) error {
	known, ok := core.LookupCategory(string(c))
	if !ok {
		return fmt.Errorf("%w %q", core.ErrUnknownCategory, c)
	}
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: allocation for %s out of range: %s", core.ErrInvalidAmount, known, percent)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alloc[known] = percent
	return nil
}

func cloneExpense(e core.Expense) core.Expense {
	if e.Items != nil {
		e.Items = append([]core.LineItem(nil), e.Items...)
	}
	if e.Receipt != nil {
		ref := *e.Receipt
		e.Receipt = &ref
	}
	return e
}

var _ ports.Store = (*Store)(nil)
