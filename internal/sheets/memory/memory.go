package memory

import (
	"context"
	"sync"

	"spendscan/internal/core"
	"spendscan/internal/sheets"
)

// Store keeps the last published tables in memory. It stands in for the
// spreadsheet in tests and when no spreadsheet is configured.
type Store struct {
	mu         sync.Mutex
	budgets    [][]any
	categories [][]any
	writes     int
}

var _ sheets.SummaryWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) WriteBudgets(_ context.Context, budgets []core.CategoryBudget) error {
	rows := sheets.BudgetRows(budgets)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets = rows
	s.writes++
	return nil
}

func (s *Store) WriteCategories(_ context.Context, aggregates []core.CategoryAggregate) error {
	rows := sheets.CategoryRows(aggregates)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = rows
	s.writes++
	return nil
}

// Budgets returns the last written budget rows, header included.
func (s *Store) Budgets() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]any(nil), s.budgets...)
}

// Categories returns the last written category rows, header included.
func (s *Store) Categories() [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]any(nil), s.categories...)
}

// Writes counts every successful write.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
