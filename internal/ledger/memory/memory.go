package memory

import (
	"context"
	"sync"

	"ledgerbot/internal/core"
)

// Store keeps records in memory. Used in tests and for quick local runs
// without any external collaborators.
type Store struct {
	mu       sync.Mutex
	cats     []core.Category
	expenses []core.Expense
	income   []core.Income
}

func New(cats []core.Category) *Store {
	if len(cats) == 0 {
		cats = []core.Category{
			{Name: "Food", Group: "Essentials"},
			{Name: "Transport", Group: "Essentials"},
			{Name: "Others", Group: "Misc"},
		}
	}
	return &Store{cats: cats}
}

// ListCategories implements ledger.CategoryReader.
func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category(nil), s.cats...), nil
}

// CreateExpense implements ledger.ExpenseWriter.
func (s *Store) CreateExpense(_ context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, e)
	return nil
}

// CreateIncome implements ledger.IncomeWriter.
func (s *Store) CreateIncome(_ context.Context, in core.Income) error {
	if err := in.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.income = append(s.income, in)
	return nil
}

// Expenses returns a copy of the stored expenses.
func (s *Store) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.expenses...)
}

// Income returns a copy of the stored income records.
func (s *Store) Income() []core.Income {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Income(nil), s.income...)
}
