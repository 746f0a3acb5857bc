package ledger

import (
	"context"

	"ledgerbot/internal/core"
)

// Ports for outbound adapters.
type (
	CategoryReader interface {
		// ListCategories returns the reference list of spending categories.
		ListCategories(ctx context.Context) ([]core.Category, error)
	}

	ExpenseWriter interface {
		CreateExpense(ctx context.Context, e core.Expense) error
	}

	IncomeWriter interface {
		CreateIncome(ctx context.Context, in core.Income) error
	}

	// Store is the full set of database operations one webhook request
	// may perform: one read, at most one insert.
	Store interface {
		CategoryReader
		ExpenseWriter
		IncomeWriter
	}
)
