package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"ledgerbot/internal/core"

	_ "modernc.org/sqlite"
)

// Store is the local ledger backend, used for development and offline
// runs. Schema and category seed rows are managed by migrations.
type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
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

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ListCategories implements ledger.CategoryReader.
func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, group_name FROM category_budgets ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.Name, &c.Group); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return cats, nil
}

// CreateExpense implements ledger.ExpenseWriter.
func (s *Store) CreateExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, date, item, amount, category, notes, paid_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Date.String(), e.Item, e.Amount, e.Category, e.Notes, e.PaidBy)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"item", e.Item,
		"amount", e.Amount,
		"category", e.Category)
	return nil
}

// CreateIncome implements ledger.IncomeWriter.
func (s *Store) CreateIncome(ctx context.Context, in core.Income) error {
	if err := in.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO income (id, date, source, amount, notes)
		 VALUES (?, ?, ?, ?, ?)`,
		in.ID, in.Date.String(), in.Source, in.Amount, in.Notes)
	if err != nil {
		return fmt.Errorf("insert income: %w", err)
	}

	slog.InfoContext(ctx, "Income saved to SQLite",
		"id", in.ID,
		"source", in.Source,
		"amount", in.Amount)
	return nil
}

// ListExpenses returns all stored expenses, newest first. Used by tests
// and ad hoc inspection; the webhook path never reads records back.
func (s *Store) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, item, amount, category, notes, paid_by FROM expenses ORDER BY date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		var (
			e       core.Expense
			dateStr string
		)
		if err := rows.Scan(&e.ID, &dateStr, &e.Item, &e.Amount, &e.Category, &e.Notes, &e.PaidBy); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		if err := e.Date.UnmarshalJSON([]byte(`"` + dateStr + `"`)); err != nil {
			return nil, fmt.Errorf("parse expense date: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListIncome returns all stored income records.
func (s *Store) ListIncome(ctx context.Context) ([]core.Income, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, date, source, amount, notes FROM income ORDER BY date DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query income: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		var (
			in      core.Income
			dateStr string
		)
		if err := rows.Scan(&in.ID, &dateStr, &in.Source, &in.Amount, &in.Notes); err != nil {
			return nil, fmt.Errorf("scan income: %w", err)
		}
		if err := in.Date.UnmarshalJSON([]byte(`"` + dateStr + `"`)); err != nil {
			return nil, fmt.Errorf("parse income date: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}
