package backend

import (
	"fmt"
	"log/slog"

	"ledgerbot/internal/config"
	"ledgerbot/internal/ledger"
	"ledgerbot/internal/ledger/memory"
	"ledgerbot/internal/ledger/sqlite"
	"ledgerbot/internal/ledger/supabase"
)

// CleanupFunc represents a cleanup function for backend resources.
type CleanupFunc func() error

// Result contains the opened store and optional cleanup function.
type Result struct {
	Store   ledger.Store
	Cleanup CleanupFunc
}

// Open creates the ledger store selected by the configuration.
func Open(cfg *config.Config, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case config.BackendSupabase:
		cli := supabase.New(cfg.SupabaseURL, cfg.SupabaseKey, supabase.Tables{
			Categories: cfg.CategoriesTable,
			Expenses:   cfg.ExpensesTable,
			Income:     cfg.IncomeTable,
		})
		logger.Info("Initialized Supabase backend", "url", cfg.SupabaseURL)
		return &Result{Store: cli}, nil

	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return &Result{Store: store, Cleanup: store.Close}, nil

	case config.BackendMemory:
		store := memory.New(nil)
		logger.Info("Initialized memory backend")
		return &Result{Store: store}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Backend)
	}
}
