package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Backend selection for the ledger store.
const (
	BackendSupabase = "supabase"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

type Config struct {
	// HTTP Server
	Port string

	// Ledger backend
	Backend      string
	SupabaseURL  string
	SupabaseKey  string
	SQLiteDBPath string

	// Table names on the database collaborator
	CategoriesTable string
	ExpensesTable   string
	IncomeTable     string

	// Model service
	GeminiAPIKey string
	GeminiModel  string

	// Business defaults, overridable per deployment.
	DefaultPayer     string
	FallbackCategory string
	CurrencySymbol   string

	// Optional transaction-event notifications
	AMQPURL      string
	AMQPExchange string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8080"),

		Backend:      getEnv("DATA_BACKEND", BackendSupabase),
		SupabaseURL:  getEnv("SUPABASE_URL", ""),
		SupabaseKey:  getEnv("SUPABASE_KEY", ""),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/ledgerbot.db"),

		CategoriesTable: getEnv("CATEGORIES_TABLE", "category_budgets"),
		ExpensesTable:   getEnv("EXPENSES_TABLE", "expenses"),
		IncomeTable:     getEnv("INCOME_TABLE", "income"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		DefaultPayer:     getEnv("DEFAULT_PAYER", "Hadi"),
		FallbackCategory: getEnv("FALLBACK_CATEGORY", "Others"),
		CurrencySymbol:   getEnv("CURRENCY_SYMBOL", "৳"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ledgerbot.transactions"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.Backend {
	case BackendSupabase:
		if c.SupabaseURL == "" {
			errors = append(errors, "SUPABASE_URL is required when using the supabase backend")
		} else if parsed, err := url.Parse(c.SupabaseURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			errors = append(errors, fmt.Sprintf("invalid SUPABASE_URL '%s': must be an http(s) URL", c.SupabaseURL))
		}
		if c.SupabaseKey == "" {
			errors = append(errors, "SUPABASE_KEY is required when using the supabase backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLITE_DB_PATH cannot be empty when using the sqlite backend")
		}
	case BackendMemory:
		// nothing to check
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s %s]",
			c.Backend, BackendSupabase, BackendSQLite, BackendMemory))
	}

	if c.GeminiAPIKey == "" {
		errors = append(errors, "GEMINI_API_KEY is required")
	}
	if c.GeminiModel == "" {
		errors = append(errors, "GEMINI_MODEL cannot be empty")
	}

	for name, v := range map[string]string{
		"CATEGORIES_TABLE": c.CategoriesTable,
		"EXPENSES_TABLE":   c.ExpensesTable,
		"INCOME_TABLE":     c.IncomeTable,
	} {
		if strings.TrimSpace(v) == "" {
			errors = append(errors, name+" cannot be empty")
		}
	}

	if c.DefaultPayer == "" {
		errors = append(errors, "DEFAULT_PAYER cannot be empty")
	}
	if c.FallbackCategory == "" {
		errors = append(errors, "FALLBACK_CATEGORY cannot be empty")
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
