package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ledgerbot/internal/core"
)

// Tables names the three tables this service touches.
type Tables struct {
	Categories string
	Expenses   string
	Income     string
}

// Client talks to the Supabase PostgREST endpoint (/rest/v1). It is a
// stateless connection handle, safe for concurrent use across requests.
type Client struct {
	baseURL string
	apiKey  string
	tables  Tables
	http    *http.Client
}

func New(baseURL, apiKey string, tables Tables) *Client {
	if tables.Categories == "" {
		tables.Categories = "category_budgets"
	}
	if tables.Expenses == "" {
		tables.Expenses = "expenses"
	}
	if tables.Income == "" {
		tables.Income = "income"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		tables:  tables,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// ListCategories implements ledger.CategoryReader.
func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	var rows []core.Category
	params := url.Values{"select": {"category,group_name"}}
	if err := c.get(ctx, c.tables.Categories, params, &rows); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return rows, nil
}

// CreateExpense implements ledger.ExpenseWriter.
func (c *Client) CreateExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := c.insert(ctx, c.tables.Expenses, e); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// CreateIncome implements ledger.IncomeWriter.
func (c *Client) CreateIncome(ctx context.Context, in core.Income) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if err := c.insert(ctx, c.tables.Income, in); err != nil {
		return fmt.Errorf("insert income: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, table string, params url.Values, out any) error {
	endpoint := c.baseURL + "/rest/v1/" + table
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return restError(table, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) insert(ctx context.Context, table string, row any) error {
	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("marshal row: %w", err)
	}

	endpoint := c.baseURL + "/rest/v1/" + table
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	// The row is never read back; skip the representation round trip.
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return restError(table, resp)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}

func restError(table string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("supabase %s on %s: status %d: %s",
		resp.Request.Method, table, resp.StatusCode, strings.TrimSpace(string(snippet)))
}
