package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ledgerbot/internal/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-key", Tables{})
}

func TestListCategories(t *testing.T) {
	var gotPath, gotSelect, gotAPIKey, gotAuth string
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSelect = r.URL.Query().Get("select")
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"category":"Food","group_name":"Essentials"},{"category":"Others","group_name":"Misc"}]`))
	})

	cats, err := cli.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if gotPath != "/rest/v1/category_budgets" {
		t.Errorf("path = %s", gotPath)
	}
	if gotSelect != "category,group_name" {
		t.Errorf("select = %s", gotSelect)
	}
	if gotAPIKey != "test-key" || gotAuth != "Bearer test-key" {
		t.Errorf("auth headers = %q / %q", gotAPIKey, gotAuth)
	}
	if len(cats) != 2 || cats[0].Label() != "Food (Essentials)" {
		t.Errorf("categories = %+v", cats)
	}
}

func TestListCategoriesError(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"permission denied"}`, http.StatusUnauthorized)
	})

	_, err := cli.ListCategories(context.Background())
	if err == nil {
		t.Fatal("expected error on 401")
	}
	if !strings.Contains(err.Error(), "status 401") {
		t.Errorf("error = %v", err)
	}
}

func TestCreateExpense(t *testing.T) {
	var gotPath, gotPrefer, gotContentType string
	var gotBody map[string]any
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPrefer = r.Header.Get("Prefer")
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	})

	e := core.Expense{
		ID:       "id-1",
		Date:     core.NewDate(2026, 8, 31),
		Item:     "Coffee",
		Amount:   150,
		Category: "Food",
		PaidBy:   "Hadi",
	}
	if err := cli.CreateExpense(context.Background(), e); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}

	if gotPath != "/rest/v1/expenses" {
		t.Errorf("path = %s", gotPath)
	}
	if gotPrefer != "return=minimal" {
		t.Errorf("Prefer = %s", gotPrefer)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %s", gotContentType)
	}
	if gotBody["item"] != "Coffee" || gotBody["amount"] != float64(150) || gotBody["paid_by"] != "Hadi" {
		t.Errorf("body = %+v", gotBody)
	}
	if gotBody["date"] != "2026-08-31" {
		t.Errorf("date = %v", gotBody["date"])
	}
}

func TestCreateExpenseRejectsInvalid(t *testing.T) {
	called := false
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	err := cli.CreateExpense(context.Background(), core.Expense{ID: "x", Item: "Coffee", Category: "Food"})
	if err != core.ErrInvalidAmount {
		t.Fatalf("err = %v, want %v", err, core.ErrInvalidAmount)
	}
	if called {
		t.Fatal("invalid expense must not reach the wire")
	}
}

func TestCreateIncome(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	})

	in := core.Income{ID: "id-2", Date: core.NewDate(2026, 8, 31), Source: "Salary", Amount: 50000}
	if err := cli.CreateIncome(context.Background(), in); err != nil {
		t.Fatalf("CreateIncome: %v", err)
	}
	if gotPath != "/rest/v1/income" {
		t.Errorf("path = %s", gotPath)
	}
	if gotBody["source"] != "Salary" || gotBody["amount"] != float64(50000) {
		t.Errorf("body = %+v", gotBody)
	}
	if _, ok := gotBody["paid_by"]; ok {
		t.Error("income rows must not carry paid_by")
	}
}

func TestCreateIncomeInsertRejected(t *testing.T) {
	cli := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"duplicate key"}`, http.StatusConflict)
	})

	in := core.Income{ID: "id-3", Date: core.Today(), Source: "Salary", Amount: 1}
	err := cli.CreateIncome(context.Background(), in)
	if err == nil || !strings.Contains(err.Error(), "status 409") {
		t.Fatalf("err = %v", err)
	}
}

func TestCustomTableNames(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cli := New(srv.URL, "k", Tables{Categories: "budget_refs"})
	if _, err := cli.ListCategories(context.Background()); err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if gotPath != "/rest/v1/budget_refs" {
		t.Errorf("path = %s", gotPath)
	}
}
