package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"finwise/internal/services"
	"finwise/internal/storage"

	"github.com/shopspring/decimal"
)

type fakeRates struct {
	pairs map[string]string // "FROM/TO" -> factor
}

func (f *fakeRates) Rate(from, to string) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	factor, ok := f.pairs[from+"/"+to]
	if !ok {
		return decimal.Zero, errors.New("no rate for " + from)
	}
	return decimal.RequireFromString(factor), nil
}

func testServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	txService := services.NewTransactionService(repo, services.NewSavingsAllocator(repo))
	rates := &fakeRates{pairs: map[string]string{"EUR/USD": "1.1", "GBP/USD": "1.2"}}

	srv := NewServer(":0", repo, txService, rates, "USD")
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, user string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.Header.Set("X-User-ID", user)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	srv.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealthz(t *testing.T) {
	srv := testServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz = %d, want 200", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("readyz = %d, want 200", rec.Code)
	}
}

func TestMissingUserHeader(t *testing.T) {
	srv := testServer(t)

	for _, path := range []string{
		"/api/transactions",
		"/api/goals",
		"/api/notifications",
		"/api/reporting/dashboard-summary-converted",
	} {
		rec := doJSON(t, srv, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without user = %d, want 401", path, rec.Code)
		}
		var body errorBody
		decode(t, rec, &body)
		if body.Msg == "" || body.Error == "" {
			t.Errorf("GET %s error envelope = %+v", path, body)
		}
	}
}

func TestTransactionCRUD(t *testing.T) {
	srv := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions", "1", map[string]any{
		"amount":   42.5,
		"currency": "eur",
		"type":     "expense",
		"date":     "2025-06-15",
		"category": "Food",
		"tags":     []string{"groceries"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d, body %s", rec.Code, rec.Body.String())
	}

	var created transactionResponse
	decode(t, rec, &created)
	if created.Amount != 42.5 || created.Currency != "EUR" || created.ID == 0 {
		t.Errorf("created = %+v", created)
	}

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/transactions/%d", created.ID), "1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get = %d", rec.Code)
	}

	// Another user must not see it.
	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/transactions/%d", created.ID), "2", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user get = %d, want 404", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/transactions/%d", created.ID), "1", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete = %d, want 204", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions", "1", nil)
	var list []transactionResponse
	decode(t, rec, &list)
	if len(list) != 0 {
		t.Errorf("list after delete = %+v", list)
	}
}

func TestTransactionValidationError(t *testing.T) {
	srv := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions", "1", map[string]any{
		"amount": 10,
		"type":   "transfer",
		"date":   "2025-06-15",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid create = %d, want 400", rec.Code)
	}
}

func TestIncomeAllocatesToGoals(t *testing.T) {
	srv := testServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/goals", "1", map[string]any{
		"description":            "vacation",
		"targetAmount":           1000,
		"deadline":               "2026-01-01",
		"autoAllocate":           true,
		"autoAllocatePercentage": 10,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("goal create = %d, body %s", rec.Code, rec.Body.String())
	}
	var goal goalResponse
	decode(t, rec, &goal)

	rec = doJSON(t, srv, http.MethodPost, "/api/transactions", "1", map[string]any{
		"amount":   200,
		"type":     "income",
		"date":     "2025-06-01",
		"category": "Salary",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("income create = %d", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/api/goals/%d", goal.ID), "1", nil)
	var after goalResponse
	decode(t, rec, &after)
	if after.CurrentAmount != 20 {
		t.Errorf("goal current after income = %v, want 20", after.CurrentAmount)
	}
	if after.Progress != 2 {
		t.Errorf("goal progress = %v, want 2", after.Progress)
	}
}

func TestDashboardSummaryConverted(t *testing.T) {
	srv := testServer(t)

	seed := []map[string]any{
		{"amount": 100, "currency": "USD", "type": "income", "date": "2025-01-01", "category": "Salary"},
		{"amount": 200, "currency": "EUR", "type": "income", "date": "2025-01-02", "category": "Salary"},
		{"amount": 50, "currency": "GBP", "type": "expense", "date": "2025-01-03", "category": "Food"},
	}
	for _, body := range seed {
		if rec := doJSON(t, srv, http.MethodPost, "/api/transactions", "1", body); rec.Code != http.StatusCreated {
			t.Fatalf("seed = %d, body %s", rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/reporting/dashboard-summary-converted", "1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary = %d", rec.Code)
	}

	// The wire shape is exactly the three totals, nothing else.
	var raw map[string]json.RawMessage
	decode(t, rec, &raw)
	if len(raw) != 3 {
		t.Errorf("summary fields = %v, want exactly totalIncome/totalExpense/netBalance", raw)
	}

	var summary summaryResponse
	decode(t, rec, &summary)
	if summary.TotalIncome != 320 {
		t.Errorf("totalIncome = %v, want 320", summary.TotalIncome)
	}
	if summary.TotalExpense != 60 {
		t.Errorf("totalExpense = %v, want 60", summary.TotalExpense)
	}
	if summary.NetBalance != 260 {
		t.Errorf("netBalance = %v, want 260", summary.NetBalance)
	}

	// A new write invalidates the cached summary.
	doJSON(t, srv, http.MethodPost, "/api/transactions", "1", map[string]any{
		"amount": 40, "currency": "USD", "type": "expense", "date": "2025-01-04", "category": "Food",
	})
	rec = doJSON(t, srv, http.MethodGet, "/api/reporting/dashboard-summary-converted", "1", nil)
	decode(t, rec, &summary)
	if summary.TotalExpense != 100 {
		t.Errorf("totalExpense after write = %v, want 100", summary.TotalExpense)
	}
}

func TestSpendingTrendConverted(t *testing.T) {
	srv := testServer(t)

	seed := []map[string]any{
		{"amount": 100, "currency": "USD", "type": "expense", "date": "2025-01-05", "category": "Food"},
		{"amount": 200, "currency": "EUR", "type": "expense", "date": "2025-01-12", "category": "Food"},
		{"amount": 50, "currency": "USD", "type": "expense", "date": "2025-01-20", "category": "Travel"},
	}
	for _, body := range seed {
		if rec := doJSON(t, srv, http.MethodPost, "/api/transactions", "1", body); rec.Code != http.StatusCreated {
			t.Fatalf("seed = %d", rec.Code)
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/reporting/spending-trend-converted?groupBy=monthly", "1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("trend = %d, body %s", rec.Code, rec.Body.String())
	}

	// The response is a bare array of points, no envelope.
	var points []trendPointResponse
	decode(t, rec, &points)
	if len(points) != 1 {
		t.Fatalf("points = %+v, want one bucket", points)
	}
	if points[0].Group != "2025-1" || points[0].Total != 370 || points[0].Count != 3 {
		t.Errorf("point = %+v, want {2025-1 370 3}", points[0])
	}

	// Category filter narrows the report.
	rec = doJSON(t, srv, http.MethodGet, "/api/reporting/spending-trend-converted?category=Travel", "1", nil)
	decode(t, rec, &points)
	if len(points) != 1 || points[0].Total != 50 {
		t.Errorf("filtered points = %+v", points)
	}
}

func TestTrendExport(t *testing.T) {
	srv := testServer(t)

	doJSON(t, srv, http.MethodPost, "/api/transactions", "1", map[string]any{
		"amount": 10, "currency": "USD", "type": "expense", "date": "2025-01-05", "category": "Food",
	})

	rec := doJSON(t, srv, http.MethodGet, "/api/reporting/spending-trend-converted/export?format=csv", "1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("csv export = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("content type = %s", ct)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("2025-1")) {
		t.Errorf("csv body missing bucket: %s", rec.Body.String())
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/reporting/spending-trend-converted/export?format=pdf", "1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pdf export = %d", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("pdf body missing header")
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/reporting/spending-trend-converted/export?format=xml", "1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad format = %d, want 400", rec.Code)
	}
}

func TestDegradedConversionStillReports(t *testing.T) {
	srv := testServer(t)

	doJSON(t, srv, http.MethodPost, "/api/transactions", "1", map[string]any{
		"amount": 80, "currency": "XYZ", "type": "expense", "date": "2025-01-05", "category": "Food",
	})

	rec := doJSON(t, srv, http.MethodGet, "/api/reporting/dashboard-summary-converted", "1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary = %d, want 200 even with unconvertible currency", rec.Code)
	}
	var summary summaryResponse
	decode(t, rec, &summary)
	if summary.TotalExpense != 80 {
		t.Errorf("totalExpense = %v, want pass-through 80", summary.TotalExpense)
	}
}
