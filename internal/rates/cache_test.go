package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCache_Refresh(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("access_key") != "secret" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rates": {"USD": 1.0876, "GBP": 0.854, "JPY": 161.329}}`))
	}))
	defer provider.Close()

	cache := NewCache(provider.URL, "secret", "EUR")

	if cache.Table() != nil {
		t.Fatal("new cache should have no table")
	}
	if !cache.LastUpdate().IsZero() {
		t.Fatal("new cache should have zero last update")
	}

	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}

	table := cache.Table()
	if len(table) != 3 {
		t.Fatalf("table has %d entries, want 3", len(table))
	}

	// Rates are rounded to two decimals at ingestion.
	wants := map[string]string{"USD": "1.09", "GBP": "0.85", "JPY": "161.33"}
	for code, want := range wants {
		got, ok := table[code]
		if !ok {
			t.Errorf("table missing %s", code)
			continue
		}
		if got.String() != want {
			t.Errorf("table[%s] = %s, want %s", code, got, want)
		}
	}

	if cache.LastUpdate().IsZero() {
		t.Error("LastUpdate should be set after refresh")
	}
}

func TestCache_Refresh_FailureKeepsOldTable(t *testing.T) {
	fail := false
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"rates": {"USD": 1.10}}`))
	}))
	defer provider.Close()

	cache := NewCache(provider.URL, "", "EUR")
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("first Refresh() error: %v", err)
	}
	firstUpdate := cache.LastUpdate()

	fail = true
	if err := cache.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() should fail on non-2xx response")
	}

	table := cache.Table()
	if got := table["USD"]; !got.Equal(decimal.NewFromFloat(1.10)) {
		t.Errorf("stale table lost after failed refresh: USD = %s", got)
	}
	if !cache.LastUpdate().Equal(firstUpdate) {
		t.Error("LastUpdate should not advance on failed refresh")
	}
}

func TestCache_Refresh_MissingRatesField(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": false}`))
	}))
	defer provider.Close()

	cache := NewCache(provider.URL, "", "EUR")
	if err := cache.Refresh(context.Background()); err == nil {
		t.Fatal("Refresh() should fail when the rates field is missing")
	}
	if cache.Table() != nil {
		t.Error("cache should stay empty after failed first refresh")
	}
}
