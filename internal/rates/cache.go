// Package rates maintains the exchange-rate table used for report currency
// conversion.
//
// The table is fetched from an external provider keyed by a pivot currency
// (the provider's native base) and replaced wholesale on every successful
// refresh. Readers always observe a complete table: refresh builds a new map
// and publishes it with a single atomic swap. A failed refresh keeps the
// previous table, so conversions keep working on stale rates.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"finwise/internal/core"

	"github.com/shopspring/decimal"
)

// Table maps a currency code to its rate relative to the pivot currency.
// The pivot itself is never stored; its rate is implicitly 1.
type Table map[string]decimal.Decimal

type Cache struct {
	providerURL string
	accessKey   string
	pivot       string
	client      *http.Client

	table      atomic.Pointer[Table]
	lastUpdate atomic.Pointer[time.Time]
}

// NewCache creates an empty cache. It stays empty until the first successful
// Refresh; Resolver reports ErrRatesUnavailable until then.
func NewCache(providerURL, accessKey, pivot string) *Cache {
	return &Cache{
		providerURL: providerURL,
		accessKey:   accessKey,
		pivot:       pivot,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// providerResponse mirrors the provider payload. Rates are decoded as
// json.Number so no float round-trip happens before our own rounding.
type providerResponse struct {
	Rates map[string]json.Number `json:"rates"`
}

// Refresh fetches a fresh table from the provider and swaps it in. On any
// failure the existing table is left untouched and the error is returned to
// the direct caller only; concurrent readers are never affected.
func (c *Cache) Refresh(ctx context.Context) error {
	u, err := url.Parse(c.providerURL)
	if err != nil {
		return fmt.Errorf("parse provider URL: %w", err)
	}
	if c.accessKey != "" {
		q := u.Query()
		q.Set("access_key", c.accessKey)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build provider request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch exchange rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetch exchange rates: provider returned %s", resp.Status)
	}

	var payload providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	if len(payload.Rates) == 0 {
		return fmt.Errorf("provider response contains no rates")
	}

	// Rates are rounded to two decimals before publication. Lossy on purpose:
	// every downstream conversion compounds on top of this rounding.
	table := make(Table, len(payload.Rates))
	for code, raw := range payload.Rates {
		rate, err := decimal.NewFromString(raw.String())
		if err != nil {
			return fmt.Errorf("parse rate for %s: %w", code, err)
		}
		table[code] = core.Round2(rate)
	}

	now := time.Now()
	c.table.Store(&table)
	c.lastUpdate.Store(&now)

	return nil
}

// Table returns the current rate table without blocking. It is empty until
// the first successful refresh.
func (c *Cache) Table() Table {
	if t := c.table.Load(); t != nil {
		return *t
	}
	return nil
}

// Pivot returns the currency the table's rates are expressed against.
func (c *Cache) Pivot() string {
	return c.pivot
}

// LastUpdate returns when the table was last replaced, zero if never.
func (c *Cache) LastUpdate() time.Time {
	if t := c.lastUpdate.Load(); t != nil {
		return *t
	}
	return time.Time{}
}

// setTable replaces the table directly. Test seam; production code refreshes
// through the provider.
func (c *Cache) setTable(t Table) {
	now := time.Now()
	c.table.Store(&t)
	c.lastUpdate.Store(&now)
}
