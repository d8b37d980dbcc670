// Package core holds the finwise domain model.
//
// Monetary amounts and exchange rates are decimal.Decimal throughout; floats
// only appear at the JSON boundary.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 applies the two-decimal rounding policy used for stored exchange
// rates and computed conversion factors.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// NormalizeCurrency upper-cases and trims a currency code, substituting
// fallback for an empty input. Transactions created without a currency are
// assumed to already be in the reporting currency.
func NormalizeCurrency(code, fallback string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return fallback
	}
	return code
}

// SplitTags turns a comma-separated tag list into trimmed, non-empty tags.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// JoinTags is the inverse of SplitTags, used by the storage layer.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}
