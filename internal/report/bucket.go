package report

import (
	"fmt"
	"time"
)

const (
	GroupDaily   Granularity = "daily"
	GroupMonthly Granularity = "monthly"
)

// Granularity selects how transactions are grouped in the trend report.
type Granularity string

// ParseGranularity maps a query value to a granularity, defaulting to
// monthly for anything unrecognized.
func ParseGranularity(s string) Granularity {
	if s == string(GroupDaily) {
		return GroupDaily
	}
	return GroupMonthly
}

// BucketKey derives the grouping key for a date. Calendar fields are taken
// in UTC so deployments in different regions bucket identically. Months and
// days are 1-based and not zero-padded: monthly keys look like "2025-1",
// daily keys like "2025-1-15". With unpadded months "2025-10" sorts before
// "2025-2"; report ordering keeps that lexical contract.
func BucketKey(t time.Time, g Granularity) string {
	u := t.UTC()
	if g == GroupDaily {
		return fmt.Sprintf("%d-%d-%d", u.Year(), int(u.Month()), u.Day())
	}
	return fmt.Sprintf("%d-%d", u.Year(), int(u.Month()))
}
