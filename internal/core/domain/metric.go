package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MetricSnapshot holds the daily counters reported for a campaign. One
// snapshot exists per campaign per day and is immutable once written.
//
// Clicks greater than impressions are tolerated: platforms deliver
// counters out of order and the source system never rejected them.
type MetricSnapshot struct {
	CampaignID  string
	Date        time.Time
	Impressions int64
	Clicks      int64
	Conversions int64
	Spend       decimal.Decimal
	Revenue     decimal.Decimal
}

// Valid reports whether all counters and money fields are non-negative.
func (m MetricSnapshot) Valid() bool {
	return m.Impressions >= 0 &&
		m.Clicks >= 0 &&
		m.Conversions >= 0 &&
		!m.Spend.IsNegative() &&
		!m.Revenue.IsNegative()
}

// Day normalises the snapshot date to midnight UTC, the granularity the
// store keys on.
func (m MetricSnapshot) Day() time.Time {
	d := m.Date.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
