package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodKind distinguishes month periods from the enclosing financial year.
type PeriodKind string

const (
	Month PeriodKind = "MONTH"
	Year  PeriodKind = "YEAR"
)

// PeriodStatus is the lifecycle state of a financial period.
// Closed is terminal; corrections happen via reversal entries in open periods.
type PeriodStatus string

const (
	Open   PeriodStatus = "OPEN"
	Closed PeriodStatus = "CLOSED"
)

// FinancialPeriod is a date range that can be locked against posting.
// Periods of the same kind within a financial year are contiguous and never
// overlap. Periods are never deleted.
type FinancialPeriod struct {
	PeriodID  string       `json:"periodID"`
	Kind      PeriodKind   `json:"kind"`
	StartDate time.Time    `json:"startDate"`
	EndDate   time.Time    `json:"endDate"` // Inclusive
	Status    PeriodStatus `json:"status"`
	// OpeningBalances maps account code to the signed balance carried forward
	// into this period, by the account's normal-balance convention.
	OpeningBalances map[string]decimal.Decimal `json:"openingBalances,omitempty"`
	ClosedAt        *time.Time                 `json:"closedAt"`
	ClosingEntryID  *string                    `json:"closingEntryID"` // Year-end zeroing entry, if any
	AuditFields
}

// Contains reports whether the date falls inside the period's range.
func (p FinancialPeriod) Contains(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// PeriodCloseData is everything a close writes besides the status flip: the
// optional year-end zeroing entry and the opening snapshots, keyed by the
// period that receives them. A year close targets both the following year
// period and the first month of the new year.
type PeriodCloseData struct {
	ClosingEntry *JournalEntry
	ClosingLines []JournalLine
	// Snapshots replace each target period's opening balances wholesale.
	Snapshots map[string]map[string]decimal.Decimal
}
