package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow is one account's debit/credit totals as of a date.
type TrialBalanceRow struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	Class       AccountClass    `json:"class"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalanceReport lists every account's balances; TotalDebit must equal
// TotalCredit for a consistent ledger.
type TrialBalanceReport struct {
	AsOf        time.Time         `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
}

// LedgerRow is one line of a period-scoped account ledger listing.
type LedgerRow struct {
	EntryID        string          `json:"entryID"`
	EntryDate      time.Time       `json:"entryDate"`
	Narration      string          `json:"narration"`
	Side           BalanceSide     `json:"side"`
	Amount         decimal.Decimal `json:"amount"`
	RunningBalance decimal.Decimal `json:"runningBalance"` // Signed by the account's normal side
}

// LedgerListing is the statement of one account over a date range.
type LedgerListing struct {
	AccountCode    string          `json:"accountCode"`
	AccountName    string          `json:"accountName"`
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Rows           []LedgerRow     `json:"rows"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

// ClosingResult summarises a successful period close.
type ClosingResult struct {
	PeriodID       string                     `json:"periodID"`
	ClosedAt       time.Time                  `json:"closedAt"`
	ClosingEntryID *string                    `json:"closingEntryID"` // Only for year-end closes
	NextPeriodID   string                     `json:"nextPeriodID"`
	Snapshot       map[string]decimal.Decimal `json:"snapshot"`
}
