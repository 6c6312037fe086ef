package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankStatementLine is one row of an imported bank statement. It is supplied
// by the import collaborator and is not owned by the ledger.
type BankStatementLine struct {
	StatementLineID string          `json:"statementLineID"`
	AccountCode     string          `json:"accountCode"` // Ledger bank/cash account the statement belongs to
	StatementDate   time.Time       `json:"statementDate"`
	Amount          decimal.Decimal `json:"amount"` // Always positive
	Direction       BalanceSide     `json:"direction"`
	Description     string          `json:"description"`
	ExternalRef     string          `json:"externalRef"` // Bank-side reference
	AuditFields
}

// MatchConfidence records how a reconciliation match was established.
type MatchConfidence string

const (
	MatchExact  MatchConfidence = "EXACT"
	MatchFuzzy  MatchConfidence = "FUZZY"
	MatchManual MatchConfidence = "MANUAL"
)

// ReconciliationMatch links one bank statement line to one journal line.
// Matching records metadata alongside the ledger; it never mutates entries.
type ReconciliationMatch struct {
	MatchID         string          `json:"matchID"`
	StatementLineID string          `json:"statementLineID"`
	JournalLineID   string          `json:"journalLineID"`
	Confidence      MatchConfidence `json:"confidence"`
	AmountMismatch  bool            `json:"amountMismatch"` // Manual override with differing amounts
	MatchedAt       time.Time       `json:"matchedAt"`
	// Inconsistent is derived on read: the matched journal line's entry has
	// been reversed since the match was recorded.
	Inconsistent bool `json:"inconsistent"`
}

// OutstandingItems holds both unreconciled sides as of a reconciliation date,
// plus matches whose underlying entry was reversed after matching.
type OutstandingItems struct {
	StatementLines      []BankStatementLine   `json:"statementLines"`
	JournalLines        []JournalLine         `json:"journalLines"`
	InconsistentMatches []ReconciliationMatch `json:"inconsistentMatches"`
}

// AutoMatchResult reports the outcome of one automatic matching run.
type AutoMatchResult struct {
	Matches []ReconciliationMatch `json:"matches"`
	// Ambiguous lists statement line IDs that had more than one candidate and
	// were deliberately left unmatched for manual resolution.
	Ambiguous []string `json:"ambiguous"`
	Unmatched []string `json:"unmatched"`
}
