package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the state of a journal entry.
type EntryStatus string

const (
	Draft    EntryStatus = "DRAFT"
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// SourceRef identifies the originating business record for a journal entry
// (e.g. donation 42). It is the idempotency key for posting: the ledger holds
// at most one entry per source reference.
type SourceRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// IsZero reports whether the reference is unset.
func (s SourceRef) IsZero() bool {
	return s.Type == "" && s.ID == ""
}

// JournalEntry represents a single balanced financial event composed of
// multiple journal lines. Once Posted it is immutable except for the linkage
// written when a reversing entry is created.
type JournalEntry struct {
	EntryID           string        `json:"entryID"`   // Primary key (UUID)
	EntryDate         time.Time     `json:"entryDate"` // Date the event occurred
	Narration         string        `json:"narration"` // Free-text description
	Status            EntryStatus   `json:"status"`
	Source            SourceRef     `json:"source"`
	ReversesEntryID   *string       `json:"reversesEntryID"`   // Set on a reversal entry
	ReversedByEntryID *string       `json:"reversedByEntryID"` // Set on the original once reversed
	Lines             []JournalLine `json:"lines,omitempty"`   // Owned exclusively by the entry
	AuditFields
}

// JournalLine is a single debit or credit against one account.
// Exactly one side carries the (positive) amount.
type JournalLine struct {
	LineID      string          `json:"lineID"`
	EntryID     string          `json:"entryID"`
	AccountCode string          `json:"accountCode"`
	Side        BalanceSide     `json:"side"`
	Amount      decimal.Decimal `json:"amount"`   // Always positive
	Position    int             `json:"position"` // Caller-supplied display order
	// Denormalised from the owning entry when lines are read standalone.
	EntryDate   time.Time   `json:"entryDate,omitempty"`
	EntryStatus EntryStatus `json:"entryStatus,omitempty"`
	Narration   string      `json:"narration,omitempty"`
	AuditFields
}

// SignedAmount returns the line amount signed by the account's normal balance
// side: positive when the line increases the account, negative when it
// decreases it.
func (l JournalLine) SignedAmount(normal BalanceSide) decimal.Decimal {
	if l.Side == normal {
		return l.Amount
	}
	return l.Amount.Neg()
}
