package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/templetrust/templeledger/internal/core/domain"
)

// JournalReader defines read operations for journal entries and lines.
type JournalReader interface {
	// FindEntryByID retrieves a specific entry (without lines).
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntryBySource retrieves the entry recorded for a source reference,
	// or apperrors.ErrNotFound when none exists. This is the idempotency lookup.
	FindEntryBySource(ctx context.Context, source domain.SourceRef) (*domain.JournalEntry, error)

	// FindLinesByEntryID retrieves an entry's lines in caller-supplied order.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// FindLineByID retrieves one line with its entry's date and status denormalised.
	FindLineByID(ctx context.Context, lineID string) (*domain.JournalLine, error)

	// ListPostedLines retrieves Posted lines for one account with entry dates
	// in [from, to], ordered by entry date then line position.
	ListPostedLines(ctx context.Context, accountCode string, from, to time.Time) ([]domain.JournalLine, error)
}

// JournalWriter defines write operations for journal entries.
type JournalWriter interface {
	// SaveEntry persists an entry and its lines atomically. A unique index on
	// the source reference maps concurrent duplicates to apperrors.ErrDuplicate.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) error

	// UpdateEntryStatus transitions an entry's status and reversal linkage.
	// A transition to Posted re-checks the covering periods under lock and
	// fails with apperrors.ErrPeriodClosed when one closed since the caller's
	// own check.
	UpdateEntryStatus(ctx context.Context, entryID string, status domain.EntryStatus, reversedByEntryID *string, updatedBy string, updatedAt time.Time) error

	// SaveReversal atomically posts the reversing entry and marks the original
	// Reversed, holding period locks for the reversal date until commit.
	SaveReversal(ctx context.Context, reversal domain.JournalEntry, lines []domain.JournalLine, originalEntryID string) error
}

// BalanceReader defines the aggregate queries behind balances and reports.
type BalanceReader interface {
	// SumPostedLines returns the debit and credit totals of Posted lines on
	// one account with entry dates in [from, to]. Draft lines never count.
	SumPostedLines(ctx context.Context, accountCode string, from, to time.Time) (debit, credit decimal.Decimal, err error)

	// GetTrialBalanceData returns per-account debit/credit totals over Posted
	// lines with entry dates in [from, to], ordered by account code.
	GetTrialBalanceData(ctx context.Context, from, to time.Time) ([]domain.TrialBalanceRow, error)
}

// JournalRepositoryFacade combines all journal repository interfaces.
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	BalanceReader
}
