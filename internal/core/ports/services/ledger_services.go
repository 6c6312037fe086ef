package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/templetrust/templeledger/internal/core/domain"
	"github.com/templetrust/templeledger/internal/dto"
)

// LedgerPosterSvc defines the posting contract consumed by originating
// modules (donations, seva bookings, inventory, assets). Callers never
// construct journal entries directly.
type LedgerPosterSvc interface {
	// CreateDraft validates and records a Draft entry. If a Posted or Draft
	// entry already exists for the request's source reference it is returned
	// as-is (idempotent per source).
	CreateDraft(ctx context.Context, req dto.CreateEntryRequest, actorID string) (*domain.JournalEntry, error)

	// Post transitions a Draft entry to Posted, making it visible to balances.
	Post(ctx context.Context, entryID string, actorID string) (*domain.JournalEntry, error)

	// Reverse posts a swapped-side copy of a Posted entry at the given date
	// and marks the original Reversed.
	Reverse(ctx context.Context, entryID string, date time.Time, reason string, actorID string) (*domain.JournalEntry, error)
}

// LedgerReaderSvc defines the query contract consumed by reporting collaborators.
type LedgerReaderSvc interface {
	// GetEntry retrieves an entry with its lines.
	GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// Balance returns the account's signed balance as of a date, net of
	// opening-balance carry-forward, by the normal-balance convention.
	Balance(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, error)

	// TrialBalance returns every account's debit/credit totals as of a date.
	TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error)

	// LedgerListing returns one account's statement over a date range with
	// running balances.
	LedgerListing(ctx context.Context, accountCode string, from, to time.Time) (*domain.LedgerListing, error)
}

// LedgerSvcFacade combines the ledger engine interfaces.
type LedgerSvcFacade interface {
	LedgerPosterSvc
	LedgerReaderSvc
}
