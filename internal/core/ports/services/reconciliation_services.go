package services

import (
	"context"
	"time"

	"github.com/templetrust/templeledger/internal/core/domain"
	"github.com/templetrust/templeledger/internal/dto"
)

// ReconciliationSvcFacade matches imported bank statement lines against
// posted bank-account journal lines. It records match metadata only and
// never mutates the ledger.
type ReconciliationSvcFacade interface {
	// ImportStatementLines stores a batch of external statement lines and
	// returns how many were new.
	ImportStatementLines(ctx context.Context, req dto.ImportStatementRequest, actorID string) (int, error)

	// AutoMatch matches unmatched statement lines for an account against
	// unmatched journal lines of equal amount within windowDays of the
	// statement date. Single candidates become Exact matches; several
	// candidates are surfaced as ambiguous, never guessed.
	AutoMatch(ctx context.Context, accountCode string, windowDays int, actorID string) (*domain.AutoMatchResult, error)

	// ManualMatch links a statement line to a journal line by hand. Differing
	// amounts are allowed but flagged on the match record.
	ManualMatch(ctx context.Context, statementLineID, journalLineID string, actorID string) (*domain.ReconciliationMatch, error)

	// Unmatch removes a match.
	Unmatch(ctx context.Context, matchID string, actorID string) error

	// Outstanding returns both unreconciled sides as of a date, plus matches
	// invalidated by a later reversal.
	Outstanding(ctx context.Context, accountCode string, asOf time.Time) (*domain.OutstandingItems, error)
}
