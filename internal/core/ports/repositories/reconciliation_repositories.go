package repositories

import (
	"context"
	"time"

	"github.com/templetrust/templeledger/internal/core/domain"
)

// ReconciliationReader defines read operations for reconciliation data.
type ReconciliationReader interface {
	// FindStatementLineByID retrieves one imported statement line.
	FindStatementLineByID(ctx context.Context, statementLineID string) (*domain.BankStatementLine, error)

	// ListUnmatchedStatementLines retrieves statement lines for an account
	// with no active match, dated on or before asOf, ordered by date then ID.
	ListUnmatchedStatementLines(ctx context.Context, accountCode string, asOf time.Time) ([]domain.BankStatementLine, error)

	// ListUnmatchedJournalLines retrieves Posted journal lines on an account
	// with no active match and entry dates in [from, to], ordered by entry
	// date then line ID.
	ListUnmatchedJournalLines(ctx context.Context, accountCode string, from, to time.Time) ([]domain.JournalLine, error)

	// FindMatchByID retrieves one match with its Inconsistent flag derived
	// from the matched entry's current status.
	FindMatchByID(ctx context.Context, matchID string) (*domain.ReconciliationMatch, error)

	// ListInconsistentMatches retrieves matches whose journal entry has been
	// reversed since the match was recorded.
	ListInconsistentMatches(ctx context.Context, accountCode string, asOf time.Time) ([]domain.ReconciliationMatch, error)
}

// ReconciliationWriter defines write operations for reconciliation data.
type ReconciliationWriter interface {
	// SaveStatementLines persists a batch of imported statement lines.
	// Re-importing a line with the same external reference is a no-op.
	SaveStatementLines(ctx context.Context, lines []domain.BankStatementLine) (int, error)

	// SaveMatch records a match. Unique indexes on both sides map a
	// concurrent or repeated match to apperrors.ErrDuplicate.
	SaveMatch(ctx context.Context, match domain.ReconciliationMatch) error

	// DeleteMatch removes a match; apperrors.ErrNotFound when absent.
	DeleteMatch(ctx context.Context, matchID string) error
}

// ReconciliationRepositoryFacade combines all reconciliation repository interfaces.
type ReconciliationRepositoryFacade interface {
	ReconciliationReader
	ReconciliationWriter
}
