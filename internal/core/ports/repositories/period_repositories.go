package repositories

import (
	"context"
	"time"

	"github.com/templetrust/templeledger/internal/core/domain"
)

// PeriodReader defines read operations for financial periods.
type PeriodReader interface {
	// FindPeriodByID retrieves a period with its opening-balance snapshot.
	FindPeriodByID(ctx context.Context, periodID string) (*domain.FinancialPeriod, error)

	// FindPeriodForDate retrieves the period of the given kind containing the
	// date, or apperrors.ErrNotFound when no period is defined there.
	FindPeriodForDate(ctx context.Context, date time.Time, kind domain.PeriodKind) (*domain.FinancialPeriod, error)

	// FindFollowingPeriod retrieves the period of the same kind starting
	// immediately after the given period's end date.
	FindFollowingPeriod(ctx context.Context, period domain.FinancialPeriod) (*domain.FinancialPeriod, error)

	// ListPeriods retrieves all periods ordered by start date.
	ListPeriods(ctx context.Context, kind *domain.PeriodKind) ([]domain.FinancialPeriod, error)
}

// PrepareCloseFunc computes the closing entry and carry-forward snapshots for
// a period close. The repository invokes it only after the period row is
// locked exclusively, so the balances it reads cannot miss a concurrent post.
// Its error aborts the close and is returned unwrapped.
type PrepareCloseFunc func(ctx context.Context) (*domain.PeriodCloseData, error)

// PeriodWriter defines write operations for financial periods.
type PeriodWriter interface {
	// SavePeriods inserts a batch of periods (financial-year setup).
	// Overlapping ranges surface as apperrors.ErrDuplicate.
	SavePeriods(ctx context.Context, periods []domain.FinancialPeriod) error

	// ClosePeriod applies a close atomically: it locks the period row,
	// re-checks it is still Open (apperrors.ErrConflict otherwise), invokes
	// prepare under that lock, posts the optional closing entry, replaces the
	// target periods' opening snapshots and marks the period Closed. Nothing
	// is observable half-done.
	ClosePeriod(ctx context.Context, periodID string, closedAt time.Time, prepare PrepareCloseFunc, closedBy string) error
}

// PeriodRepositoryFacade combines all period repository interfaces.
type PeriodRepositoryFacade interface {
	PeriodReader
	PeriodWriter
}
