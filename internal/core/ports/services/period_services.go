package services

import (
	"context"
	"time"

	"github.com/templetrust/templeledger/internal/core/domain"
)

// PeriodSvcFacade manages the financial-period lifecycle.
type PeriodSvcFacade interface {
	// SetupFinancialYear creates twelve contiguous month periods plus the
	// enclosing year period starting at startDate.
	SetupFinancialYear(ctx context.Context, startDate time.Time, actorID string) ([]domain.FinancialPeriod, error)

	// CurrentPeriod returns the month period containing the date, or
	// ErrNoPeriodDefined. A pure query; there is no process-wide current period.
	CurrentPeriod(ctx context.Context, date time.Time) (*domain.FinancialPeriod, error)

	// GetPeriod retrieves one period with its opening snapshot.
	GetPeriod(ctx context.Context, periodID string) (*domain.FinancialPeriod, error)

	// ListPeriods lists periods, optionally filtered by kind.
	ListPeriods(ctx context.Context, kind *domain.PeriodKind) ([]domain.FinancialPeriod, error)

	// Close locks a period: verifies the range's trial balance, posts the
	// year-end zeroing entry for Year periods, snapshots opening balances for
	// the following period and marks the period Closed - atomically.
	Close(ctx context.Context, periodID string, closingDate time.Time, actorID string) (*domain.ClosingResult, error)

	// CheckPostable returns ErrPeriodClosed when the date falls inside a
	// Closed period. Dates not covered by any period are postable.
	CheckPostable(ctx context.Context, date time.Time) error
}
