package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/templetrust/templeledger/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:        newPgxAccountRepository(dbPool),
		JournalRepo:        newPgxJournalRepository(dbPool),
		PeriodRepo:         newPgxPeriodRepository(dbPool),
		ReconciliationRepo: newPgxReconciliationRepository(dbPool),
		DepreciationRepo:   newPgxDepreciationRepository(dbPool),
	}
}
