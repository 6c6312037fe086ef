package services

import (
	portsrepo "github.com/templetrust/templeledger/internal/core/ports/repositories"
	portssvc "github.com/templetrust/templeledger/internal/core/ports/services"
	"github.com/templetrust/templeledger/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Chart of accounts first since everything else resolves accounts through it.
	container.ChartOfAccounts = NewChartOfAccountsService(repos.AccountRepo)
	accountReader := container.ChartOfAccounts.(portssvc.ChartOfAccountsReaderSvc)

	container.Period = NewPeriodService(
		repos.PeriodRepo,
		repos.JournalRepo,
		accountReader,
		cfg.RetainedSurplusAccount,
	)
	container.Ledger = NewLedgerService(repos.JournalRepo, accountReader, container.Period)
	container.Reconciliation = NewReconciliationService(
		repos.ReconciliationRepo,
		repos.JournalRepo,
		accountReader,
		cfg.ReconciliationWindowDays,
	)
	container.Depreciation = NewDepreciationService(repos.DepreciationRepo, accountReader, container.Ledger)

	return container
}
