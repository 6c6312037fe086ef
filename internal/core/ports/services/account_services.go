package services

import (
	"context"

	"github.com/templetrust/templeledger/internal/core/domain"
	"github.com/templetrust/templeledger/internal/dto"
)

// ChartOfAccountsReaderSvc defines read operations on the chart of accounts.
type ChartOfAccountsReaderSvc interface {
	// GetAccountByCode resolves a code to an account.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// GetAccountsByCodes resolves several codes at once, keyed by code.
	GetAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts returns all accounts ordered by code.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// Children returns the direct children of an account, ordered by code.
	Children(ctx context.Context, code string) ([]domain.Account, error)

	// ValidateCode checks the 5-digit class/category/account code format.
	ValidateCode(code string) error
}

// ChartOfAccountsWriterSvc defines mutations on the chart of accounts.
type ChartOfAccountsWriterSvc interface {
	// CreateAccount registers a new account; the class and normal balance are
	// derived from the code's leading digit and fixed thereafter.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorID string) (*domain.Account, error)

	// DeactivateAccount marks an account inactive. Accounts referenced by
	// posted lines are never deleted.
	DeactivateAccount(ctx context.Context, code string, actorID string) error
}

// ChartOfAccountsSvcFacade combines the chart-of-accounts interfaces.
type ChartOfAccountsSvcFacade interface {
	ChartOfAccountsReaderSvc
	ChartOfAccountsWriterSvc
}
