package repositories

import (
	"context"
	"time"

	"github.com/templetrust/templeledger/internal/core/domain"
)

// AccountReader defines read operations for the chart of accounts.
type AccountReader interface {
	// FindAccountByCode retrieves a single account by its 5-digit code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByCodes retrieves several accounts keyed by code.
	// Missing codes are simply absent from the map.
	FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error)

	// ListAccounts retrieves all accounts ordered by code ascending.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// ListChildren retrieves the direct children of an account, ordered by code ascending.
	ListChildren(ctx context.Context, parentCode string) ([]domain.Account, error)
}

// AccountWriter defines write operations for the chart of accounts.
type AccountWriter interface {
	// SaveAccount inserts a new account. Returns apperrors.ErrDuplicate when
	// the code already exists.
	SaveAccount(ctx context.Context, account domain.Account) error

	// SetAccountActive toggles the active flag. Accounts are never deleted.
	SetAccountActive(ctx context.Context, code string, active bool, updatedBy string, updatedAt time.Time) error
}

// AccountRepositoryFacade combines all account repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
