package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/templetrust/templeledger/internal/apperrors"
	"github.com/templetrust/templeledger/internal/core/domain"
	portsrepo "github.com/templetrust/templeledger/internal/core/ports/repositories"
	portssvc "github.com/templetrust/templeledger/internal/core/ports/services"
	"github.com/templetrust/templeledger/internal/dto"
)

var (
	ErrInvalidAccountCode = errors.New("account code must be five digits with a class digit of 1-5")
	ErrParentClassMismatch = errors.New("parent account must share the child's class digit")
)

// chartOfAccountsService owns the account hierarchy and code-format rules.
type chartOfAccountsService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
}

// NewChartOfAccountsService creates a new chart-of-accounts service.
func NewChartOfAccountsService(accountRepo portsrepo.AccountRepositoryFacade) portssvc.ChartOfAccountsSvcFacade {
	return &chartOfAccountsService{accountRepo: accountRepo}
}

var _ portssvc.ChartOfAccountsSvcFacade = (*chartOfAccountsService)(nil)

// ValidateCode checks the 5-digit ABCDE format: A is the class digit 1-5,
// BC the major category, DE the leaf account.
func (s *chartOfAccountsService) ValidateCode(code string) error {
	if len(code) != 5 {
		return fmt.Errorf("%w: got %q", ErrInvalidAccountCode, code)
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return fmt.Errorf("%w: got %q", ErrInvalidAccountCode, code)
		}
	}
	if _, ok := domain.ClassForDigit(code[0]); !ok {
		return fmt.Errorf("%w: got %q", ErrInvalidAccountCode, code)
	}
	return nil
}

// CreateAccount registers a new account. The class digit is fixed at creation;
// code uniqueness is enforced by the catalog.
func (s *chartOfAccountsService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorID string) (*domain.Account, error) {
	if err := s.ValidateCode(req.Code); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	class, _ := domain.ClassForDigit(req.Code[0])

	if req.ParentCode != "" {
		parent, err := s.accountRepo.FindAccountByCode(ctx, req.ParentCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account %s", apperrors.ErrNotFound, req.ParentCode)
			}
			return nil, fmt.Errorf("failed to resolve parent account %s: %w", req.ParentCode, err)
		}
		if parent.Class != class {
			return nil, fmt.Errorf("%w: parent %s is %s, child %s is %s",
				ErrParentClassMismatch, parent.Code, parent.Class, req.Code, class)
		}
	}

	now := time.Now().UTC()
	account := domain.Account{
		Code:          req.Code,
		Name:          req.Name,
		Class:         class,
		NormalBalance: class.NormalBalance(),
		ParentCode:    req.ParentCode,
		IsBankAccount: req.IsBankAccount,
		IsActive:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: account code %s", apperrors.ErrDuplicate, req.Code)
		}
		s.LogError(ctx, err, "Failed to save account", slog.String("code", req.Code))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account created", slog.String("code", account.Code), slog.String("class", string(account.Class)))
	return &account, nil
}

// GetAccountByCode resolves a code to an account.
func (s *chartOfAccountsService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account", slog.String("code", code))
		}
		return nil, fmt.Errorf("failed to find account %s: %w", code, err)
	}
	return account, nil
}

// GetAccountsByCodes resolves several codes at once. Missing codes are simply
// absent from the map; callers decide whether that is an error.
func (s *chartOfAccountsService) GetAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByCodes(ctx, codes)
	if err != nil {
		s.LogError(ctx, err, "Failed to find accounts by codes")
		return nil, fmt.Errorf("failed to find accounts: %w", err)
	}
	return accounts, nil
}

// ListAccounts returns the whole catalog ordered by code.
func (s *chartOfAccountsService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// Children returns the direct children of an account ordered by code ascending.
func (s *chartOfAccountsService) Children(ctx context.Context, code string) ([]domain.Account, error) {
	if _, err := s.GetAccountByCode(ctx, code); err != nil {
		return nil, err
	}
	children, err := s.accountRepo.ListChildren(ctx, code)
	if err != nil {
		s.LogError(ctx, err, "Failed to list child accounts", slog.String("code", code))
		return nil, fmt.Errorf("failed to list children of %s: %w", code, err)
	}
	return children, nil
}

// DeactivateAccount marks an account inactive so new postings reject it.
// Posted history referencing the account stays intact.
func (s *chartOfAccountsService) DeactivateAccount(ctx context.Context, code string, actorID string) error {
	if _, err := s.GetAccountByCode(ctx, code); err != nil {
		return err
	}
	if err := s.accountRepo.SetAccountActive(ctx, code, false, actorID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("code", code))
		return fmt.Errorf("failed to deactivate account %s: %w", code, err)
	}
	s.LogInfo(ctx, "Account deactivated", slog.String("code", code))
	return nil
}
