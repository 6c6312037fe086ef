package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/templetrust/templeledger/internal/core/domain"
	portsrepo "github.com/templetrust/templeledger/internal/core/ports/repositories"
	portssvc "github.com/templetrust/templeledger/internal/core/ports/services"
	"github.com/templetrust/templeledger/internal/dto"
)

// --- Mock AccountRepository ---

type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListChildren(ctx context.Context, parentCode string) ([]domain.Account, error) {
	args := m.Called(ctx, parentCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) SetAccountActive(ctx context.Context, code string, active bool, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, code, active, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock JournalRepository ---

type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindEntryBySource(ctx context.Context, source domain.SourceRef) (*domain.JournalEntry, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) FindLineByID(ctx context.Context, lineID string) (*domain.JournalLine, error) {
	args := m.Called(ctx, lineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) ListPostedLines(ctx context.Context, accountCode string, from, to time.Time) ([]domain.JournalLine, error) {
	args := m.Called(ctx, accountCode, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) error {
	args := m.Called(ctx, entry, lines)
	return args.Error(0)
}

func (m *MockJournalRepository) UpdateEntryStatus(ctx context.Context, entryID string, status domain.EntryStatus, reversedByEntryID *string, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, entryID, status, reversedByEntryID, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockJournalRepository) SaveReversal(ctx context.Context, reversal domain.JournalEntry, lines []domain.JournalLine, originalEntryID string) error {
	args := m.Called(ctx, reversal, lines, originalEntryID)
	return args.Error(0)
}

func (m *MockJournalRepository) SumPostedLines(ctx context.Context, accountCode string, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, accountCode, from, to)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockJournalRepository) GetTrialBalanceData(ctx context.Context, from, to time.Time) ([]domain.TrialBalanceRow, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TrialBalanceRow), args.Error(1)
}

// --- Mock PeriodRepository ---

type MockPeriodRepository struct {
	mock.Mock
	OnCloseData func(*domain.PeriodCloseData)
}

var _ portsrepo.PeriodRepositoryFacade = (*MockPeriodRepository)(nil)

func (m *MockPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.FinancialPeriod, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindPeriodForDate(ctx context.Context, date time.Time, kind domain.PeriodKind) (*domain.FinancialPeriod, error) {
	args := m.Called(ctx, date, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialPeriod), args.Error(1)
}

func (m *MockPeriodRepository) FindFollowingPeriod(ctx context.Context, period domain.FinancialPeriod) (*domain.FinancialPeriod, error) {
	args := m.Called(ctx, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialPeriod), args.Error(1)
}

func (m *MockPeriodRepository) ListPeriods(ctx context.Context, kind *domain.PeriodKind) ([]domain.FinancialPeriod, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FinancialPeriod), args.Error(1)
}

func (m *MockPeriodRepository) SavePeriods(ctx context.Context, periods []domain.FinancialPeriod) error {
	args := m.Called(ctx, periods)
	return args.Error(0)
}

// ClosePeriod mirrors the repository contract: the prepare callback runs only
// after the expectation succeeds, and its error aborts the close. The
// computed close data is handed to OnCloseData for assertions.
func (m *MockPeriodRepository) ClosePeriod(ctx context.Context, periodID string, closedAt time.Time, prepare portsrepo.PrepareCloseFunc, closedBy string) error {
	args := m.Called(ctx, periodID, closedAt, prepare, closedBy)
	if err := args.Error(0); err != nil {
		return err
	}
	data, err := prepare(ctx)
	if err != nil {
		return err
	}
	if m.OnCloseData != nil {
		m.OnCloseData(data)
	}
	return nil
}

// --- Mock ReconciliationRepository ---

type MockReconciliationRepository struct {
	mock.Mock
}

var _ portsrepo.ReconciliationRepositoryFacade = (*MockReconciliationRepository)(nil)

func (m *MockReconciliationRepository) FindStatementLineByID(ctx context.Context, statementLineID string) (*domain.BankStatementLine, error) {
	args := m.Called(ctx, statementLineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankStatementLine), args.Error(1)
}

func (m *MockReconciliationRepository) ListUnmatchedStatementLines(ctx context.Context, accountCode string, asOf time.Time) ([]domain.BankStatementLine, error) {
	args := m.Called(ctx, accountCode, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankStatementLine), args.Error(1)
}

func (m *MockReconciliationRepository) ListUnmatchedJournalLines(ctx context.Context, accountCode string, from, to time.Time) ([]domain.JournalLine, error) {
	args := m.Called(ctx, accountCode, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalLine), args.Error(1)
}

func (m *MockReconciliationRepository) FindMatchByID(ctx context.Context, matchID string) (*domain.ReconciliationMatch, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationMatch), args.Error(1)
}

func (m *MockReconciliationRepository) ListInconsistentMatches(ctx context.Context, accountCode string, asOf time.Time) ([]domain.ReconciliationMatch, error) {
	args := m.Called(ctx, accountCode, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReconciliationMatch), args.Error(1)
}

func (m *MockReconciliationRepository) SaveStatementLines(ctx context.Context, lines []domain.BankStatementLine) (int, error) {
	args := m.Called(ctx, lines)
	return args.Int(0), args.Error(1)
}

func (m *MockReconciliationRepository) SaveMatch(ctx context.Context, match domain.ReconciliationMatch) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *MockReconciliationRepository) DeleteMatch(ctx context.Context, matchID string) error {
	args := m.Called(ctx, matchID)
	return args.Error(0)
}

// --- Mock DepreciationRepository ---

type MockDepreciationRepository struct {
	mock.Mock
}

var _ portsrepo.DepreciationRepositoryFacade = (*MockDepreciationRepository)(nil)

func (m *MockDepreciationRepository) FindAssetByID(ctx context.Context, assetID string) (*domain.DepreciableAsset, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DepreciableAsset), args.Error(1)
}

func (m *MockDepreciationRepository) FindScheduleByAsset(ctx context.Context, assetID string) ([]domain.DepreciationScheduleEntry, error) {
	args := m.Called(ctx, assetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DepreciationScheduleEntry), args.Error(1)
}

func (m *MockDepreciationRepository) FindScheduleEntryByID(ctx context.Context, scheduleID string) (*domain.DepreciationScheduleEntry, error) {
	args := m.Called(ctx, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DepreciationScheduleEntry), args.Error(1)
}

func (m *MockDepreciationRepository) SaveAsset(ctx context.Context, asset domain.DepreciableAsset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockDepreciationRepository) SaveScheduleEntries(ctx context.Context, entries []domain.DepreciationScheduleEntry) (int, error) {
	args := m.Called(ctx, entries)
	return args.Int(0), args.Error(1)
}

func (m *MockDepreciationRepository) LinkJournalEntry(ctx context.Context, scheduleID string, journalEntryID string, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, scheduleID, journalEntryID, updatedBy, updatedAt)
	return args.Error(0)
}

// --- Mock ChartOfAccountsReaderSvc ---

type MockAccountReaderSvc struct {
	mock.Mock
}

var _ portssvc.ChartOfAccountsReaderSvc = (*MockAccountReaderSvc)(nil)

func (m *MockAccountReaderSvc) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountReaderSvc) GetAccountsByCodes(ctx context.Context, codes []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountReaderSvc) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountReaderSvc) Children(ctx context.Context, code string) ([]domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountReaderSvc) ValidateCode(code string) error {
	args := m.Called(code)
	return args.Error(0)
}

// --- Mock PeriodSvc ---

type MockPeriodService struct {
	mock.Mock
}

var _ portssvc.PeriodSvcFacade = (*MockPeriodService)(nil)

func (m *MockPeriodService) SetupFinancialYear(ctx context.Context, startDate time.Time, actorID string) ([]domain.FinancialPeriod, error) {
	args := m.Called(ctx, startDate, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FinancialPeriod), args.Error(1)
}

func (m *MockPeriodService) CurrentPeriod(ctx context.Context, date time.Time) (*domain.FinancialPeriod, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialPeriod), args.Error(1)
}

func (m *MockPeriodService) GetPeriod(ctx context.Context, periodID string) (*domain.FinancialPeriod, error) {
	args := m.Called(ctx, periodID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialPeriod), args.Error(1)
}

func (m *MockPeriodService) ListPeriods(ctx context.Context, kind *domain.PeriodKind) ([]domain.FinancialPeriod, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FinancialPeriod), args.Error(1)
}

func (m *MockPeriodService) Close(ctx context.Context, periodID string, closingDate time.Time, actorID string) (*domain.ClosingResult, error) {
	args := m.Called(ctx, periodID, closingDate, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClosingResult), args.Error(1)
}

func (m *MockPeriodService) CheckPostable(ctx context.Context, date time.Time) error {
	args := m.Called(ctx, date)
	return args.Error(0)
}

// --- Mock LedgerSvc ---

type MockLedgerService struct {
	mock.Mock
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

func (m *MockLedgerService) CreateDraft(ctx context.Context, req dto.CreateEntryRequest, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, req, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) Post(ctx context.Context, entryID string, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) Reverse(ctx context.Context, entryID string, date time.Time, reason string, actorID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, date, reason, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockLedgerService) Balance(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, accountCode, asOf)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TrialBalanceReport), args.Error(1)
}

func (m *MockLedgerService) LedgerListing(ctx context.Context, accountCode string, from, to time.Time) (*domain.LedgerListing, error) {
	args := m.Called(ctx, accountCode, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerListing), args.Error(1)
}
