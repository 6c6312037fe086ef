package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/templetrust/templeledger/internal/apperrors"
	"github.com/templetrust/templeledger/internal/core/domain"
	portssvc "github.com/templetrust/templeledger/internal/core/ports/services"
	"github.com/templetrust/templeledger/internal/core/services"
	"github.com/templetrust/templeledger/internal/dto"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	mockJournalRepo *MockJournalRepository
	mockAccountSvc  *MockAccountReaderSvc
	mockPeriodSvc   *MockPeriodService
	service         portssvc.LedgerSvcFacade
	ctx             context.Context

	cashAccount   domain.Account
	incomeAccount domain.Account
	entryDate     time.Time
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.mockJournalRepo = new(MockJournalRepository)
	s.mockAccountSvc = new(MockAccountReaderSvc)
	s.mockPeriodSvc = new(MockPeriodService)
	s.service = services.NewLedgerService(s.mockJournalRepo, s.mockAccountSvc, s.mockPeriodSvc)
	s.ctx = context.Background()

	s.cashAccount = domain.Account{
		Code:          "11001",
		Name:          "Cash in Hand",
		Class:         domain.Asset,
		NormalBalance: domain.Debit,
		IsActive:      true,
	}
	s.incomeAccount = domain.Account{
		Code:          "41001",
		Name:          "Hundi Donations",
		Class:         domain.Income,
		NormalBalance: domain.Credit,
		IsActive:      true,
	}
	s.entryDate = time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)
}

func (s *LedgerServiceTestSuite) balancedRequest() dto.CreateEntryRequest {
	return dto.CreateEntryRequest{
		Date:      s.entryDate,
		Narration: "Hundi collection",
		Lines: []dto.EntryLineRequest{
			{AccountCode: "11001", Side: domain.Debit, Amount: decimal.NewFromInt(500)},
			{AccountCode: "41001", Side: domain.Credit, Amount: decimal.NewFromInt(500)},
		},
	}
}

func (s *LedgerServiceTestSuite) accountMap() map[string]domain.Account {
	return map[string]domain.Account{
		s.cashAccount.Code:   s.cashAccount,
		s.incomeAccount.Code: s.incomeAccount,
	}
}

func (s *LedgerServiceTestSuite) TestCreateDraftSuccess() {
	req := s.balancedRequest()

	s.mockPeriodSvc.On("CheckPostable", s.ctx, req.Date).Return(nil).Once()
	s.mockAccountSvc.On("GetAccountsByCodes", s.ctx, []string{"11001", "41001"}).Return(s.accountMap(), nil).Once()
	s.mockJournalRepo.On("SaveEntry", s.ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine")).Return(nil).Once()

	entry, err := s.service.CreateDraft(s.ctx, req, "user-1")

	s.Require().NoError(err)
	s.Require().NotNil(entry)
	s.Equal(domain.Draft, entry.Status)
	s.Equal("Hundi collection", entry.Narration)
	s.Len(entry.Lines, 2)
	s.Equal("11001", entry.Lines[0].AccountCode)
	s.Equal(0, entry.Lines[0].Position)
	s.Equal(1, entry.Lines[1].Position)
	s.Equal("user-1", entry.CreatedBy)
	s.mockJournalRepo.AssertExpectations(s.T())
	s.mockPeriodSvc.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestCreateDraftImbalanced() {
	req := s.balancedRequest()
	req.Lines[1].Amount = decimal.NewFromInt(400)

	entry, err := s.service.CreateDraft(s.ctx, req, "user-1")

	s.Require().Error(err)
	s.ErrorIs(err, services.ErrImbalancedEntry)
	s.Nil(entry)
	s.mockJournalRepo.AssertNotCalled(s.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestCreateDraftTooFewLines() {
	req := s.balancedRequest()
	req.Lines = req.Lines[:1]

	_, err := s.service.CreateDraft(s.ctx, req, "user-1")

	s.ErrorIs(err, services.ErrEmptyEntry)
}

func (s *LedgerServiceTestSuite) TestCreateDraftNonPositiveAmount() {
	req := s.balancedRequest()
	req.Lines[0].Amount = decimal.Zero
	req.Lines[1].Amount = decimal.Zero

	_, err := s.service.CreateDraft(s.ctx, req, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestCreateDraftUnknownAccount() {
	req := s.balancedRequest()

	s.mockPeriodSvc.On("CheckPostable", s.ctx, req.Date).Return(nil).Once()
	s.mockAccountSvc.On("GetAccountsByCodes", s.ctx, []string{"11001", "41001"}).
		Return(map[string]domain.Account{s.cashAccount.Code: s.cashAccount}, nil).Once()

	_, err := s.service.CreateDraft(s.ctx, req, "user-1")

	s.ErrorIs(err, services.ErrUnknownAccount)
	s.mockJournalRepo.AssertNotCalled(s.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestCreateDraftInactiveAccount() {
	req := s.balancedRequest()
	inactive := s.incomeAccount
	inactive.IsActive = false
	accounts := map[string]domain.Account{
		s.cashAccount.Code: s.cashAccount,
		inactive.Code:      inactive,
	}

	s.mockPeriodSvc.On("CheckPostable", s.ctx, req.Date).Return(nil).Once()
	s.mockAccountSvc.On("GetAccountsByCodes", s.ctx, []string{"11001", "41001"}).Return(accounts, nil).Once()

	_, err := s.service.CreateDraft(s.ctx, req, "user-1")

	s.ErrorIs(err, services.ErrUnknownAccount)
}

func (s *LedgerServiceTestSuite) TestCreateDraftClosedPeriod() {
	req := s.balancedRequest()

	s.mockPeriodSvc.On("CheckPostable", s.ctx, req.Date).Return(apperrors.ErrPeriodClosed).Once()

	_, err := s.service.CreateDraft(s.ctx, req, "user-1")

	s.ErrorIs(err, apperrors.ErrPeriodClosed)
	s.mockJournalRepo.AssertNotCalled(s.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestCreateDraftSourceIdempotent() {
	req := s.balancedRequest()
	req.SourceType = "donation"
	req.SourceID = "don-42"
	existing := &domain.JournalEntry{
		EntryID: "existing-id",
		Status:  domain.Posted,
		Source:  domain.SourceRef{Type: "donation", ID: "don-42"},
	}

	s.mockJournalRepo.On("FindEntryBySource", s.ctx, req.SourceRef()).Return(existing, nil).Once()

	entry, err := s.service.CreateDraft(s.ctx, req, "user-1")

	s.Require().NoError(err)
	s.Equal("existing-id", entry.EntryID)
	s.mockJournalRepo.AssertNotCalled(s.T(), "SaveEntry", mock.Anything, mock.Anything, mock.Anything)
	s.mockPeriodSvc.AssertNotCalled(s.T(), "CheckPostable", mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestCreateDraftDuplicateRaceReturnsWinner() {
	req := s.balancedRequest()
	req.SourceType = "donation"
	req.SourceID = "don-43"
	winner := &domain.JournalEntry{
		EntryID: "winner-id",
		Status:  domain.Draft,
		Source:  req.SourceRef(),
	}

	s.mockJournalRepo.On("FindEntryBySource", s.ctx, req.SourceRef()).Return(nil, apperrors.ErrNotFound).Once()
	s.mockPeriodSvc.On("CheckPostable", s.ctx, req.Date).Return(nil).Once()
	s.mockAccountSvc.On("GetAccountsByCodes", s.ctx, []string{"11001", "41001"}).Return(s.accountMap(), nil).Once()
	s.mockJournalRepo.On("SaveEntry", s.ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine")).Return(apperrors.ErrDuplicate).Once()
	s.mockJournalRepo.On("FindEntryBySource", s.ctx, req.SourceRef()).Return(winner, nil).Once()

	entry, err := s.service.CreateDraft(s.ctx, req, "user-1")

	s.Require().NoError(err)
	s.Equal("winner-id", entry.EntryID)
	s.mockJournalRepo.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestPostSuccess() {
	draft := &domain.JournalEntry{
		EntryID:   "entry-1",
		EntryDate: s.entryDate,
		Status:    domain.Draft,
	}

	s.mockJournalRepo.On("FindEntryByID", s.ctx, "entry-1").Return(draft, nil).Once()
	s.mockPeriodSvc.On("CheckPostable", s.ctx, s.entryDate).Return(nil).Once()
	s.mockJournalRepo.On("UpdateEntryStatus", s.ctx, "entry-1", domain.Posted, (*string)(nil), "user-1", mock.AnythingOfType("time.Time")).Return(nil).Once()

	entry, err := s.service.Post(s.ctx, "entry-1", "user-1")

	s.Require().NoError(err)
	s.Equal(domain.Posted, entry.Status)
	s.Equal("user-1", entry.LastUpdatedBy)
	s.mockJournalRepo.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestPostLateCloseRaceSurfacesPeriodClosed() {
	draft := &domain.JournalEntry{
		EntryID:   "entry-1",
		EntryDate: s.entryDate,
		Status:    domain.Draft,
	}

	// The period was open at check time but closed before the posting
	// transaction took its period lock; the storage layer refuses the post.
	s.mockJournalRepo.On("FindEntryByID", s.ctx, "entry-1").Return(draft, nil).Once()
	s.mockPeriodSvc.On("CheckPostable", s.ctx, s.entryDate).Return(nil).Once()
	s.mockJournalRepo.On("UpdateEntryStatus", s.ctx, "entry-1", domain.Posted, (*string)(nil), "user-1", mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrPeriodClosed).Once()

	_, err := s.service.Post(s.ctx, "entry-1", "user-1")

	s.ErrorIs(err, apperrors.ErrPeriodClosed)
	s.mockJournalRepo.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestPostAlreadyPostedWithSourceIsNoOp() {
	posted := &domain.JournalEntry{
		EntryID: "entry-1",
		Status:  domain.Posted,
		Source:  domain.SourceRef{Type: "donation", ID: "don-42"},
	}

	s.mockJournalRepo.On("FindEntryByID", s.ctx, "entry-1").Return(posted, nil).Once()

	entry, err := s.service.Post(s.ctx, "entry-1", "user-1")

	s.Require().NoError(err)
	s.Equal("entry-1", entry.EntryID)
	s.mockJournalRepo.AssertNotCalled(s.T(), "UpdateEntryStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *LedgerServiceTestSuite) TestPostAlreadyPostedWithoutSource() {
	posted := &domain.JournalEntry{EntryID: "entry-1", Status: domain.Posted}

	s.mockJournalRepo.On("FindEntryByID", s.ctx, "entry-1").Return(posted, nil).Once()

	_, err := s.service.Post(s.ctx, "entry-1", "user-1")

	s.ErrorIs(err, services.ErrAlreadyPosted)
}

func (s *LedgerServiceTestSuite) TestPostReversedEntry() {
	reversed := &domain.JournalEntry{EntryID: "entry-1", Status: domain.Reversed}

	s.mockJournalRepo.On("FindEntryByID", s.ctx, "entry-1").Return(reversed, nil).Once()

	_, err := s.service.Post(s.ctx, "entry-1", "user-1")

	s.ErrorIs(err, services.ErrAlreadyPosted)
}

func (s *LedgerServiceTestSuite) TestReverseSwapsSides() {
	original := &domain.JournalEntry{
		EntryID:   "entry-1",
		EntryDate: s.entryDate,
		Narration: "Hundi collection",
		Status:    domain.Posted,
	}
	originalLines := []domain.JournalLine{
		{LineID: "l-1", EntryID: "entry-1", AccountCode: "11001", Side: domain.Debit, Amount: decimal.NewFromInt(500), Position: 0},
		{LineID: "l-2", EntryID: "entry-1", AccountCode: "41001", Side: domain.Credit, Amount: decimal.NewFromInt(500), Position: 1},
	}
	reversalDate := s.entryDate.AddDate(0, 0, 3)

	var savedReversal domain.JournalEntry
	var savedLines []domain.JournalLine

	s.mockJournalRepo.On("FindEntryByID", s.ctx, "entry-1").Return(original, nil).Once()
	s.mockPeriodSvc.On("CheckPostable", s.ctx, reversalDate).Return(nil).Once()
	s.mockJournalRepo.On("FindLinesByEntryID", s.ctx, "entry-1").Return(originalLines, nil).Once()
	s.mockJournalRepo.On("SaveReversal", s.ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine"), "entry-1").
		Run(func(args mock.Arguments) {
			savedReversal = args.Get(1).(domain.JournalEntry)
			savedLines = args.Get(2).([]domain.JournalLine)
		}).Return(nil).Once()

	reversal, err := s.service.Reverse(s.ctx, "entry-1", reversalDate, "data entry mistake", "user-1")

	s.Require().NoError(err)
	s.Equal(domain.Posted, reversal.Status)
	s.Require().NotNil(reversal.ReversesEntryID)
	s.Equal("entry-1", *reversal.ReversesEntryID)
	s.Equal(domain.SourceRef{Type: "reversal", ID: "entry-1"}, savedReversal.Source)
	s.Require().Len(savedLines, 2)
	s.Equal(domain.Credit, savedLines[0].Side)
	s.Equal("11001", savedLines[0].AccountCode)
	s.Equal(domain.Debit, savedLines[1].Side)
	s.True(savedLines[0].Amount.Equal(decimal.NewFromInt(500)))
	s.mockJournalRepo.AssertExpectations(s.T())
}

func (s *LedgerServiceTestSuite) TestReverseDraftEntry() {
	draft := &domain.JournalEntry{EntryID: "entry-1", Status: domain.Draft}

	s.mockJournalRepo.On("FindEntryByID", s.ctx, "entry-1").Return(draft, nil).Once()

	_, err := s.service.Reverse(s.ctx, "entry-1", s.entryDate, "mistake", "user-1")

	s.ErrorIs(err, services.ErrNotPosted)
}

func (s *LedgerServiceTestSuite) TestReverseOfReversalRefused() {
	originalID := "entry-0"
	reversal := &domain.JournalEntry{
		EntryID:         "entry-1",
		Status:          domain.Posted,
		ReversesEntryID: &originalID,
	}

	s.mockJournalRepo.On("FindEntryByID", s.ctx, "entry-1").Return(reversal, nil).Once()

	_, err := s.service.Reverse(s.ctx, "entry-1", s.entryDate, "mistake", "user-1")

	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *LedgerServiceTestSuite) TestReverseDuplicateReturnsExisting() {
	original := &domain.JournalEntry{
		EntryID:   "entry-1",
		EntryDate: s.entryDate,
		Status:    domain.Posted,
	}
	originalLines := []domain.JournalLine{
		{LineID: "l-1", EntryID: "entry-1", AccountCode: "11001", Side: domain.Debit, Amount: decimal.NewFromInt(500)},
		{LineID: "l-2", EntryID: "entry-1", AccountCode: "41001", Side: domain.Credit, Amount: decimal.NewFromInt(500)},
	}
	existing := &domain.JournalEntry{
		EntryID: "prior-reversal",
		Status:  domain.Posted,
		Source:  domain.SourceRef{Type: "reversal", ID: "entry-1"},
	}

	s.mockJournalRepo.On("FindEntryByID", s.ctx, "entry-1").Return(original, nil).Once()
	s.mockPeriodSvc.On("CheckPostable", s.ctx, mock.AnythingOfType("time.Time")).Return(nil).Once()
	s.mockJournalRepo.On("FindLinesByEntryID", s.ctx, "entry-1").Return(originalLines, nil).Once()
	s.mockJournalRepo.On("SaveReversal", s.ctx, mock.AnythingOfType("domain.JournalEntry"), mock.AnythingOfType("[]domain.JournalLine"), "entry-1").Return(apperrors.ErrDuplicate).Once()
	s.mockJournalRepo.On("FindEntryBySource", s.ctx, domain.SourceRef{Type: "reversal", ID: "entry-1"}).Return(existing, nil).Once()

	reversal, err := s.service.Reverse(s.ctx, "entry-1", s.entryDate.AddDate(0, 0, 1), "mistake", "user-1")

	s.Require().NoError(err)
	s.Equal("prior-reversal", reversal.EntryID)
}

func (s *LedgerServiceTestSuite) TestBalanceWithOpeningSnapshot() {
	asOf := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)
	period := &domain.FinancialPeriod{
		PeriodID:  "p-apr",
		Kind:      domain.Month,
		StartDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		Status:    domain.Open,
		OpeningBalances: map[string]decimal.Decimal{
			"11001": decimal.NewFromInt(1000),
		},
	}

	s.mockAccountSvc.On("GetAccountByCode", s.ctx, "11001").Return(&s.cashAccount, nil).Once()
	s.mockPeriodSvc.On("CurrentPeriod", s.ctx, asOf).Return(period, nil).Once()
	s.mockJournalRepo.On("SumPostedLines", s.ctx, "11001", period.StartDate, asOf).
		Return(decimal.NewFromInt(300), decimal.NewFromInt(100), nil).Once()

	balance, err := s.service.Balance(s.ctx, "11001", asOf)

	s.Require().NoError(err)
	s.True(balance.Equal(decimal.NewFromInt(1200)), "expected 1200, got %s", balance)
}

func (s *LedgerServiceTestSuite) TestBalanceWithoutPeriodSumsAllHistory() {
	asOf := time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)

	s.mockAccountSvc.On("GetAccountByCode", s.ctx, "41001").Return(&s.incomeAccount, nil).Once()
	s.mockPeriodSvc.On("CurrentPeriod", s.ctx, asOf).Return(nil, services.ErrNoPeriodDefined).Once()
	s.mockJournalRepo.On("SumPostedLines", s.ctx, "41001", time.Time{}, asOf).
		Return(decimal.NewFromInt(50), decimal.NewFromInt(750), nil).Once()

	balance, err := s.service.Balance(s.ctx, "41001", asOf)

	s.Require().NoError(err)
	// Credit-normal account: credits minus debits.
	s.True(balance.Equal(decimal.NewFromInt(700)), "expected 700, got %s", balance)
}

func (s *LedgerServiceTestSuite) TestTrialBalanceMergesOpeningSnapshot() {
	asOf := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	period := &domain.FinancialPeriod{
		PeriodID:  "p-apr",
		Kind:      domain.Month,
		StartDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   asOf,
		Status:    domain.Open,
		OpeningBalances: map[string]decimal.Decimal{
			"11001": decimal.NewFromInt(1000),
		},
	}
	movement := []domain.TrialBalanceRow{
		{AccountCode: "11001", AccountName: "Cash in Hand", Class: domain.Asset, Debit: decimal.NewFromInt(500), Credit: decimal.Zero},
		{AccountCode: "41001", AccountName: "Hundi Donations", Class: domain.Income, Debit: decimal.Zero, Credit: decimal.NewFromInt(500)},
	}

	s.mockPeriodSvc.On("CurrentPeriod", s.ctx, asOf).Return(period, nil).Once()
	s.mockJournalRepo.On("GetTrialBalanceData", s.ctx, period.StartDate, asOf).Return(movement, nil).Once()
	s.mockAccountSvc.On("GetAccountsByCodes", s.ctx, []string{}).Return(map[string]domain.Account{}, nil).Once()

	report, err := s.service.TrialBalance(s.ctx, asOf)

	s.Require().NoError(err)
	s.Require().Len(report.Rows, 2)
	// Opening lands on the cash account's debit side.
	s.Equal("11001", report.Rows[0].AccountCode)
	s.True(report.Rows[0].Debit.Equal(decimal.NewFromInt(1500)))
	s.True(report.TotalDebit.Equal(decimal.NewFromInt(1500)))
	s.True(report.TotalCredit.Equal(decimal.NewFromInt(500)))
}

func (s *LedgerServiceTestSuite) TestTrialBalanceCreatesRowForSnapshotOnlyAccount() {
	asOf := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	period := &domain.FinancialPeriod{
		PeriodID:  "p-apr",
		Kind:      domain.Month,
		StartDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   asOf,
		Status:    domain.Open,
		OpeningBalances: map[string]decimal.Decimal{
			"11001": decimal.NewFromInt(1000),
		},
	}

	s.mockPeriodSvc.On("CurrentPeriod", s.ctx, asOf).Return(period, nil).Once()
	s.mockJournalRepo.On("GetTrialBalanceData", s.ctx, period.StartDate, asOf).Return([]domain.TrialBalanceRow{}, nil).Once()
	s.mockAccountSvc.On("GetAccountsByCodes", s.ctx, []string{"11001"}).
		Return(map[string]domain.Account{"11001": s.cashAccount}, nil).Once()

	report, err := s.service.TrialBalance(s.ctx, asOf)

	s.Require().NoError(err)
	s.Require().Len(report.Rows, 1)
	s.Equal("11001", report.Rows[0].AccountCode)
	s.True(report.Rows[0].Debit.Equal(decimal.NewFromInt(1000)))
	s.True(report.Rows[0].Credit.IsZero())
}

func (s *LedgerServiceTestSuite) TestLedgerListingRunningBalance() {
	from := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	openingAsOf := from.AddDate(0, 0, -1)
	lines := []domain.JournalLine{
		{LineID: "l-1", EntryID: "e-1", AccountCode: "11001", Side: domain.Debit, Amount: decimal.NewFromInt(200), EntryDate: from.AddDate(0, 0, 4), Narration: "Hundi collection"},
		{LineID: "l-2", EntryID: "e-2", AccountCode: "11001", Side: domain.Credit, Amount: decimal.NewFromInt(50), EntryDate: from.AddDate(0, 0, 10), Narration: "Flower purchase"},
	}

	s.mockAccountSvc.On("GetAccountByCode", s.ctx, "11001").Return(&s.cashAccount, nil).Twice()
	s.mockPeriodSvc.On("CurrentPeriod", s.ctx, openingAsOf).Return(nil, services.ErrNoPeriodDefined).Once()
	s.mockJournalRepo.On("SumPostedLines", s.ctx, "11001", time.Time{}, openingAsOf).
		Return(decimal.NewFromInt(100), decimal.Zero, nil).Once()
	s.mockJournalRepo.On("ListPostedLines", s.ctx, "11001", from, to).Return(lines, nil).Once()

	listing, err := s.service.LedgerListing(s.ctx, "11001", from, to)

	s.Require().NoError(err)
	s.True(listing.OpeningBalance.Equal(decimal.NewFromInt(100)))
	s.Require().Len(listing.Rows, 2)
	s.True(listing.Rows[0].RunningBalance.Equal(decimal.NewFromInt(300)))
	s.True(listing.Rows[1].RunningBalance.Equal(decimal.NewFromInt(250)))
	s.True(listing.ClosingBalance.Equal(decimal.NewFromInt(250)))
	s.Equal("Flower purchase", listing.Rows[1].Narration)
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
