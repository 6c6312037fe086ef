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

type ReconciliationServiceTestSuite struct {
	suite.Suite
	mockReconRepo   *MockReconciliationRepository
	mockJournalRepo *MockJournalRepository
	mockAccountSvc  *MockAccountReaderSvc
	service         portssvc.ReconciliationSvcFacade
	ctx             context.Context

	bankAccount domain.Account
	cashAccount domain.Account
	stmtDate    time.Time
}

func (s *ReconciliationServiceTestSuite) SetupTest() {
	s.mockReconRepo = new(MockReconciliationRepository)
	s.mockJournalRepo = new(MockJournalRepository)
	s.mockAccountSvc = new(MockAccountReaderSvc)
	s.service = services.NewReconciliationService(s.mockReconRepo, s.mockJournalRepo, s.mockAccountSvc, 7)
	s.ctx = context.Background()

	s.bankAccount = domain.Account{
		Code:          "11002",
		Name:          "Canara Bank Current",
		Class:         domain.Asset,
		NormalBalance: domain.Debit,
		IsBankAccount: true,
		IsActive:      true,
	}
	s.cashAccount = domain.Account{
		Code:          "11001",
		Name:          "Cash in Hand",
		Class:         domain.Asset,
		NormalBalance: domain.Debit,
		IsActive:      true,
	}
	s.stmtDate = time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
}

func (s *ReconciliationServiceTestSuite) expectBankAccount() {
	s.mockAccountSvc.On("GetAccountByCode", s.ctx, "11002").Return(&s.bankAccount, nil).Once()
}

func (s *ReconciliationServiceTestSuite) statementLine(id string, amount int64, direction domain.BalanceSide) domain.BankStatementLine {
	return domain.BankStatementLine{
		StatementLineID: id,
		AccountCode:     "11002",
		StatementDate:   s.stmtDate,
		Amount:          decimal.NewFromInt(amount),
		Direction:       direction,
		ExternalRef:     "ref-" + id,
	}
}

func (s *ReconciliationServiceTestSuite) journalLine(id string, amount int64, side domain.BalanceSide, entryDate time.Time) domain.JournalLine {
	return domain.JournalLine{
		LineID:      id,
		EntryID:     "e-" + id,
		AccountCode: "11002",
		Side:        side,
		Amount:      decimal.NewFromInt(amount),
		EntryDate:   entryDate,
		EntryStatus: domain.Posted,
	}
}

func (s *ReconciliationServiceTestSuite) TestImportStatementLines() {
	req := dto.ImportStatementRequest{
		AccountCode: "11002",
		Lines: []dto.StatementLineRequest{
			{StatementDate: s.stmtDate, Amount: decimal.NewFromInt(500), Direction: domain.Debit, ExternalRef: "txn-1"},
			{StatementDate: s.stmtDate, Amount: decimal.NewFromInt(200), Direction: domain.Credit, ExternalRef: "txn-2"},
		},
	}

	s.expectBankAccount()
	s.mockReconRepo.On("SaveStatementLines", s.ctx, mock.AnythingOfType("[]domain.BankStatementLine")).Return(1, nil).Once()

	inserted, err := s.service.ImportStatementLines(s.ctx, req, "user-1")

	s.Require().NoError(err)
	s.Equal(1, inserted)
	s.mockReconRepo.AssertExpectations(s.T())
}

func (s *ReconciliationServiceTestSuite) TestImportRejectsNonBankAccount() {
	req := dto.ImportStatementRequest{AccountCode: "11001"}

	s.mockAccountSvc.On("GetAccountByCode", s.ctx, "11001").Return(&s.cashAccount, nil).Once()

	_, err := s.service.ImportStatementLines(s.ctx, req, "user-1")

	s.ErrorIs(err, services.ErrNotBankAccount)
	s.mockReconRepo.AssertNotCalled(s.T(), "SaveStatementLines", mock.Anything, mock.Anything)
}

func (s *ReconciliationServiceTestSuite) TestImportRejectsNonPositiveAmount() {
	req := dto.ImportStatementRequest{
		AccountCode: "11002",
		Lines: []dto.StatementLineRequest{
			{StatementDate: s.stmtDate, Amount: decimal.Zero, Direction: domain.Debit, ExternalRef: "txn-1"},
		},
	}

	s.expectBankAccount()

	_, err := s.service.ImportStatementLines(s.ctx, req, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ReconciliationServiceTestSuite) TestAutoMatchSingleCandidate() {
	stmtLines := []domain.BankStatementLine{s.statementLine("sl-1", 500, domain.Debit)}
	journalLines := []domain.JournalLine{s.journalLine("jl-1", 500, domain.Debit, s.stmtDate.AddDate(0, 0, 2))}

	s.expectBankAccount()
	s.mockReconRepo.On("ListUnmatchedStatementLines", s.ctx, "11002", mock.AnythingOfType("time.Time")).Return(stmtLines, nil).Once()
	s.mockReconRepo.On("ListUnmatchedJournalLines", s.ctx, "11002", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(journalLines, nil).Once()
	s.mockReconRepo.On("SaveMatch", s.ctx, mock.AnythingOfType("domain.ReconciliationMatch")).Return(nil).Once()

	result, err := s.service.AutoMatch(s.ctx, "11002", 0, "user-1")

	s.Require().NoError(err)
	s.Require().Len(result.Matches, 1)
	s.Equal("sl-1", result.Matches[0].StatementLineID)
	s.Equal("jl-1", result.Matches[0].JournalLineID)
	s.Equal(domain.MatchExact, result.Matches[0].Confidence)
	s.Empty(result.Ambiguous)
	s.Empty(result.Unmatched)
	s.mockReconRepo.AssertExpectations(s.T())
}

func (s *ReconciliationServiceTestSuite) TestAutoMatchAmbiguousLeftForManualReview() {
	stmtLines := []domain.BankStatementLine{s.statementLine("sl-1", 500, domain.Debit)}
	journalLines := []domain.JournalLine{
		s.journalLine("jl-1", 500, domain.Debit, s.stmtDate.AddDate(0, 0, 1)),
		s.journalLine("jl-2", 500, domain.Debit, s.stmtDate.AddDate(0, 0, 3)),
	}

	s.expectBankAccount()
	s.mockReconRepo.On("ListUnmatchedStatementLines", s.ctx, "11002", mock.AnythingOfType("time.Time")).Return(stmtLines, nil).Once()
	s.mockReconRepo.On("ListUnmatchedJournalLines", s.ctx, "11002", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(journalLines, nil).Once()

	result, err := s.service.AutoMatch(s.ctx, "11002", 7, "user-1")

	s.Require().NoError(err)
	s.Empty(result.Matches)
	s.Equal([]string{"sl-1"}, result.Ambiguous)
	s.mockReconRepo.AssertNotCalled(s.T(), "SaveMatch", mock.Anything, mock.Anything)
}

func (s *ReconciliationServiceTestSuite) TestAutoMatchRespectsWindow() {
	stmtLines := []domain.BankStatementLine{s.statementLine("sl-1", 500, domain.Debit)}
	// Same amount and direction but ten days out.
	journalLines := []domain.JournalLine{s.journalLine("jl-1", 500, domain.Debit, s.stmtDate.AddDate(0, 0, 10))}

	s.expectBankAccount()
	s.mockReconRepo.On("ListUnmatchedStatementLines", s.ctx, "11002", mock.AnythingOfType("time.Time")).Return(stmtLines, nil).Once()
	s.mockReconRepo.On("ListUnmatchedJournalLines", s.ctx, "11002", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(journalLines, nil).Once()

	result, err := s.service.AutoMatch(s.ctx, "11002", 7, "user-1")

	s.Require().NoError(err)
	s.Empty(result.Matches)
	s.Equal([]string{"sl-1"}, result.Unmatched)
}

func (s *ReconciliationServiceTestSuite) TestAutoMatchDirectionMustAgree() {
	stmtLines := []domain.BankStatementLine{s.statementLine("sl-1", 500, domain.Debit)}
	journalLines := []domain.JournalLine{s.journalLine("jl-1", 500, domain.Credit, s.stmtDate)}

	s.expectBankAccount()
	s.mockReconRepo.On("ListUnmatchedStatementLines", s.ctx, "11002", mock.AnythingOfType("time.Time")).Return(stmtLines, nil).Once()
	s.mockReconRepo.On("ListUnmatchedJournalLines", s.ctx, "11002", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(journalLines, nil).Once()

	result, err := s.service.AutoMatch(s.ctx, "11002", 7, "user-1")

	s.Require().NoError(err)
	s.Empty(result.Matches)
	s.Equal([]string{"sl-1"}, result.Unmatched)
}

func (s *ReconciliationServiceTestSuite) TestAutoMatchClaimedLineNotReused() {
	stmtLines := []domain.BankStatementLine{
		s.statementLine("sl-1", 500, domain.Debit),
		s.statementLine("sl-2", 500, domain.Debit),
	}
	// One candidate for two statement lines: first claims it, second goes unmatched.
	journalLines := []domain.JournalLine{s.journalLine("jl-1", 500, domain.Debit, s.stmtDate)}

	s.expectBankAccount()
	s.mockReconRepo.On("ListUnmatchedStatementLines", s.ctx, "11002", mock.AnythingOfType("time.Time")).Return(stmtLines, nil).Once()
	s.mockReconRepo.On("ListUnmatchedJournalLines", s.ctx, "11002", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(journalLines, nil).Once()
	s.mockReconRepo.On("SaveMatch", s.ctx, mock.AnythingOfType("domain.ReconciliationMatch")).Return(nil).Once()

	result, err := s.service.AutoMatch(s.ctx, "11002", 7, "user-1")

	s.Require().NoError(err)
	s.Require().Len(result.Matches, 1)
	s.Equal("sl-1", result.Matches[0].StatementLineID)
	s.Equal([]string{"sl-2"}, result.Unmatched)
}

func (s *ReconciliationServiceTestSuite) TestAutoMatchConcurrentClaimFallsBackToUnmatched() {
	stmtLines := []domain.BankStatementLine{s.statementLine("sl-1", 500, domain.Debit)}
	journalLines := []domain.JournalLine{s.journalLine("jl-1", 500, domain.Debit, s.stmtDate)}

	s.expectBankAccount()
	s.mockReconRepo.On("ListUnmatchedStatementLines", s.ctx, "11002", mock.AnythingOfType("time.Time")).Return(stmtLines, nil).Once()
	s.mockReconRepo.On("ListUnmatchedJournalLines", s.ctx, "11002", mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).Return(journalLines, nil).Once()
	s.mockReconRepo.On("SaveMatch", s.ctx, mock.AnythingOfType("domain.ReconciliationMatch")).Return(apperrors.ErrDuplicate).Once()

	result, err := s.service.AutoMatch(s.ctx, "11002", 7, "user-1")

	s.Require().NoError(err)
	s.Empty(result.Matches)
	s.Equal([]string{"sl-1"}, result.Unmatched)
}

func (s *ReconciliationServiceTestSuite) TestManualMatchFlagsAmountMismatch() {
	stmtLine := s.statementLine("sl-1", 500, domain.Debit)
	target := s.journalLine("jl-1", 480, domain.Debit, s.stmtDate)

	s.mockReconRepo.On("FindStatementLineByID", s.ctx, "sl-1").Return(&stmtLine, nil).Once()
	s.mockJournalRepo.On("FindLineByID", s.ctx, "jl-1").Return(&target, nil).Once()

	var saved domain.ReconciliationMatch
	s.mockReconRepo.On("SaveMatch", s.ctx, mock.AnythingOfType("domain.ReconciliationMatch")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.ReconciliationMatch)
		}).Return(nil).Once()

	match, err := s.service.ManualMatch(s.ctx, "sl-1", "jl-1", "user-1")

	s.Require().NoError(err)
	s.Equal(domain.MatchManual, match.Confidence)
	s.True(match.AmountMismatch)
	s.True(saved.AmountMismatch)
}

func (s *ReconciliationServiceTestSuite) TestManualMatchEqualAmountsNotFlagged() {
	stmtLine := s.statementLine("sl-1", 500, domain.Debit)
	target := s.journalLine("jl-1", 500, domain.Debit, s.stmtDate)

	s.mockReconRepo.On("FindStatementLineByID", s.ctx, "sl-1").Return(&stmtLine, nil).Once()
	s.mockJournalRepo.On("FindLineByID", s.ctx, "jl-1").Return(&target, nil).Once()
	s.mockReconRepo.On("SaveMatch", s.ctx, mock.AnythingOfType("domain.ReconciliationMatch")).Return(nil).Once()

	match, err := s.service.ManualMatch(s.ctx, "sl-1", "jl-1", "user-1")

	s.Require().NoError(err)
	s.False(match.AmountMismatch)
}

func (s *ReconciliationServiceTestSuite) TestManualMatchRejectsOtherAccount() {
	stmtLine := s.statementLine("sl-1", 500, domain.Debit)
	target := s.journalLine("jl-1", 500, domain.Debit, s.stmtDate)
	target.AccountCode = "11001"

	s.mockReconRepo.On("FindStatementLineByID", s.ctx, "sl-1").Return(&stmtLine, nil).Once()
	s.mockJournalRepo.On("FindLineByID", s.ctx, "jl-1").Return(&target, nil).Once()

	_, err := s.service.ManualMatch(s.ctx, "sl-1", "jl-1", "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockReconRepo.AssertNotCalled(s.T(), "SaveMatch", mock.Anything, mock.Anything)
}

func (s *ReconciliationServiceTestSuite) TestManualMatchRejectsReversedEntry() {
	stmtLine := s.statementLine("sl-1", 500, domain.Debit)
	target := s.journalLine("jl-1", 500, domain.Debit, s.stmtDate)
	target.EntryStatus = domain.Reversed

	s.mockReconRepo.On("FindStatementLineByID", s.ctx, "sl-1").Return(&stmtLine, nil).Once()
	s.mockJournalRepo.On("FindLineByID", s.ctx, "jl-1").Return(&target, nil).Once()

	_, err := s.service.ManualMatch(s.ctx, "sl-1", "jl-1", "user-1")

	s.ErrorIs(err, services.ErrMatchedReversed)
}

func (s *ReconciliationServiceTestSuite) TestManualMatchRejectsDraftEntry() {
	stmtLine := s.statementLine("sl-1", 500, domain.Debit)
	target := s.journalLine("jl-1", 500, domain.Debit, s.stmtDate)
	target.EntryStatus = domain.Draft

	s.mockReconRepo.On("FindStatementLineByID", s.ctx, "sl-1").Return(&stmtLine, nil).Once()
	s.mockJournalRepo.On("FindLineByID", s.ctx, "jl-1").Return(&target, nil).Once()

	_, err := s.service.ManualMatch(s.ctx, "sl-1", "jl-1", "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ReconciliationServiceTestSuite) TestManualMatchAlreadyMatched() {
	stmtLine := s.statementLine("sl-1", 500, domain.Debit)
	target := s.journalLine("jl-1", 500, domain.Debit, s.stmtDate)

	s.mockReconRepo.On("FindStatementLineByID", s.ctx, "sl-1").Return(&stmtLine, nil).Once()
	s.mockJournalRepo.On("FindLineByID", s.ctx, "jl-1").Return(&target, nil).Once()
	s.mockReconRepo.On("SaveMatch", s.ctx, mock.AnythingOfType("domain.ReconciliationMatch")).Return(apperrors.ErrDuplicate).Once()

	_, err := s.service.ManualMatch(s.ctx, "sl-1", "jl-1", "user-1")

	s.ErrorIs(err, services.ErrAlreadyMatched)
}

func (s *ReconciliationServiceTestSuite) TestUnmatch() {
	s.mockReconRepo.On("DeleteMatch", s.ctx, "m-1").Return(nil).Once()

	err := s.service.Unmatch(s.ctx, "m-1", "user-1")

	s.NoError(err)
}

func (s *ReconciliationServiceTestSuite) TestUnmatchMissing() {
	s.mockReconRepo.On("DeleteMatch", s.ctx, "m-1").Return(apperrors.ErrNotFound).Once()

	err := s.service.Unmatch(s.ctx, "m-1", "user-1")

	s.ErrorIs(err, services.ErrLineNotMatched)
}

func (s *ReconciliationServiceTestSuite) TestOutstanding() {
	asOf := time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC)
	stmtLines := []domain.BankStatementLine{s.statementLine("sl-1", 500, domain.Debit)}
	journalLines := []domain.JournalLine{s.journalLine("jl-1", 200, domain.Credit, s.stmtDate)}
	inconsistent := []domain.ReconciliationMatch{{MatchID: "m-1", Inconsistent: true}}

	s.expectBankAccount()
	s.mockReconRepo.On("ListUnmatchedStatementLines", s.ctx, "11002", asOf).Return(stmtLines, nil).Once()
	s.mockReconRepo.On("ListUnmatchedJournalLines", s.ctx, "11002", time.Time{}, asOf).Return(journalLines, nil).Once()
	s.mockReconRepo.On("ListInconsistentMatches", s.ctx, "11002", asOf).Return(inconsistent, nil).Once()

	items, err := s.service.Outstanding(s.ctx, "11002", asOf)

	s.Require().NoError(err)
	s.Len(items.StatementLines, 1)
	s.Len(items.JournalLines, 1)
	s.Len(items.InconsistentMatches, 1)
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}
