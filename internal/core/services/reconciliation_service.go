package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/templetrust/templeledger/internal/apperrors"
	"github.com/templetrust/templeledger/internal/core/domain"
	portsrepo "github.com/templetrust/templeledger/internal/core/ports/repositories"
	portssvc "github.com/templetrust/templeledger/internal/core/ports/services"
	"github.com/templetrust/templeledger/internal/dto"
)

var (
	ErrNotBankAccount  = errors.New("account is not flagged as a bank account")
	ErrAlreadyMatched  = errors.New("line is already matched")
	ErrAmbiguousMatch  = errors.New("more than one candidate matches")
	ErrLineNotMatched  = errors.New("match not found")
	ErrMatchedReversed = errors.New("journal line belongs to a reversed entry")
)

// reconciliationService matches imported bank statement lines against posted
// bank-account journal lines. It only ever writes match metadata; the ledger
// itself is untouched.
type reconciliationService struct {
	BaseService
	reconRepo   portsrepo.ReconciliationRepositoryFacade
	journalRepo portsrepo.JournalReader
	accountSvc  portssvc.ChartOfAccountsReaderSvc

	defaultWindowDays int
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(reconRepo portsrepo.ReconciliationRepositoryFacade, journalRepo portsrepo.JournalReader, accountSvc portssvc.ChartOfAccountsReaderSvc, defaultWindowDays int) portssvc.ReconciliationSvcFacade {
	return &reconciliationService{
		reconRepo:         reconRepo,
		journalRepo:       journalRepo,
		accountSvc:        accountSvc,
		defaultWindowDays: defaultWindowDays,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*reconciliationService)(nil)

func (s *reconciliationService) requireBankAccount(ctx context.Context, accountCode string) (*domain.Account, error) {
	account, err := s.accountSvc.GetAccountByCode(ctx, accountCode)
	if err != nil {
		return nil, err
	}
	if !account.IsBankAccount {
		return nil, fmt.Errorf("%w: %s", ErrNotBankAccount, accountCode)
	}
	return account, nil
}

// ImportStatementLines stores a batch of statement lines. Lines whose external
// reference was imported before are skipped; the count of new lines is returned.
func (s *reconciliationService) ImportStatementLines(ctx context.Context, req dto.ImportStatementRequest, actorID string) (int, error) {
	if _, err := s.requireBankAccount(ctx, req.AccountCode); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}

	lines := make([]domain.BankStatementLine, len(req.Lines))
	for i, l := range req.Lines {
		if l.Amount.LessThanOrEqual(decimal.Zero) {
			return 0, fmt.Errorf("%w: statement amount must be positive (%s)", apperrors.ErrValidation, l.ExternalRef)
		}
		lines[i] = domain.BankStatementLine{
			StatementLineID: uuid.NewString(),
			AccountCode:     req.AccountCode,
			StatementDate:   l.StatementDate,
			Amount:          l.Amount,
			Direction:       l.Direction,
			Description:     l.Description,
			ExternalRef:     l.ExternalRef,
			AuditFields:     audit,
		}
	}

	inserted, err := s.reconRepo.SaveStatementLines(ctx, lines)
	if err != nil {
		s.LogError(ctx, err, "Failed to import statement lines", slog.String("account", req.AccountCode))
		return 0, fmt.Errorf("failed to import statement lines: %w", err)
	}

	s.LogInfo(ctx, "Statement lines imported",
		slog.String("account", req.AccountCode),
		slog.Int("received", len(lines)), slog.Int("new", inserted))
	return inserted, nil
}

// candidateKey buckets journal lines by the values an automatic match must
// agree on exactly.
type candidateKey struct {
	amount    string
	direction domain.BalanceSide
}

// AutoMatch pairs unmatched statement lines with unmatched journal lines of
// identical amount and direction whose entry date lies within windowDays of
// the statement date. A single candidate becomes an Exact match; several
// candidates leave the line for manual resolution. The run is deterministic:
// both sides are processed in date-then-ID order.
func (s *reconciliationService) AutoMatch(ctx context.Context, accountCode string, windowDays int, actorID string) (*domain.AutoMatchResult, error) {
	if _, err := s.requireBankAccount(ctx, accountCode); err != nil {
		return nil, err
	}
	if windowDays <= 0 {
		windowDays = s.defaultWindowDays
	}

	now := time.Now().UTC()
	stmtLines, err := s.reconRepo.ListUnmatchedStatementLines(ctx, accountCode, now)
	if err != nil {
		s.LogError(ctx, err, "Failed to list unmatched statement lines", slog.String("account", accountCode))
		return nil, fmt.Errorf("failed to list unmatched statement lines: %w", err)
	}

	result := &domain.AutoMatchResult{
		Matches:   make([]domain.ReconciliationMatch, 0),
		Ambiguous: make([]string, 0),
		Unmatched: make([]string, 0),
	}
	if len(stmtLines) == 0 {
		return result, nil
	}

	// One journal fetch spanning every statement line's window.
	from := stmtLines[0].StatementDate.AddDate(0, 0, -windowDays)
	to := stmtLines[0].StatementDate.AddDate(0, 0, windowDays)
	for _, sl := range stmtLines[1:] {
		if f := sl.StatementDate.AddDate(0, 0, -windowDays); f.Before(from) {
			from = f
		}
		if t := sl.StatementDate.AddDate(0, 0, windowDays); t.After(to) {
			to = t
		}
	}
	journalLines, err := s.reconRepo.ListUnmatchedJournalLines(ctx, accountCode, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to list unmatched journal lines", slog.String("account", accountCode))
		return nil, fmt.Errorf("failed to list unmatched journal lines: %w", err)
	}

	byKey := make(map[candidateKey][]domain.JournalLine)
	for _, jl := range journalLines {
		key := candidateKey{amount: jl.Amount.String(), direction: jl.Side}
		byKey[key] = append(byKey[key], jl)
	}
	claimed := make(map[string]bool, len(journalLines))

	for _, sl := range stmtLines {
		key := candidateKey{amount: sl.Amount.String(), direction: sl.Direction}
		windowFrom := sl.StatementDate.AddDate(0, 0, -windowDays)
		windowTo := sl.StatementDate.AddDate(0, 0, windowDays)

		candidates := make([]domain.JournalLine, 0, 1)
		for _, jl := range byKey[key] {
			if claimed[jl.LineID] {
				continue
			}
			if jl.EntryDate.Before(windowFrom) || jl.EntryDate.After(windowTo) {
				continue
			}
			candidates = append(candidates, jl)
		}

		switch len(candidates) {
		case 0:
			result.Unmatched = append(result.Unmatched, sl.StatementLineID)
		case 1:
			match := domain.ReconciliationMatch{
				MatchID:         uuid.NewString(),
				StatementLineID: sl.StatementLineID,
				JournalLineID:   candidates[0].LineID,
				Confidence:      domain.MatchExact,
				MatchedAt:       now,
			}
			if err := s.reconRepo.SaveMatch(ctx, match); err != nil {
				if errors.Is(err, apperrors.ErrDuplicate) {
					// A concurrent run claimed one of the sides first.
					result.Unmatched = append(result.Unmatched, sl.StatementLineID)
					continue
				}
				s.LogError(ctx, err, "Failed to save match", slog.String("statement_line_id", sl.StatementLineID))
				return nil, fmt.Errorf("failed to save match: %w", err)
			}
			claimed[candidates[0].LineID] = true
			result.Matches = append(result.Matches, match)
		default:
			result.Ambiguous = append(result.Ambiguous, sl.StatementLineID)
		}
	}

	s.LogInfo(ctx, "Automatic matching completed",
		slog.String("account", accountCode),
		slog.Int("matched", len(result.Matches)),
		slog.Int("ambiguous", len(result.Ambiguous)),
		slog.Int("unmatched", len(result.Unmatched)))
	return result, nil
}

// ManualMatch links a statement line to a journal line by hand. The two may
// carry different amounts; such matches are flagged rather than refused.
func (s *reconciliationService) ManualMatch(ctx context.Context, statementLineID, journalLineID string, actorID string) (*domain.ReconciliationMatch, error) {
	stmtLine, err := s.reconRepo.FindStatementLineByID(ctx, statementLineID)
	if err != nil {
		return nil, fmt.Errorf("failed to find statement line %s: %w", statementLineID, err)
	}

	target, err := s.journalRepo.FindLineByID(ctx, journalLineID)
	if err != nil {
		return nil, fmt.Errorf("failed to find journal line %s: %w", journalLineID, err)
	}
	if target.AccountCode != stmtLine.AccountCode {
		return nil, fmt.Errorf("%w: journal line %s is on account %s, statement line is on %s",
			apperrors.ErrValidation, journalLineID, target.AccountCode, stmtLine.AccountCode)
	}
	switch target.EntryStatus {
	case domain.Reversed:
		return nil, fmt.Errorf("%w: %s", ErrMatchedReversed, journalLineID)
	case domain.Draft:
		return nil, fmt.Errorf("%w: journal line %s is not posted", apperrors.ErrValidation, journalLineID)
	}

	match := domain.ReconciliationMatch{
		MatchID:         uuid.NewString(),
		StatementLineID: statementLineID,
		JournalLineID:   journalLineID,
		Confidence:      domain.MatchManual,
		AmountMismatch:  !stmtLine.Amount.Equal(target.Amount) || stmtLine.Direction != target.Side,
		MatchedAt:       time.Now().UTC(),
	}

	if err := s.reconRepo.SaveMatch(ctx, match); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: statement line %s or journal line %s", ErrAlreadyMatched, statementLineID, journalLineID)
		}
		s.LogError(ctx, err, "Failed to save manual match", slog.String("statement_line_id", statementLineID))
		return nil, fmt.Errorf("failed to save manual match: %w", err)
	}

	s.LogInfo(ctx, "Manual match recorded",
		slog.String("match_id", match.MatchID),
		slog.Bool("amount_mismatch", match.AmountMismatch))
	return &match, nil
}

// Unmatch removes a match, returning both lines to the unmatched pool.
func (s *reconciliationService) Unmatch(ctx context.Context, matchID string, actorID string) error {
	if err := s.reconRepo.DeleteMatch(ctx, matchID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrLineNotMatched, matchID)
		}
		s.LogError(ctx, err, "Failed to delete match", slog.String("match_id", matchID))
		return fmt.Errorf("failed to delete match %s: %w", matchID, err)
	}
	s.LogInfo(ctx, "Match removed", slog.String("match_id", matchID))
	return nil
}

// Outstanding returns both unreconciled sides as of a date, plus matches whose
// journal entry was reversed after the match was recorded. Those matches are
// reported, never silently deleted.
func (s *reconciliationService) Outstanding(ctx context.Context, accountCode string, asOf time.Time) (*domain.OutstandingItems, error) {
	if _, err := s.requireBankAccount(ctx, accountCode); err != nil {
		return nil, err
	}

	stmtLines, err := s.reconRepo.ListUnmatchedStatementLines(ctx, accountCode, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to list unmatched statement lines", slog.String("account", accountCode))
		return nil, fmt.Errorf("failed to list unmatched statement lines: %w", err)
	}
	journalLines, err := s.reconRepo.ListUnmatchedJournalLines(ctx, accountCode, time.Time{}, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to list unmatched journal lines", slog.String("account", accountCode))
		return nil, fmt.Errorf("failed to list unmatched journal lines: %w", err)
	}
	inconsistent, err := s.reconRepo.ListInconsistentMatches(ctx, accountCode, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to list inconsistent matches", slog.String("account", accountCode))
		return nil, fmt.Errorf("failed to list inconsistent matches: %w", err)
	}

	return &domain.OutstandingItems{
		StatementLines:      stmtLines,
		JournalLines:        journalLines,
		InconsistentMatches: inconsistent,
	}, nil
}
