package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/shopspring/decimal"

	"github.com/templetrust/templeledger/internal/apperrors"
	"github.com/templetrust/templeledger/internal/core/domain"
	portsrepo "github.com/templetrust/templeledger/internal/core/ports/repositories"
	portssvc "github.com/templetrust/templeledger/internal/core/ports/services"
	"github.com/templetrust/templeledger/internal/utils/accounting"
)

var (
	ErrAlreadyClosed    = errors.New("period is already closed")
	ErrUnbalancedPeriod = errors.New("period ledger does not balance, close refused")
	ErrNoPeriodDefined  = errors.New("no financial period defined for date")
)

const closeEvent = "close"

// newPeriodFSM builds the period lifecycle machine. Closed is terminal;
// corrections happen via reversal entries in open periods.
func newPeriodFSM(status domain.PeriodStatus) *fsm.FSM {
	return fsm.NewFSM(
		string(status),
		fsm.Events{
			{Name: closeEvent, Src: []string{string(domain.Open)}, Dst: string(domain.Closed)},
		},
		fsm.Callbacks{},
	)
}

// periodService manages financial-period setup, locking and closing.
type periodService struct {
	BaseService
	periodRepo  portsrepo.PeriodRepositoryFacade
	journalRepo portsrepo.BalanceReader
	accountSvc  portssvc.ChartOfAccountsReaderSvc

	// Equity account receiving the year-end income/expense net.
	retainedSurplusAccount string
}

// NewPeriodService creates a new PeriodService.
func NewPeriodService(periodRepo portsrepo.PeriodRepositoryFacade, journalRepo portsrepo.BalanceReader, accountSvc portssvc.ChartOfAccountsReaderSvc, retainedSurplusAccount string) portssvc.PeriodSvcFacade {
	return &periodService{
		periodRepo:             periodRepo,
		journalRepo:            journalRepo,
		accountSvc:             accountSvc,
		retainedSurplusAccount: retainedSurplusAccount,
	}
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

// SetupFinancialYear creates twelve contiguous month periods plus the
// enclosing year period. Overlaps with existing periods are rejected whole.
func (s *periodService) SetupFinancialYear(ctx context.Context, startDate time.Time, actorID string) ([]domain.FinancialPeriod, error) {
	start := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, time.UTC)
	if start.Day() != 1 {
		return nil, fmt.Errorf("%w: financial year must start on the first of a month", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}

	periods := make([]domain.FinancialPeriod, 0, 13)
	for i := 0; i < 12; i++ {
		monthStart := start.AddDate(0, i, 0)
		periods = append(periods, domain.FinancialPeriod{
			PeriodID:    uuid.NewString(),
			Kind:        domain.Month,
			StartDate:   monthStart,
			EndDate:     monthStart.AddDate(0, 1, -1),
			Status:      domain.Open,
			AuditFields: audit,
		})
	}
	periods = append(periods, domain.FinancialPeriod{
		PeriodID:    uuid.NewString(),
		Kind:        domain.Year,
		StartDate:   start,
		EndDate:     start.AddDate(1, 0, -1),
		Status:      domain.Open,
		AuditFields: audit,
	})

	if err := s.periodRepo.SavePeriods(ctx, periods); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("%w: financial year overlaps existing periods", apperrors.ErrDuplicate)
		}
		s.LogError(ctx, err, "Failed to save financial year periods")
		return nil, fmt.Errorf("failed to save periods: %w", err)
	}

	s.LogInfo(ctx, "Financial year created",
		slog.Time("start", start), slog.Int("periods", len(periods)))
	return periods, nil
}

// CurrentPeriod returns the month period containing the date.
func (s *periodService) CurrentPeriod(ctx context.Context, date time.Time) (*domain.FinancialPeriod, error) {
	period, err := s.periodRepo.FindPeriodForDate(ctx, date, domain.Month)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNoPeriodDefined, date.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("failed to find period for date: %w", err)
	}
	return period, nil
}

// GetPeriod retrieves one period with its opening snapshot.
func (s *periodService) GetPeriod(ctx context.Context, periodID string) (*domain.FinancialPeriod, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to find period %s: %w", periodID, err)
	}
	return period, nil
}

// ListPeriods lists periods ordered by start date.
func (s *periodService) ListPeriods(ctx context.Context, kind *domain.PeriodKind) ([]domain.FinancialPeriod, error) {
	periods, err := s.periodRepo.ListPeriods(ctx, kind)
	if err != nil {
		s.LogError(ctx, err, "Failed to list periods")
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	return periods, nil
}

// CheckPostable returns ErrPeriodClosed when the date falls inside a closed
// month or year period. Dates covered by no period remain postable.
func (s *periodService) CheckPostable(ctx context.Context, date time.Time) error {
	for _, kind := range []domain.PeriodKind{domain.Month, domain.Year} {
		period, err := s.periodRepo.FindPeriodForDate(ctx, date, kind)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return fmt.Errorf("failed to check period lock: %w", err)
		}
		if period.Status == domain.Closed {
			return fmt.Errorf("%w: %s falls in closed period %s", apperrors.ErrPeriodClosed, date.Format("2006-01-02"), period.PeriodID)
		}
	}
	return nil
}

// closingBalances computes each account's signed closing balance for the
// period, opening carry-forward included, and verifies the period's movement
// balances. The map carries classes alongside via the returned account index.
func (s *periodService) closingBalances(ctx context.Context, period *domain.FinancialPeriod) (map[string]decimal.Decimal, map[string]domain.Account, error) {
	rows, err := s.journalRepo.GetTrialBalanceData(ctx, period.StartDate, period.EndDate)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to retrieve period movement: %w", err)
	}

	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, row := range rows {
		totalDebit = totalDebit.Add(row.Debit)
		totalCredit = totalCredit.Add(row.Credit)
	}
	if !totalDebit.Equal(totalCredit) {
		return nil, nil, fmt.Errorf("%w: debits %s, credits %s", ErrUnbalancedPeriod, totalDebit.String(), totalCredit.String())
	}

	closing := make(map[string]decimal.Decimal, len(rows)+len(period.OpeningBalances))
	for code, opening := range period.OpeningBalances {
		closing[code] = opening
	}
	codes := make([]string, 0, len(closing)+len(rows))
	for code := range closing {
		codes = append(codes, code)
	}
	for _, row := range rows {
		codes = append(codes, row.AccountCode)
	}

	accounts, err := s.accountSvc.GetAccountsByCodes(ctx, uniqueStrings(codes))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve accounts for close: %w", err)
	}

	for _, row := range rows {
		acc, ok := accounts[row.AccountCode]
		if !ok {
			return nil, nil, fmt.Errorf("%w: movement references unknown account %s", apperrors.ErrInternal, row.AccountCode)
		}
		movement := row.Debit.Sub(row.Credit)
		if acc.NormalBalance == domain.Credit {
			movement = row.Credit.Sub(row.Debit)
		}
		closing[row.AccountCode] = closing[row.AccountCode].Add(movement)
	}

	return closing, accounts, nil
}

// buildClosingEntry constructs the year-end zeroing entry: every income and
// expense balance is brought to zero against the retained surplus account.
// Returns nil when there is nothing to zero.
func (s *periodService) buildClosingEntry(period *domain.FinancialPeriod, closing map[string]decimal.Decimal, accounts map[string]domain.Account, actorID string, now time.Time) (*domain.JournalEntry, []domain.JournalLine) {
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}
	entryID := uuid.NewString()

	lines := make([]domain.JournalLine, 0)
	appendLine := func(code string, side domain.BalanceSide, amount decimal.Decimal) {
		lines = append(lines, domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountCode: code,
			Side:        side,
			Amount:      amount,
			Position:    len(lines),
			AuditFields: audit,
		})
	}

	for _, code := range sortedKeys(closing) {
		acc, ok := accounts[code]
		if !ok || (acc.Class != domain.Income && acc.Class != domain.Expense) {
			continue
		}
		bal := closing[code]
		if bal.IsZero() {
			continue
		}
		// A positive balance sits on the normal side; zero it from the other.
		side := domain.Debit
		if acc.NormalBalance == domain.Debit {
			side = domain.Credit
		}
		amount := bal
		if bal.IsNegative() {
			amount = bal.Neg()
			if side == domain.Debit {
				side = domain.Credit
			} else {
				side = domain.Debit
			}
		}
		appendLine(code, side, amount)
	}

	if len(lines) == 0 {
		return nil, nil
	}

	// Net surplus or deficit lands on retained surplus.
	totalDebit, totalCredit := accounting.SumSides(lines)
	if delta := totalDebit.Sub(totalCredit); delta.IsPositive() {
		appendLine(s.retainedSurplusAccount, domain.Credit, delta)
	} else if delta.IsNegative() {
		appendLine(s.retainedSurplusAccount, domain.Debit, delta.Neg())
	}

	entry := &domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   period.EndDate,
		Narration:   fmt.Sprintf("Year-end closing for period %s", period.PeriodID),
		Status:      domain.Posted,
		Source:      domain.SourceRef{Type: "period_close", ID: period.PeriodID},
		AuditFields: audit,
	}
	return entry, lines
}

// Close locks the period. For year periods it also posts the zeroing entry
// that transfers the income/expense net to retained surplus. The closing
// balances are computed by the repository's prepare callback, inside the
// close transaction after the period row is locked, so a post racing the
// close is either included in the snapshot or refused.
func (s *periodService) Close(ctx context.Context, periodID string, closingDate time.Time, actorID string) (*domain.ClosingResult, error) {
	period, err := s.periodRepo.FindPeriodByID(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to find period %s: %w", periodID, err)
	}

	machine := newPeriodFSM(period.Status)
	if err := machine.Event(ctx, closeEvent); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyClosed, periodID)
	}

	if closingDate.Before(period.EndDate) {
		return nil, fmt.Errorf("%w: period runs until %s", apperrors.ErrValidation, period.EndDate.Format("2006-01-02"))
	}

	now := time.Now().UTC()
	var result *domain.ClosingResult

	prepare := func(ctx context.Context) (*domain.PeriodCloseData, error) {
		closing, accounts, err := s.closingBalances(ctx, period)
		if err != nil {
			s.LogError(ctx, err, "Failed to compute closing balances", slog.String("period_id", periodID))
			return nil, err
		}

		var (
			closingEntry *domain.JournalEntry
			closingLines []domain.JournalLine
		)
		if period.Kind == domain.Year {
			closingEntry, closingLines = s.buildClosingEntry(period, closing, accounts, actorID, now)
		}

		// Snapshot carries the post-closing balances forward.
		snapshot := make(map[string]decimal.Decimal, len(closing))
		for code, bal := range closing {
			snapshot[code] = bal
		}
		if closingEntry != nil {
			net := decimal.Zero
			for code, bal := range snapshot {
				acc, ok := accounts[code]
				if !ok {
					continue
				}
				if acc.Class == domain.Income {
					net = net.Add(bal)
					snapshot[code] = decimal.Zero
				} else if acc.Class == domain.Expense {
					net = net.Sub(bal)
					snapshot[code] = decimal.Zero
				}
			}
			snapshot[s.retainedSurplusAccount] = snapshot[s.retainedSurplusAccount].Add(net)
		}
		for code, bal := range snapshot {
			if bal.IsZero() {
				delete(snapshot, code)
			}
		}

		data := &domain.PeriodCloseData{
			ClosingEntry: closingEntry,
			ClosingLines: closingLines,
			Snapshots:    make(map[string]map[string]decimal.Decimal),
		}

		nextPeriodID := ""
		next, err := s.periodRepo.FindFollowingPeriod(ctx, *period)
		switch {
		case err == nil:
			nextPeriodID = next.PeriodID
			data.Snapshots[next.PeriodID] = snapshot
		case errors.Is(err, apperrors.ErrNotFound):
			s.LogWarn(ctx, "No following period defined, skipping carry-forward",
				slog.String("period_id", periodID))
		default:
			return nil, fmt.Errorf("failed to find following period: %w", err)
		}

		// A year close must also rewrite the first month of the new year:
		// that month's snapshot was written by the March close with income
		// and expense still in it, and balance reads go through month
		// snapshots.
		if period.Kind == domain.Year {
			lookup := *period
			lookup.Kind = domain.Month
			nextMonth, err := s.periodRepo.FindFollowingPeriod(ctx, lookup)
			switch {
			case err == nil:
				data.Snapshots[nextMonth.PeriodID] = snapshot
			case errors.Is(err, apperrors.ErrNotFound):
				s.LogWarn(ctx, "No month period follows the year, skipping month carry-forward",
					slog.String("period_id", periodID))
			default:
				return nil, fmt.Errorf("failed to find following month period: %w", err)
			}
		}

		result = &domain.ClosingResult{
			PeriodID:     periodID,
			ClosedAt:     now,
			NextPeriodID: nextPeriodID,
			Snapshot:     snapshot,
		}
		if closingEntry != nil {
			result.ClosingEntryID = &closingEntry.EntryID
		}
		return data, nil
	}

	if err := s.periodRepo.ClosePeriod(ctx, periodID, now, prepare, actorID); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyClosed, periodID)
		}
		if errors.Is(err, ErrUnbalancedPeriod) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to close period", slog.String("period_id", periodID))
		return nil, fmt.Errorf("failed to close period %s: %w", periodID, err)
	}

	s.LogInfo(ctx, "Period closed",
		slog.String("period_id", periodID), slog.String("kind", string(period.Kind)),
		slog.Bool("closing_entry", result.ClosingEntryID != nil))
	return result, nil
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
