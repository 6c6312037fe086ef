package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
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
	ErrImbalancedEntry = errors.New("entry debits and credits do not balance")
	ErrEmptyEntry      = errors.New("entry must have at least two lines")
	ErrUnknownAccount  = errors.New("account not found or inactive")
	ErrAlreadyPosted   = errors.New("entry is already posted")
	ErrNotPosted       = errors.New("entry must be posted for this operation")
)

// ledgerService validates, posts and reverses journal entries and computes
// balances over the posted ledger.
type ledgerService struct {
	BaseService
	journalRepo portsrepo.JournalRepositoryFacade
	accountSvc  portssvc.ChartOfAccountsReaderSvc
	periodSvc   portssvc.PeriodSvcFacade
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(journalRepo portsrepo.JournalRepositoryFacade, accountSvc portssvc.ChartOfAccountsReaderSvc, periodSvc portssvc.PeriodSvcFacade) portssvc.LedgerSvcFacade {
	return &ledgerService{
		journalRepo: journalRepo,
		accountSvc:  accountSvc,
		periodSvc:   periodSvc,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// validateLines enforces the double-entry invariants on a new entry's lines.
func (s *ledgerService) validateLines(lines []dto.EntryLineRequest) error {
	if len(lines) < 2 {
		return ErrEmptyEntry
	}

	debits, credits := decimal.Zero, decimal.Zero
	for _, l := range lines {
		if l.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: line amount must be positive for account %s", apperrors.ErrValidation, l.AccountCode)
		}
		if l.Side == domain.Debit {
			debits = debits.Add(l.Amount)
		} else {
			credits = credits.Add(l.Amount)
		}
	}

	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits %s, credits %s, delta %s",
			ErrImbalancedEntry, debits.String(), credits.String(), debits.Sub(credits).String())
	}
	return nil
}

// checkPostable consults the period manager; dates not covered by any period
// are postable.
func (s *ledgerService) checkPostable(ctx context.Context, date time.Time) error {
	if s.periodSvc == nil {
		s.LogWarn(ctx, "Period service not available, skipping period lock check")
		return nil
	}
	return s.periodSvc.CheckPostable(ctx, date)
}

// CreateDraft validates the request and records a Draft entry. An existing
// entry for the same source reference is returned as-is, making retries and
// backfills safe.
func (s *ledgerService) CreateDraft(ctx context.Context, req dto.CreateEntryRequest, actorID string) (*domain.JournalEntry, error) {
	source := req.SourceRef()

	if !source.IsZero() {
		existing, err := s.journalRepo.FindEntryBySource(ctx, source)
		if err == nil {
			s.LogInfo(ctx, "Entry already exists for source, returning it",
				slog.String("source_type", source.Type), slog.String("source_id", source.ID),
				slog.String("entry_id", existing.EntryID))
			return existing, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up entry by source: %w", err)
		}
	}

	if err := s.validateLines(req.Lines); err != nil {
		return nil, err
	}

	if err := s.checkPostable(ctx, req.Date); err != nil {
		return nil, err
	}

	// Resolve and validate every referenced account.
	codes := make([]string, 0, len(req.Lines))
	for _, l := range req.Lines {
		codes = append(codes, l.AccountCode)
	}
	accounts, err := s.accountSvc.GetAccountsByCodes(ctx, uniqueStrings(codes))
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch accounts for entry creation")
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, code := range codes {
		acc, found := accounts[code]
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, code)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: %s is inactive", ErrUnknownAccount, code)
		}
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}

	entry := domain.JournalEntry{
		EntryID:     entryID,
		EntryDate:   req.Date,
		Narration:   req.Narration,
		Status:      domain.Draft,
		Source:      source,
		AuditFields: audit,
	}
	lines := make([]domain.JournalLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountCode: l.AccountCode,
			Side:        l.Side,
			Amount:      l.Amount,
			Position:    i,
			AuditFields: audit,
		}
	}

	if err := s.journalRepo.SaveEntry(ctx, entry, lines); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) && !source.IsZero() {
			// Lost the race for this source reference; the winner's entry is
			// the one entry this source gets.
			existing, findErr := s.journalRepo.FindEntryBySource(ctx, source)
			if findErr != nil {
				return nil, fmt.Errorf("entry exists for source but could not be fetched: %w", findErr)
			}
			return existing, nil
		}
		s.LogError(ctx, err, "Failed to save entry")
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	entry.Lines = lines
	s.LogInfo(ctx, "Draft entry created", slog.String("entry_id", entryID), slog.Int("lines", len(lines)))
	return &entry, nil
}

// Post transitions a Draft entry to Posted. Posting an entry that already
// carries a source reference and is Posted is a no-op returning the entry.
func (s *ledgerService) Post(ctx context.Context, entryID string, actorID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}

	switch entry.Status {
	case domain.Posted:
		if !entry.Source.IsZero() {
			// Retry of an idempotent posting for the same source.
			return entry, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrAlreadyPosted, entryID)
	case domain.Reversed:
		return nil, fmt.Errorf("%w: %s is reversed", ErrAlreadyPosted, entryID)
	}

	if err := s.checkPostable(ctx, entry.EntryDate); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.journalRepo.UpdateEntryStatus(ctx, entryID, domain.Posted, nil, actorID, now); err != nil {
		s.LogError(ctx, err, "Failed to post entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to post entry %s: %w", entryID, err)
	}

	entry.Status = domain.Posted
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actorID
	s.LogInfo(ctx, "Entry posted", slog.String("entry_id", entryID))
	return entry, nil
}

// Reverse posts a swapped-side copy of a Posted entry at the given date and
// marks the original Reversed. The original is never edited in place.
func (s *ledgerService) Reverse(ctx context.Context, entryID string, date time.Time, reason string, actorID string) (*domain.JournalEntry, error) {
	original, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}

	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: entry %s status is %s", ErrNotPosted, entryID, original.Status)
	}
	if original.ReversesEntryID != nil {
		return nil, fmt.Errorf("%w: cannot reverse an entry that is already a reversal", apperrors.ErrConflict)
	}

	if err := s.checkPostable(ctx, date); err != nil {
		return nil, err
	}

	originalLines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch original lines for reversal", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to retrieve lines for %s: %w", entryID, err)
	}

	now := time.Now().UTC()
	reversalID := uuid.NewString()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}

	reversal := domain.JournalEntry{
		EntryID:         reversalID,
		EntryDate:       date,
		Narration:       fmt.Sprintf("Reversal of: %s (%s)", original.Narration, reason),
		Status:          domain.Posted,
		Source:          domain.SourceRef{Type: "reversal", ID: original.EntryID},
		ReversesEntryID: &original.EntryID,
		AuditFields:     audit,
	}

	reversalLines := make([]domain.JournalLine, len(originalLines))
	for i, l := range originalLines {
		side := domain.Credit
		if l.Side == domain.Credit {
			side = domain.Debit
		}
		reversalLines[i] = domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     reversalID,
			AccountCode: l.AccountCode,
			Side:        side,
			Amount:      l.Amount,
			Position:    l.Position,
			AuditFields: audit,
		}
	}

	if err := s.journalRepo.SaveReversal(ctx, reversal, reversalLines, original.EntryID); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// A concurrent reversal of the same entry won; return it.
			existing, findErr := s.journalRepo.FindEntryBySource(ctx, reversal.Source)
			if findErr == nil {
				return existing, nil
			}
		}
		s.LogError(ctx, err, "Failed to save reversal", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to save reversal of %s: %w", entryID, err)
	}

	reversal.Lines = reversalLines
	s.LogInfo(ctx, "Entry reversed", slog.String("entry_id", entryID), slog.String("reversal_id", reversalID))
	return &reversal, nil
}

// GetEntry retrieves an entry together with its lines in display order.
func (s *ledgerService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	lines, err := s.journalRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch lines", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to retrieve lines for %s: %w", entryID, err)
	}
	entry.Lines = lines
	return entry, nil
}

// periodOpening returns the opening snapshot amount and range start for the
// month period containing asOf, or zero values when no period is defined.
func (s *ledgerService) periodOpening(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, time.Time, error) {
	if s.periodSvc == nil {
		return decimal.Zero, time.Time{}, nil
	}
	period, err := s.periodSvc.CurrentPeriod(ctx, asOf)
	if err != nil {
		if errors.Is(err, ErrNoPeriodDefined) {
			return decimal.Zero, time.Time{}, nil
		}
		return decimal.Zero, time.Time{}, err
	}
	return period.OpeningBalances[accountCode], period.StartDate, nil
}

// Balance returns the account's signed balance as of a date: the opening
// carry-forward of the period containing asOf plus posted movement inside it,
// by the account's normal-balance convention.
func (s *ledgerService) Balance(ctx context.Context, accountCode string, asOf time.Time) (decimal.Decimal, error) {
	account, err := s.accountSvc.GetAccountByCode(ctx, accountCode)
	if err != nil {
		return decimal.Zero, err
	}

	opening, from, err := s.periodOpening(ctx, accountCode, asOf)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to resolve period opening for %s: %w", accountCode, err)
	}

	debit, credit, err := s.journalRepo.SumPostedLines(ctx, accountCode, from, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum posted lines", slog.String("account", accountCode))
		return decimal.Zero, fmt.Errorf("failed to compute balance for %s: %w", accountCode, err)
	}

	movement := debit.Sub(credit)
	if account.NormalBalance == domain.Credit {
		movement = credit.Sub(debit)
	}
	return opening.Add(movement), nil
}

// TrialBalance returns every account's debit/credit totals as of a date,
// opening carry-forwards included. Grand totals must be equal for any
// consistent ledger.
func (s *ledgerService) TrialBalance(ctx context.Context, asOf time.Time) (*domain.TrialBalanceReport, error) {
	var (
		from     time.Time
		snapshot map[string]decimal.Decimal
	)
	if s.periodSvc != nil {
		period, err := s.periodSvc.CurrentPeriod(ctx, asOf)
		if err == nil {
			from = period.StartDate
			snapshot = period.OpeningBalances
		} else if !errors.Is(err, ErrNoPeriodDefined) {
			return nil, fmt.Errorf("failed to resolve period for trial balance: %w", err)
		}
	}

	rows, err := s.journalRepo.GetTrialBalanceData(ctx, from, asOf)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve trial balance data")
		return nil, fmt.Errorf("failed to retrieve trial balance data: %w", err)
	}

	// Fold the opening snapshot into the movement rows.
	if len(snapshot) > 0 {
		rows, err = s.mergeOpeningBalances(ctx, rows, snapshot)
		if err != nil {
			return nil, err
		}
	}

	report := &domain.TrialBalanceReport{AsOf: asOf, Rows: rows, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, row := range rows {
		report.TotalDebit = report.TotalDebit.Add(row.Debit)
		report.TotalCredit = report.TotalCredit.Add(row.Credit)
	}

	s.LogInfo(ctx, "Trial balance generated",
		slog.Time("as_of", asOf), slog.Int("rows", len(rows)),
		slog.String("total_debit", report.TotalDebit.String()))
	return report, nil
}

// mergeOpeningBalances adds each account's opening carry-forward to its
// natural side, creating rows for accounts with no movement in the range.
func (s *ledgerService) mergeOpeningBalances(ctx context.Context, rows []domain.TrialBalanceRow, snapshot map[string]decimal.Decimal) ([]domain.TrialBalanceRow, error) {
	index := make(map[string]int, len(rows))
	for i, row := range rows {
		index[row.AccountCode] = i
	}

	missing := make([]string, 0)
	for code, amount := range snapshot {
		if amount.IsZero() {
			continue
		}
		if _, ok := index[code]; !ok {
			missing = append(missing, code)
		}
	}
	accounts, err := s.accountSvc.GetAccountsByCodes(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve snapshot accounts: %w", err)
	}
	for _, code := range missing {
		acc, ok := accounts[code]
		if !ok {
			return nil, fmt.Errorf("%w: snapshot references unknown account %s", apperrors.ErrInternal, code)
		}
		rows = append(rows, domain.TrialBalanceRow{
			AccountCode: acc.Code,
			AccountName: acc.Name,
			Class:       acc.Class,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		})
		index[code] = len(rows) - 1
	}

	for code, amount := range snapshot {
		if amount.IsZero() {
			continue
		}
		i := index[code]
		normal := rows[i].Class.NormalBalance()
		side := normal
		if amount.IsNegative() {
			amount = amount.Neg()
			if normal == domain.Debit {
				side = domain.Credit
			} else {
				side = domain.Debit
			}
		}
		if side == domain.Debit {
			rows[i].Debit = rows[i].Debit.Add(amount)
		} else {
			rows[i].Credit = rows[i].Credit.Add(amount)
		}
	}

	sortTrialBalanceRows(rows)
	return rows, nil
}

// LedgerListing returns one account's statement over a date range with a
// running balance on each row.
func (s *ledgerService) LedgerListing(ctx context.Context, accountCode string, from, to time.Time) (*domain.LedgerListing, error) {
	account, err := s.accountSvc.GetAccountByCode(ctx, accountCode)
	if err != nil {
		return nil, err
	}

	opening, err := s.Balance(ctx, accountCode, from.AddDate(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("failed to compute opening balance for %s: %w", accountCode, err)
	}

	lines, err := s.journalRepo.ListPostedLines(ctx, accountCode, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to list posted lines", slog.String("account", accountCode))
		return nil, fmt.Errorf("failed to list lines for %s: %w", accountCode, err)
	}

	listing := &domain.LedgerListing{
		AccountCode:    account.Code,
		AccountName:    account.Name,
		From:           from,
		To:             to,
		OpeningBalance: opening,
		Rows:           make([]domain.LedgerRow, len(lines)),
	}

	running := opening
	for i, l := range lines {
		running = running.Add(l.SignedAmount(account.NormalBalance))
		listing.Rows[i] = domain.LedgerRow{
			EntryID:        l.EntryID,
			EntryDate:      l.EntryDate,
			Narration:      l.Narration,
			Side:           l.Side,
			Amount:         l.Amount,
			RunningBalance: running,
		}
	}
	listing.ClosingBalance = running
	return listing, nil
}

func sortTrialBalanceRows(rows []domain.TrialBalanceRow) {
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].AccountCode < rows[j].AccountCode
	})
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
