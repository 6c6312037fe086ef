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
	ErrInvalidAssetParams = errors.New("asset parameters are invalid for the chosen method")
	ErrNothingToPost      = errors.New("schedule row has no charge to post")
)

// Monetary amounts on schedule rows are kept to two decimal places.
const chargeScale = 2

var decimalOne = decimal.NewFromInt(1)

// depreciationService computes per-asset depreciation schedules and posts
// their charges to the ledger through the posting contract, never directly.
type depreciationService struct {
	BaseService
	depRepo    portsrepo.DepreciationRepositoryFacade
	accountSvc portssvc.ChartOfAccountsReaderSvc
	ledgerSvc  portssvc.LedgerSvcFacade
}

// NewDepreciationService creates a new DepreciationService.
func NewDepreciationService(depRepo portsrepo.DepreciationRepositoryFacade, accountSvc portssvc.ChartOfAccountsReaderSvc, ledgerSvc portssvc.LedgerSvcFacade) portssvc.DepreciationSvcFacade {
	return &depreciationService{
		depRepo:    depRepo,
		accountSvc: accountSvc,
		ledgerSvc:  ledgerSvc,
	}
}

var _ portssvc.DepreciationSvcFacade = (*depreciationService)(nil)

// validateAssetParams checks the method-specific parameter requirements.
func validateAssetParams(a *domain.DepreciableAsset) error {
	if a.Cost.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: cost must be positive", ErrInvalidAssetParams)
	}
	if a.SalvageValue.IsNegative() || a.SalvageValue.GreaterThan(a.Cost) {
		return fmt.Errorf("%w: salvage value must be between zero and cost", ErrInvalidAssetParams)
	}

	switch a.Method {
	case domain.StraightLine:
		if a.UsefulLifePeriods < 1 {
			return fmt.Errorf("%w: straight line requires a useful life", ErrInvalidAssetParams)
		}
	case domain.WrittenDownValue:
		if a.Rate.LessThanOrEqual(decimal.Zero) || a.Rate.GreaterThanOrEqual(decimalOne) {
			return fmt.Errorf("%w: written down value requires a rate in (0, 1)", ErrInvalidAssetParams)
		}
		if a.UsefulLifePeriods < 1 {
			return fmt.Errorf("%w: written down value requires a useful life", ErrInvalidAssetParams)
		}
	case domain.DoubleDeclining:
		if a.UsefulLifePeriods < 1 {
			return fmt.Errorf("%w: double declining requires a useful life", ErrInvalidAssetParams)
		}
	case domain.UnitsOfProduction, domain.Depletion:
		if a.TotalUnits.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: usage-based methods require total units", ErrInvalidAssetParams)
		}
		if len(a.UsageUnits) == 0 {
			return fmt.Errorf("%w: usage-based methods require per-period usage", ErrInvalidAssetParams)
		}
		for _, u := range a.UsageUnits {
			if u.IsNegative() {
				return fmt.Errorf("%w: usage units cannot be negative", ErrInvalidAssetParams)
			}
		}
	case domain.Annuity, domain.SinkingFund:
		if a.InterestRate.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: interest-based methods require an interest rate", ErrInvalidAssetParams)
		}
		if a.UsefulLifePeriods < 1 {
			return fmt.Errorf("%w: interest-based methods require a useful life", ErrInvalidAssetParams)
		}
	default:
		return fmt.Errorf("%w: unknown method %s", ErrInvalidAssetParams, a.Method)
	}
	return nil
}

// RegisterAsset validates the parameters and both ledger accounts, then stores
// the asset.
func (s *depreciationService) RegisterAsset(ctx context.Context, req dto.RegisterAssetRequest, actorID string) (*domain.DepreciableAsset, error) {
	now := time.Now().UTC()
	asset := domain.DepreciableAsset{
		AssetID:            uuid.NewString(),
		Name:               req.Name,
		Cost:               req.Cost,
		SalvageValue:       req.SalvageValue,
		UsefulLifePeriods:  req.UsefulLifePeriods,
		Method:             req.Method,
		Rate:               req.Rate,
		Multiplier:         req.Multiplier,
		InterestRate:       req.InterestRate,
		TotalUnits:         req.TotalUnits,
		UsageUnits:         req.UsageUnits,
		AcquiredOn:         req.AcquiredOn,
		ExpenseAccount:     req.ExpenseAccount,
		AccumulatedAccount: req.AccumulatedAccount,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}
	if asset.Method == domain.DoubleDeclining && asset.Multiplier.IsZero() {
		asset.Multiplier = decimal.NewFromInt(2)
	}

	if err := validateAssetParams(&asset); err != nil {
		return nil, err
	}

	accounts, err := s.accountSvc.GetAccountsByCodes(ctx, []string{asset.ExpenseAccount, asset.AccumulatedAccount})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve asset accounts: %w", err)
	}
	for _, code := range []string{asset.ExpenseAccount, asset.AccumulatedAccount} {
		acc, ok := accounts[code]
		if !ok || !acc.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, code)
		}
	}
	if accounts[asset.ExpenseAccount].Class != domain.Expense {
		return nil, fmt.Errorf("%w: %s is not an expense account", apperrors.ErrValidation, asset.ExpenseAccount)
	}
	if accounts[asset.AccumulatedAccount].Class != domain.Asset {
		return nil, fmt.Errorf("%w: %s is not an asset account", apperrors.ErrValidation, asset.AccumulatedAccount)
	}

	if err := s.depRepo.SaveAsset(ctx, asset); err != nil {
		s.LogError(ctx, err, "Failed to save asset", slog.String("name", asset.Name))
		return nil, fmt.Errorf("failed to save asset: %w", err)
	}

	s.LogInfo(ctx, "Asset registered",
		slog.String("asset_id", asset.AssetID), slog.String("method", string(asset.Method)))
	return &asset, nil
}

// GetAsset retrieves a registered asset.
func (s *depreciationService) GetAsset(ctx context.Context, assetID string) (*domain.DepreciableAsset, error) {
	asset, err := s.depRepo.FindAssetByID(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find asset %s: %w", assetID, err)
	}
	return asset, nil
}

// schedulePeriods returns how many periods the asset's schedule has in total.
func schedulePeriods(a *domain.DepreciableAsset) int {
	switch a.Method {
	case domain.UnitsOfProduction, domain.Depletion:
		return len(a.UsageUnits)
	default:
		return a.UsefulLifePeriods
	}
}

// periodCharge computes the raw charge for one period before capping.
// periodIndex is 1-based; opening is the book value entering the period.
func periodCharge(a *domain.DepreciableAsset, periodIndex int, opening decimal.Decimal) decimal.Decimal {
	n := int64(schedulePeriods(a))
	switch a.Method {
	case domain.StraightLine:
		return a.Cost.Sub(a.SalvageValue).Div(decimal.NewFromInt(n))

	case domain.WrittenDownValue:
		return a.Rate.Mul(opening)

	case domain.DoubleDeclining:
		return a.Multiplier.Div(decimal.NewFromInt(n)).Mul(opening)

	case domain.UnitsOfProduction, domain.Depletion:
		units := a.UsageUnits[periodIndex-1]
		return a.Cost.Sub(a.SalvageValue).Mul(units).Div(a.TotalUnits)

	case domain.Annuity:
		// Constant annuity A recovers cost net of discounted salvage; the
		// period charge is A less the notional interest on the opening value.
		growth := decimalOne.Add(a.InterestRate).Pow(decimal.NewFromInt(n))
		v := decimalOne.Div(growth)
		annuity := a.Cost.Sub(a.SalvageValue.Mul(v)).Mul(a.InterestRate).Div(decimalOne.Sub(v))
		return annuity.Sub(a.InterestRate.Mul(opening))

	case domain.SinkingFund:
		// Level contribution accumulating to the depreciable base; the period
		// charge is the contribution grown to the period.
		growth := decimalOne.Add(a.InterestRate).Pow(decimal.NewFromInt(n))
		contribution := a.Cost.Sub(a.SalvageValue).Mul(a.InterestRate).Div(growth.Sub(decimalOne))
		return contribution.Mul(decimalOne.Add(a.InterestRate).Pow(decimal.NewFromInt(int64(periodIndex - 1))))
	}
	return decimal.Zero
}

// buildSchedule computes the asset's full schedule. Methods that amortise the
// whole depreciable base (straight line, annuity, sinking fund) absorb
// rounding in the final period so the closing book value lands exactly on
// salvage. Declining and usage-based methods are only capped at the salvage
// floor; their charge is never raised above what the method yields.
func buildSchedule(a *domain.DepreciableAsset) []domain.DepreciationScheduleEntry {
	periods := schedulePeriods(a)
	entries := make([]domain.DepreciationScheduleEntry, 0, periods)

	opening := a.Cost
	landsOnSalvage := a.Method == domain.StraightLine || a.Method == domain.Annuity || a.Method == domain.SinkingFund
	for i := 1; i <= periods; i++ {
		charge := periodCharge(a, i, opening).Round(chargeScale)
		if i == periods && landsOnSalvage {
			charge = opening.Sub(a.SalvageValue)
		}
		if floor := opening.Sub(a.SalvageValue); charge.GreaterThan(floor) {
			charge = floor
		}
		if charge.IsNegative() {
			charge = decimal.Zero
		}

		closing := opening.Sub(charge)
		entries = append(entries, domain.DepreciationScheduleEntry{
			AssetID:          a.AssetID,
			PeriodIndex:      i,
			PeriodStart:      a.AcquiredOn.AddDate(i-1, 0, 0),
			PeriodEnd:        a.AcquiredOn.AddDate(i, 0, -1),
			OpeningBookValue: opening,
			Charge:           charge,
			ClosingBookValue: closing,
		})
		opening = closing
	}
	return entries
}

// ComputeSchedule computes and stores the asset's schedule for every period
// that has fully elapsed by asOf. Recomputation never duplicates or rewrites
// stored rows.
func (s *depreciationService) ComputeSchedule(ctx context.Context, assetID string, asOf time.Time, actorID string) ([]domain.DepreciationScheduleEntry, error) {
	asset, err := s.depRepo.FindAssetByID(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find asset %s: %w", assetID, err)
	}

	existing, err := s.depRepo.FindScheduleByAsset(ctx, assetID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load stored schedule", slog.String("asset_id", assetID))
		return nil, fmt.Errorf("failed to load schedule for %s: %w", assetID, err)
	}
	stored := make(map[int]bool, len(existing))
	for _, row := range existing {
		stored[row.PeriodIndex] = true
	}

	now := time.Now().UTC()
	audit := domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}

	full := buildSchedule(asset)
	toInsert := make([]domain.DepreciationScheduleEntry, 0)
	for _, row := range full {
		if row.PeriodEnd.After(asOf) {
			break
		}
		if stored[row.PeriodIndex] {
			continue
		}
		row.ScheduleID = uuid.NewString()
		row.AuditFields = audit
		toInsert = append(toInsert, row)
	}

	if len(toInsert) > 0 {
		inserted, err := s.depRepo.SaveScheduleEntries(ctx, toInsert)
		if err != nil {
			s.LogError(ctx, err, "Failed to save schedule rows", slog.String("asset_id", assetID))
			return nil, fmt.Errorf("failed to save schedule for %s: %w", assetID, err)
		}
		s.LogInfo(ctx, "Schedule computed",
			slog.String("asset_id", assetID), slog.Int("new_rows", inserted))
	}

	schedule, err := s.depRepo.FindScheduleByAsset(ctx, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload schedule for %s: %w", assetID, err)
	}
	return schedule, nil
}

// PostScheduleEntry posts one schedule row as a two-line journal entry: debit
// depreciation expense, credit accumulated depreciation. Posting twice returns
// the original entry.
func (s *depreciationService) PostScheduleEntry(ctx context.Context, scheduleID string, actorID string) (*domain.JournalEntry, error) {
	row, err := s.depRepo.FindScheduleEntryByID(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to find schedule row %s: %w", scheduleID, err)
	}

	if row.JournalEntryID != nil {
		return s.ledgerSvc.GetEntry(ctx, *row.JournalEntryID)
	}
	if row.Charge.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", ErrNothingToPost, scheduleID)
	}

	asset, err := s.depRepo.FindAssetByID(ctx, row.AssetID)
	if err != nil {
		return nil, fmt.Errorf("failed to find asset %s: %w", row.AssetID, err)
	}

	req := dto.CreateEntryRequest{
		Date:       row.PeriodEnd,
		Narration:  fmt.Sprintf("Depreciation of %s, period %d", asset.Name, row.PeriodIndex),
		SourceType: "depreciation",
		SourceID:   scheduleID,
		Lines: []dto.EntryLineRequest{
			{AccountCode: asset.ExpenseAccount, Side: domain.Debit, Amount: row.Charge},
			{AccountCode: asset.AccumulatedAccount, Side: domain.Credit, Amount: row.Charge},
		},
	}

	entry, err := s.ledgerSvc.CreateDraft(ctx, req, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to create depreciation entry: %w", err)
	}
	posted, err := s.ledgerSvc.Post(ctx, entry.EntryID, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to post depreciation entry: %w", err)
	}

	if err := s.depRepo.LinkJournalEntry(ctx, scheduleID, posted.EntryID, actorID, time.Now().UTC()); err != nil {
		s.LogError(ctx, err, "Failed to link journal entry to schedule row",
			slog.String("schedule_id", scheduleID), slog.String("entry_id", posted.EntryID))
		return nil, fmt.Errorf("failed to link journal entry: %w", err)
	}

	s.LogInfo(ctx, "Depreciation posted",
		slog.String("schedule_id", scheduleID), slog.String("entry_id", posted.EntryID))
	return posted, nil
}
