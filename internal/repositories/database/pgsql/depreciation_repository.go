package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/templetrust/templeledger/internal/apperrors"
	"github.com/templetrust/templeledger/internal/core/domain"
	portsrepo "github.com/templetrust/templeledger/internal/core/ports/repositories"
)

type PgxDepreciationRepository struct {
	BaseRepository
}

// newPgxDepreciationRepository creates a new repository for asset depreciation data.
func newPgxDepreciationRepository(pool *pgxpool.Pool) portsrepo.DepreciationRepositoryFacade {
	return &PgxDepreciationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DepreciationRepositoryFacade = (*PgxDepreciationRepository)(nil)

// FindAssetByID retrieves one registered depreciable asset.
func (r *PgxDepreciationRepository) FindAssetByID(ctx context.Context, assetID string) (*domain.DepreciableAsset, error) {
	query := `
		SELECT asset_id, name, cost, salvage_value, useful_life_periods, method, rate, multiplier,
		       interest_rate, total_units, usage_units, acquired_on, expense_account, accumulated_account,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM depreciable_assets
		WHERE asset_id = $1;
	`
	var a domain.DepreciableAsset
	var usageUnits []byte
	err := r.Pool.QueryRow(ctx, query, assetID).Scan(
		&a.AssetID,
		&a.Name,
		&a.Cost,
		&a.SalvageValue,
		&a.UsefulLifePeriods,
		&a.Method,
		&a.Rate,
		&a.Multiplier,
		&a.InterestRate,
		&a.TotalUnits,
		&usageUnits,
		&a.AcquiredOn,
		&a.ExpenseAccount,
		&a.AccumulatedAccount,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: asset %s", apperrors.ErrNotFound, assetID)
		}
		return nil, fmt.Errorf("failed to query asset %s: %w", assetID, err)
	}
	if len(usageUnits) > 0 {
		if err := json.Unmarshal(usageUnits, &a.UsageUnits); err != nil {
			return nil, fmt.Errorf("failed to decode usage units for %s: %w", assetID, err)
		}
	}
	return &a, nil
}

const scheduleColumns = `schedule_id, asset_id, period_index, period_start, period_end,
       opening_book_value, charge, closing_book_value, journal_entry_id,
       created_at, created_by, last_updated_at, last_updated_by`

func scanScheduleEntry(row pgx.Row) (*domain.DepreciationScheduleEntry, error) {
	var e domain.DepreciationScheduleEntry
	err := row.Scan(
		&e.ScheduleID,
		&e.AssetID,
		&e.PeriodIndex,
		&e.PeriodStart,
		&e.PeriodEnd,
		&e.OpeningBookValue,
		&e.Charge,
		&e.ClosingBookValue,
		&e.JournalEntryID,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// FindScheduleByAsset retrieves an asset's stored schedule rows ordered by
// period index.
func (r *PgxDepreciationRepository) FindScheduleByAsset(ctx context.Context, assetID string) ([]domain.DepreciationScheduleEntry, error) {
	query := `SELECT ` + scheduleColumns + ` FROM asset_depreciation_schedules WHERE asset_id = $1 ORDER BY period_index;`
	rows, err := r.Pool.Query(ctx, query, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule for %s: %w", assetID, err)
	}
	defer rows.Close()

	entries := make([]domain.DepreciationScheduleEntry, 0)
	for rows.Next() {
		e, err := scanScheduleEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// FindScheduleEntryByID retrieves one schedule row.
func (r *PgxDepreciationRepository) FindScheduleEntryByID(ctx context.Context, scheduleID string) (*domain.DepreciationScheduleEntry, error) {
	query := `SELECT ` + scheduleColumns + ` FROM asset_depreciation_schedules WHERE schedule_id = $1;`
	e, err := scanScheduleEntry(r.Pool.QueryRow(ctx, query, scheduleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: schedule row %s", apperrors.ErrNotFound, scheduleID)
		}
		return nil, fmt.Errorf("failed to query schedule row %s: %w", scheduleID, err)
	}
	return e, nil
}

// SaveAsset registers a depreciable asset.
func (r *PgxDepreciationRepository) SaveAsset(ctx context.Context, asset domain.DepreciableAsset) error {
	usageUnits, err := json.Marshal(asset.UsageUnits)
	if err != nil {
		return fmt.Errorf("failed to encode usage units: %w", err)
	}

	query := `
		INSERT INTO depreciable_assets (asset_id, name, cost, salvage_value, useful_life_periods, method,
		                                rate, multiplier, interest_rate, total_units, usage_units, acquired_on,
		                                expense_account, accumulated_account,
		                                created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`
	_, err = r.Pool.Exec(ctx, query,
		asset.AssetID,
		asset.Name,
		asset.Cost,
		asset.SalvageValue,
		asset.UsefulLifePeriods,
		asset.Method,
		asset.Rate,
		asset.Multiplier,
		asset.InterestRate,
		asset.TotalUnits,
		usageUnits,
		asset.AcquiredOn,
		asset.ExpenseAccount,
		asset.AccumulatedAccount,
		asset.CreatedAt,
		asset.CreatedBy,
		asset.LastUpdatedAt,
		asset.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: asset %s already exists", apperrors.ErrDuplicate, asset.AssetID)
		}
		return fmt.Errorf("failed to insert asset %s: %w", asset.AssetID, err)
	}
	return nil
}

// SaveScheduleEntries inserts schedule rows. The unique index on
// (asset_id, period_index) keeps recomputation idempotent: existing rows are
// left untouched and only the number of newly inserted rows is returned.
func (r *PgxDepreciationRepository) SaveScheduleEntries(ctx context.Context, entries []domain.DepreciationScheduleEntry) (int, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO asset_depreciation_schedules (schedule_id, asset_id, period_index, period_start, period_end,
		                                          opening_book_value, charge, closing_book_value,
		                                          created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (asset_id, period_index) DO NOTHING;
	`
	inserted := 0
	for _, e := range entries {
		tag, err := tx.Exec(ctx, query,
			e.ScheduleID,
			e.AssetID,
			e.PeriodIndex,
			e.PeriodStart,
			e.PeriodEnd,
			e.OpeningBookValue,
			e.Charge,
			e.ClosingBookValue,
			e.CreatedAt,
			e.CreatedBy,
			e.LastUpdatedAt,
			e.LastUpdatedBy,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert schedule row %d for %s: %w", e.PeriodIndex, e.AssetID, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return inserted, nil
}

// LinkJournalEntry records the journal entry that posted a schedule row.
func (r *PgxDepreciationRepository) LinkJournalEntry(ctx context.Context, scheduleID string, journalEntryID string, updatedBy string, updatedAt time.Time) error {
	query := `
		UPDATE asset_depreciation_schedules
		SET journal_entry_id = $2, last_updated_by = $3, last_updated_at = $4
		WHERE schedule_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, scheduleID, journalEntryID, updatedBy, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to link journal entry to schedule row %s: %w", scheduleID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: schedule row %s", apperrors.ErrNotFound, scheduleID)
	}
	return nil
}
