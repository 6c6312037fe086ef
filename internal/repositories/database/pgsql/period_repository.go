package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/templetrust/templeledger/internal/apperrors"
	"github.com/templetrust/templeledger/internal/core/domain"
	portsrepo "github.com/templetrust/templeledger/internal/core/ports/repositories"
)

type PgxPeriodRepository struct {
	BaseRepository
}

// newPgxPeriodRepository creates a new repository for financial period data.
func newPgxPeriodRepository(pool *pgxpool.Pool) portsrepo.PeriodRepositoryFacade {
	return &PgxPeriodRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PeriodRepositoryFacade = (*PgxPeriodRepository)(nil)

const periodColumns = `period_id, kind, start_date, end_date, status, closed_at, closing_entry_id,
       created_at, created_by, last_updated_at, last_updated_by`

func scanPeriod(row pgx.Row) (*domain.FinancialPeriod, error) {
	var p domain.FinancialPeriod
	err := row.Scan(
		&p.PeriodID,
		&p.Kind,
		&p.StartDate,
		&p.EndDate,
		&p.Status,
		&p.ClosedAt,
		&p.ClosingEntryID,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// loadOpeningBalances attaches the period's opening snapshot.
func (r *PgxPeriodRepository) loadOpeningBalances(ctx context.Context, p *domain.FinancialPeriod) error {
	query := `SELECT account_code, amount FROM period_opening_balances WHERE period_id = $1;`
	rows, err := r.Pool.Query(ctx, query, p.PeriodID)
	if err != nil {
		return fmt.Errorf("failed to query opening balances for %s: %w", p.PeriodID, err)
	}
	defer rows.Close()

	p.OpeningBalances = make(map[string]decimal.Decimal)
	for rows.Next() {
		var code string
		var amount decimal.Decimal
		if err := rows.Scan(&code, &amount); err != nil {
			return fmt.Errorf("failed to scan opening balance row: %w", err)
		}
		p.OpeningBalances[code] = amount
	}
	return rows.Err()
}

// FindPeriodByID retrieves a period with its opening snapshot.
func (r *PgxPeriodRepository) FindPeriodByID(ctx context.Context, periodID string) (*domain.FinancialPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM financial_periods WHERE period_id = $1;`
	p, err := scanPeriod(r.Pool.QueryRow(ctx, query, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: period %s", apperrors.ErrNotFound, periodID)
		}
		return nil, fmt.Errorf("failed to query period %s: %w", periodID, err)
	}
	if err := r.loadOpeningBalances(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// FindPeriodForDate retrieves the period of the given kind containing the date.
func (r *PgxPeriodRepository) FindPeriodForDate(ctx context.Context, date time.Time, kind domain.PeriodKind) (*domain.FinancialPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM financial_periods
		WHERE kind = $1 AND start_date <= $2 AND end_date >= $2;
	`
	p, err := scanPeriod(r.Pool.QueryRow(ctx, query, kind, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no %s period contains %s", apperrors.ErrNotFound, kind, date.Format("2006-01-02"))
		}
		return nil, fmt.Errorf("failed to query period for date: %w", err)
	}
	if err := r.loadOpeningBalances(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// FindFollowingPeriod retrieves the period of the same kind starting right
// after the given period's end date.
func (r *PgxPeriodRepository) FindFollowingPeriod(ctx context.Context, period domain.FinancialPeriod) (*domain.FinancialPeriod, error) {
	query := `
		SELECT ` + periodColumns + `
		FROM financial_periods
		WHERE kind = $1 AND start_date > $2
		ORDER BY start_date
		LIMIT 1;
	`
	p, err := scanPeriod(r.Pool.QueryRow(ctx, query, period.Kind, period.EndDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no period follows %s", apperrors.ErrNotFound, period.PeriodID)
		}
		return nil, fmt.Errorf("failed to query following period: %w", err)
	}
	// Following means contiguous: the next period must start the day after.
	if !p.StartDate.Equal(period.EndDate.AddDate(0, 0, 1)) {
		return nil, fmt.Errorf("%w: no contiguous period follows %s", apperrors.ErrNotFound, period.PeriodID)
	}
	return p, nil
}

// ListPeriods retrieves periods ordered by start date, optionally by kind.
func (r *PgxPeriodRepository) ListPeriods(ctx context.Context, kind *domain.PeriodKind) ([]domain.FinancialPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM financial_periods`
	args := []any{}
	if kind != nil {
		query += ` WHERE kind = $1`
		args = append(args, *kind)
	}
	query += ` ORDER BY start_date, kind;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list periods: %w", err)
	}
	defer rows.Close()

	periods := make([]domain.FinancialPeriod, 0)
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan period row: %w", err)
		}
		periods = append(periods, *p)
	}
	return periods, rows.Err()
}

// SavePeriods inserts a batch of periods in one transaction. An overlap with
// an existing period of the same kind aborts the whole batch.
func (r *PgxPeriodRepository) SavePeriods(ctx context.Context, periods []domain.FinancialPeriod) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	overlapQuery := `
		SELECT period_id FROM financial_periods
		WHERE kind = $1 AND start_date <= $3 AND end_date >= $2
		LIMIT 1;
	`
	insertQuery := `
		INSERT INTO financial_periods (period_id, kind, start_date, end_date, status,
		                               created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	for _, p := range periods {
		var existingID string
		err := tx.QueryRow(ctx, overlapQuery, p.Kind, p.StartDate, p.EndDate).Scan(&existingID)
		if err == nil {
			return fmt.Errorf("%w: period overlaps %s", apperrors.ErrDuplicate, existingID)
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to check period overlap: %w", err)
		}

		if _, err := tx.Exec(ctx, insertQuery,
			p.PeriodID, p.Kind, p.StartDate, p.EndDate, p.Status,
			p.CreatedAt, p.CreatedBy, p.LastUpdatedAt, p.LastUpdatedBy,
		); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: period %s already exists", apperrors.ErrDuplicate, p.PeriodID)
			}
			return fmt.Errorf("failed to insert period %s: %w", p.PeriodID, err)
		}
	}

	return r.Commit(ctx, tx)
}

// ClosePeriod applies a close atomically: it locks the period row, re-checks
// it is still Open, invokes prepare under the lock, posts the optional
// closing entry, replaces the target periods' opening snapshots and flips
// the status. Posting transactions hold shared locks on the period rows they
// touch, so by the time the lock here is granted every conflicting post has
// either committed (and is visible to prepare's reads) or will observe the
// period Closed.
func (r *PgxPeriodRepository) ClosePeriod(ctx context.Context, periodID string, closedAt time.Time, prepare portsrepo.PrepareCloseFunc, closedBy string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Serialise concurrent closes and posts on the period row.
	var status domain.PeriodStatus
	lockQuery := `SELECT status FROM financial_periods WHERE period_id = $1 FOR UPDATE;`
	if err := tx.QueryRow(ctx, lockQuery, periodID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: period %s", apperrors.ErrNotFound, periodID)
		}
		return fmt.Errorf("failed to lock period %s: %w", periodID, err)
	}
	if status != domain.Open {
		return fmt.Errorf("%w: period %s is %s", apperrors.ErrConflict, periodID, status)
	}

	data, err := prepare(ctx)
	if err != nil {
		return err
	}

	var closingEntryID *string
	if data.ClosingEntry != nil {
		if err := insertEntry(ctx, tx, *data.ClosingEntry); err != nil {
			return err
		}
		if err := insertLines(ctx, tx, data.ClosingLines); err != nil {
			return err
		}
		closingEntryID = &data.ClosingEntry.EntryID
	}

	for targetID, snapshot := range data.Snapshots {
		// Wholesale replacement: a stale snapshot written by an earlier month
		// close may hold accounts the rewrite zeroes out.
		if _, err := tx.Exec(ctx, `DELETE FROM period_opening_balances WHERE period_id = $1;`, targetID); err != nil {
			return fmt.Errorf("failed to clear opening snapshot for %s: %w", targetID, err)
		}
		batch := &pgx.Batch{}
		snapshotQuery := `
			INSERT INTO period_opening_balances (period_id, account_code, amount)
			VALUES ($1, $2, $3);
		`
		for code, amount := range snapshot {
			batch.Queue(snapshotQuery, targetID, code, amount)
		}
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to write opening snapshot for %s: %w", targetID, err)
		}
	}

	closeQuery := `
		UPDATE financial_periods
		SET status = $2, closed_at = $3, closing_entry_id = $4, last_updated_by = $5, last_updated_at = $3
		WHERE period_id = $1;
	`
	if _, err := tx.Exec(ctx, closeQuery, periodID, domain.Closed, closedAt, closingEntryID, closedBy); err != nil {
		return fmt.Errorf("failed to close period %s: %w", periodID, err)
	}

	return r.Commit(ctx, tx)
}
